package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/mrameshirs/face-gate/internal/web/handlers"
)

func (s *Server) setupRoutes(svc handlers.VerifyService, store handlers.RecordStore, activityLog handlers.ActivityLog) {
	verifyHandler := handlers.NewVerifyHandler(svc)
	studentsHandler := handlers.NewStudentsHandler(svc, store)
	activityHandler := handlers.NewActivityHandler(activityLog)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/verify", verifyHandler.Verify)

		r.Post("/students", studentsHandler.Register)
		r.Get("/students", studentsHandler.List)
		r.Get("/students/{id}", studentsHandler.Get)
		r.Put("/students/{id}", studentsHandler.Update)
		r.Delete("/students/{id}", studentsHandler.Delete)

		r.Get("/activity", activityHandler.List)
	})
}
