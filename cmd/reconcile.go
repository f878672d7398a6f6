package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Cross-check the gallery, the dataset, and pending markers",
	Long: `Cross-check the enrollment gallery against the student dataset.

Registration is not atomic, so the gallery and the dataset can diverge:
photos without records, records without photos, and pending markers left by
registrations that never finished. This command reports every divergence,
and can optionally remove orphaned photos.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().Bool("prune", false, "Delete enrollment photos that have no record")
	reconcileCmd.Flags().Bool("yes", false, "Skip confirmation prompt when pruning")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	ctx := cmd.Context()

	enrolled, err := deps.gallery.ListEnrolledIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list gallery: %w", err)
	}
	students, err := deps.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	pending, err := deps.svc.PendingIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending markers: %w", err)
	}

	recorded := make(map[int]bool, len(students))
	for _, s := range students {
		recorded[s.ID] = true
	}

	bar := progressbar.NewOptions(len(enrolled),
		progressbar.OptionSetDescription("Checking gallery"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	hasPhoto := make(map[int]bool, len(enrolled))
	var orphanPhotos, unreadable []int
	for _, id := range enrolled {
		hasPhoto[id] = true
		if !recorded[id] {
			orphanPhotos = append(orphanPhotos, id)
		}
		if _, found, err := deps.gallery.Fetch(ctx, id); err != nil || !found {
			unreadable = append(unreadable, id)
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	var unenrolled []int
	for _, s := range students {
		if !hasPhoto[s.ID] {
			unenrolled = append(unenrolled, s.ID)
		}
	}

	fmt.Printf("Gallery photos:   %d\n", len(enrolled))
	fmt.Printf("Student records:  %d\n", len(students))
	fmt.Printf("Pending markers:  %d\n", len(pending))
	fmt.Println()

	if len(orphanPhotos) == 0 && len(unenrolled) == 0 && len(pending) == 0 && len(unreadable) == 0 {
		fmt.Println("Everything is consistent.")
		return nil
	}

	for _, id := range orphanPhotos {
		fmt.Printf("Photo without record:  id %d\n", id)
	}
	for _, id := range unreadable {
		fmt.Printf("Unreadable photo:      id %d\n", id)
	}
	for _, id := range unenrolled {
		fmt.Printf("Record without photo:  id %d\n", id)
	}
	for _, id := range pending {
		fmt.Printf("Unfinished registration: id %d\n", id)
	}

	if !mustGetBool(cmd, "prune") || len(orphanPhotos) == 0 {
		return nil
	}

	if !mustGetBool(cmd, "yes") && !confirmAction(fmt.Sprintf("\nDelete %d orphaned photo(s)? [y/N]: ", len(orphanPhotos))) {
		fmt.Println("Cancelled.")
		return nil
	}

	for _, id := range orphanPhotos {
		if err := deps.gallery.Remove(ctx, id); err != nil {
			return fmt.Errorf("failed to remove photo for id %d: %w", id, err)
		}
	}
	fmt.Printf("Removed %d orphaned photo(s)\n", len(orphanPhotos))
	return nil
}
