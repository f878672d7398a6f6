package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
	"github.com/mrameshirs/face-gate/internal/records"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Manage student records",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List student records",
	Long: `List student records, optionally filtered.

Each --filter is a case-insensitive substring match on one column; multiple
filters must all match.

Example:
  face-gate students list --filter city=Chennai --filter class=5A`,
	RunE: runStudentsList,
}

var studentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one student record",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentsGet,
}

var studentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a student record",
	Long: `Update fields of a student record.

Example:
  face-gate students update 7 --field city=Madurai`,
	Args: cobra.ExactArgs(1),
	RunE: runStudentsUpdate,
}

var studentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a student record and its enrollment photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentsDelete,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsGetCmd)
	studentsCmd.AddCommand(studentsUpdateCmd)
	studentsCmd.AddCommand(studentsDeleteCmd)

	studentsListCmd.Flags().StringSlice("filter", nil, "Column filter as key=value (repeatable)")
	studentsUpdateCmd.Flags().StringSlice("field", nil, "Attribute to set as key=value (repeatable)")
	studentsDeleteCmd.Flags().Bool("keep-photo", false, "Keep the enrollment photo in the gallery")
}

func studentArg(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid student id %q", args[0])
	}
	return id, nil
}

func printStudent(s *records.Student) {
	fmt.Printf("id:    %d\n", s.ID)
	for _, column := range records.Columns() {
		if column == "id" {
			continue
		}
		value, _ := s.Field(column)
		if value != "" {
			fmt.Printf("%s: %s\n", column, value)
		}
	}
}

func runStudentsList(cmd *cobra.Command, args []string) error {
	predicates, err := parseAttrPairs(mustGetStringSlice(cmd, "filter"))
	if err != nil {
		return err
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	var students []records.Student
	if len(predicates) == 0 {
		students, err = deps.store.All(cmd.Context())
	} else {
		students, err = deps.store.Query(cmd.Context(), predicates)
	}
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	if len(students) == 0 {
		fmt.Println("No matching students.")
		return nil
	}
	for _, s := range students {
		fmt.Printf("%4d  %-24s %-8s %s\n", s.ID, s.Name, s.Class, s.City)
	}
	fmt.Printf("\n%d student(s)\n", len(students))
	return nil
}

func runStudentsGet(cmd *cobra.Command, args []string) error {
	id, err := studentArg(args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	student, err := deps.store.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load record: %w", err)
	}

	printStudent(student)
	return nil
}

func runStudentsUpdate(cmd *cobra.Command, args []string) error {
	id, err := studentArg(args)
	if err != nil {
		return err
	}
	attrs, err := parseAttrPairs(mustGetStringSlice(cmd, "field"))
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return fmt.Errorf("nothing to update, pass at least one --field")
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	if err := deps.store.Update(cmd.Context(), id, attrs); err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	fmt.Printf("Updated student %d\n", id)
	return nil
}

func runStudentsDelete(cmd *cobra.Command, args []string) error {
	id, err := studentArg(args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	if mustGetBool(cmd, "keep-photo") {
		if err := deps.store.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		fmt.Printf("Deleted student %d (photo kept)\n", id)
		return nil
	}

	if err := deps.svc.Deregister(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	fmt.Printf("Deleted student %d and enrollment photo\n", id)
	return nil
}
