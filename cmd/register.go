package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
)

var registerCmd = &cobra.Command{
	Use:   "register <image-file>",
	Short: "Register a new student with an enrollment photo",
	Long: `Register a new student record and enroll the given photo.

Attributes beyond the name are passed as repeated --field key=value flags
and must name columns of the student dataset.

Example:
  face-gate register ./photo.jpg --name "Kumar" --field class=5A --field city=Chennai`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("name", "", "Student name (required)")
	registerCmd.Flags().StringSlice("field", nil, "Additional attribute as key=value (repeatable)")
	_ = registerCmd.MarkFlagRequired("name")
}

func runRegister(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read enrollment image: %w", err)
	}

	attrs, err := parseAttrPairs(mustGetStringSlice(cmd, "field"))
	if err != nil {
		return err
	}
	attrs["name"] = mustGetString(cmd, "name")

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	id, err := deps.svc.Register(cmd.Context(), attrs, image)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Registered %s with id %d\n", attrs["name"], id)
	return nil
}
