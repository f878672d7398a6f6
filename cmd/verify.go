package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
	"github.com/mrameshirs/face-gate/internal/facematch"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image-file>",
	Short: "Verify a probe image against the enrolled gallery",
	Long: `Verify a probe image against the enrolled gallery.

Downloads every enrollment photo, compares face embeddings, and prints the
matched student record if one is found.

Example:
  face-gate verify ./probe.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	probe, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read probe image: %w", err)
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	result, err := deps.svc.Verify(cmd.Context(), probe)
	if err != nil {
		if errors.Is(err, facematch.ErrNoFace) {
			fmt.Println("No face detected in the probe image.")
			return nil
		}
		return fmt.Errorf("verification failed: %w", err)
	}

	if result.EmptyGallery {
		fmt.Println("Nobody is enrolled yet.")
		return nil
	}
	if !result.Matched {
		fmt.Println("No match.")
		return nil
	}

	fmt.Printf("Match: %s (id %d, distance %.4f)\n", result.Student.Name, result.Student.ID, result.Distance)
	if result.Student.Class != "" {
		fmt.Printf("  Class: %s\n", result.Student.Class)
	}
	if result.Student.City != "" {
		fmt.Printf("  City:  %s\n", result.Student.City)
	}
	return nil
}
