package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
	"github.com/mrameshirs/face-gate/internal/dropbox"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe all stored data and start over",
	Long: `Wipe all stored data: the student dataset, the activity log, every
enrollment photo, and all pending markers. The folder structure is
recreated empty afterwards.

Example:
  face-gate clear --force`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().Bool("force", false, "Skip confirmation prompt")
}

func confirmAction(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func runClear(cmd *cobra.Command, args []string) error {
	if !mustGetBool(cmd, "force") && !confirmAction("Delete ALL students, photos, and logs? [y/N]: ") {
		fmt.Println("Cancelled.")
		return nil
	}

	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	ctx := cmd.Context()
	root := cfg.Dropbox.Root

	if cfg.Storage.PostgresURL != "" {
		fmt.Println("Warning: the Postgres dataset backend is configured and is not cleared by this command.")
	}

	// Deleting a folder removes everything under it; absent paths are fine.
	targets := []string{
		dropbox.JoinPath(root, "user_data.csv"),
		dropbox.JoinPath(root, "activity_log.csv"),
		dropbox.JoinPath(root, "known_users"),
		dropbox.JoinPath(root, "pending"),
	}
	for _, path := range targets {
		if err := deps.blob.Delete(ctx, path); err != nil && !dropbox.IsNotFound(err) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}

	for _, folder := range []string{dropbox.JoinPath(root, "known_users"), dropbox.JoinPath(root, "pending")} {
		if err := deps.blob.CreateFolder(ctx, folder); err != nil {
			return fmt.Errorf("failed to recreate %s: %w", folder, err)
		}
	}

	fmt.Println("All data cleared.")
	return nil
}
