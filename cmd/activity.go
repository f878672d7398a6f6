package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrameshirs/face-gate/internal/config"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the activity log",
	Long:  `Print every logged login and registration event in append order.`,
	RunE:  runActivity,
}

func init() {
	rootCmd.AddCommand(activityCmd)

	activityCmd.Flags().Int("tail", 0, "Show only the last N entries")
}

func runActivity(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	deps, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	entries, err := deps.log.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}

	if tail := mustGetInt(cmd, "tail"); tail > 0 && tail < len(entries) {
		entries = entries[len(entries)-tail:]
	}

	if len(entries) == 0 {
		fmt.Println("No activity yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-14s %s\n", e.Timestamp, e.Role, e.Username)
	}
	return nil
}
