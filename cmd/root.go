package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-gate",
	Short: "Face verification gate backed by Dropbox storage",
	Long: `Face Gate verifies people against a gallery of enrolled reference photos.
It stores enrollment images, the student dataset, and the activity log in
Dropbox, and delegates face embedding to an external face server.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
