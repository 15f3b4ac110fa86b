// Package cmd holds the CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facegate",
	Short: "Face admission pipeline for photo corpora",
	Long: `Facegate admits uploaded face images into per-domain reference corpora.
Every upload is validated (confidence, size, sharpness, single subject),
checked against retention quotas, cropped and persisted; a separate sync
step promotes staged images into the production corpus the recognition
engine searches against.`,
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
