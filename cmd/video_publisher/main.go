// Package main provides the entry point for the video publisher CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "video_publisher",
	Short: "Automated video publishing for short-video platforms",
	Long:  "Video publisher drives a real browser to upload and publish videos to short-video platforms, reusing stored login sessions and reporting a definite outcome for every job.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
