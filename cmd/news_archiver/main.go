// Package main provides the entry point for the news archiver CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "news_archiver",
	Short: "Periodic news crawl-and-archive pipeline",
	Long:  "news_archiver discovers new articles on a fixed set of news sites, extracts and normalizes their content, and persists previously-unseen items to PostgreSQL.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
