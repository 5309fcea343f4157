package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-archiver/internal/db"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up one archived article by URL",
	Long:  "Fetches a single stored article by its URL and prints its metadata, for spot-checking what a crawl persisted.",
	RunE:  runLookup,
}

var (
	lookupConfigPath string
	lookupURL        string
)

func init() {
	lookupCmd.Flags().StringVarP(&lookupConfigPath, "config", "c", "", "Path to JSON config file")
	lookupCmd.Flags().StringVarP(&lookupURL, "url", "u", "", "Article URL to look up (required)")

	if err := lookupCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(lookupConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL required: set database_url in config or DATABASE_URL environment variable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer store.Close()

	article, err := store.GetByURL(ctx, lookupURL)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if article == nil {
		return fmt.Errorf("no archived article for %s", lookupURL)
	}

	fmt.Printf("ID:           %s\n", article.ID)
	fmt.Printf("Title:        %s\n", article.Title)
	fmt.Printf("URL:          %s\n", article.URL)
	fmt.Printf("Category:     %s\n", article.Category)
	fmt.Printf("Publisher:    %s\n", article.Publisher)
	if article.PublishTime != nil {
		fmt.Printf("Published:    %s\n", article.PublishTime.Format("2006-01-02 15:04 MST"))
	}
	fmt.Printf("Text length:  %d chars\n", article.TextLength)
	fmt.Printf("Images:       %d\n", article.ImageCount)
	return nil
}
