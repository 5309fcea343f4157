package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl cycle and exit",
	Long:  "Runs a single crawl cycle over every enabled site (or one site with --site), persisting new articles, then exits.",
	RunE:  runCrawl,
}

var (
	crawlConfigPath string
	crawlSite       string
	crawlVerbose    bool
)

func init() {
	crawlCmd.Flags().StringVarP(&crawlConfigPath, "config", "c", "", "Path to JSON config file")
	crawlCmd.Flags().StringVarP(&crawlSite, "site", "s", "", "Crawl only the named site")
	crawlCmd.Flags().BoolVarP(&crawlVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(crawlConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if crawlVerbose {
		cfg.Verbose = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer store.Close()

	classifier, err := newClassifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}
	defer func() { _ = classifier.Close() }()

	registry := newRegistry(cfg, classifier)

	if crawlSite != "" {
		c, ok := registry.Get(crawlSite)
		if !ok {
			return fmt.Errorf("unknown or disabled site %q", crawlSite)
		}
		registry.Initialize(crawlSite)
		defer registry.Release(crawlSite)
		if err := c.Run(ctx, store); err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		return nil
	}

	registry.InitializeAll()
	defer registry.ReleaseAll()
	if err := registry.RunAll(ctx, store); err != nil {
		return fmt.Errorf("crawl cycle failed: %w", err)
	}
	return nil
}
