package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-archiver/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the periodic crawl orchestrator",
	Long:  "Starts the crawl orchestrator, running every enabled site once per interval until interrupted with Ctrl+C.",
	RunE:  runRun,
}

var (
	runConfigPath string
	runVerbose    bool
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to JSON config file")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if runVerbose {
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
	registry.InitializeAll()
	defer registry.ReleaseAll()

	orchestrator := scheduler.New(registry, store, cfg.CrawlInterval(), cfg.Verbose)

	_, _ = fmt.Fprintf(os.Stdout, "Archiver running, %d sites, interval %s. Ctrl+C to stop.\n",
		len(registry.Crawlers()), orchestrator.Interval())

	if err := orchestrator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("orchestrator stopped: %w", err)
	}
	return nil
}
