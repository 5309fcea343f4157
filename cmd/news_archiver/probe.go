package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-archiver/internal/archive"
	"github.com/jonathan/news-archiver/internal/browser"
	"github.com/jonathan/news-archiver/internal/extract"
	"github.com/jonathan/news-archiver/internal/observability"
	"github.com/jonathan/news-archiver/internal/sites"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Dry-run discovery (and optionally archival) for one site",
	Long:  "Runs link discovery for one site without touching the store, printing what would be crawled. With --archive the discovered links are fetched too.",
	RunE:  runProbe,
}

var (
	probeSite    string
	probePages   int
	probeArchive bool
	probeOut     string
)

func init() {
	probeCmd.Flags().StringVarP(&probeSite, "site", "s", "", "Internal site name (required)")
	probeCmd.Flags().IntVar(&probePages, "pages", 0, "Scroll steps for lazy-loaded listings (0 = site default)")
	probeCmd.Flags().BoolVar(&probeArchive, "archive", false, "Also fetch the discovered articles")
	probeCmd.Flags().StringVarP(&probeOut, "out", "o", "", "Write archived text and images under this directory")

	if err := probeCmd.MarkFlagRequired("site"); err != nil {
		panic(fmt.Sprintf("failed to mark site flag as required: %v", err))
	}

	rootCmd.AddCommand(probeCmd)
}

func runProbe(_ *cobra.Command, _ []string) error {
	rule, ok := sites.ByName(probeSite)
	if !ok {
		return fmt.Errorf("unknown site %q", probeSite)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := observability.NewPrinter(os.Stdout)
	factory := browser.Chrome()

	extractor := extract.New(rule, factory, extract.WithVerbose(true))
	defer extractor.Close()

	status, links, err := extractor.Links(ctx, probePages)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	printer.PrintDiscovery(rule.Identity, status, links)

	if !probeArchive || len(links) == 0 {
		return nil
	}

	if probeOut != "" {
		if err := os.MkdirAll(probeOut, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", probeOut, err)
		}
	}

	archiver := archive.New(rule, factory, archive.WithVerbose(true))
	defer archiver.Close()

	results := archiver.Archive(ctx, links, probeOut, 0)
	printer.PrintArchiveSummary(rule.Identity, results)
	return nil
}
