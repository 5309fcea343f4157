package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-archiver/internal/sites"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the registered news sites",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(_ *cobra.Command, _ []string) error {
	for _, rule := range sites.All() {
		policy := "return-unfiltered"
		if rule.OnAllFiltered == sites.ReturnEmpty {
			policy = "return-empty"
		}
		_, _ = fmt.Fprintf(os.Stdout, "%-12s %-14s %s\n", rule.Identity.InternalName, rule.Identity.FriendlyName, rule.Identity.URL)
		_, _ = fmt.Fprintf(os.Stdout, "%-12s scroll pages: %d, on-all-filtered: %s\n", "", rule.ScrollPages, policy)
	}
	return nil
}
