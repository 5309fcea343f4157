// Package observability provides formatted output utilities for verbose CLI
// mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/news-archiver/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDiscovery outputs a human-readable summary of one site's link
// discovery.
func (p *Printer) PrintDiscovery(identity types.CrawlerIdentity, status types.ExtractionStatus, links []types.Link) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	sb.WriteString(fmt.Sprintf("Links:    %d\n", len(links)))
	sb.WriteString("\n")

	shown := links
	if len(shown) > maxItemsToShow {
		shown = shown[:maxItemsToShow]
	}
	for _, link := range shown {
		sb.WriteString(fmt.Sprintf("- %s\n", link.Title))
	}
	if len(links) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(links)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("Discovery: %s", identity.FriendlyName), sb.String())
}

// PrintArchiveSummary outputs a human-readable summary of one site's
// archival batch.
func (p *Printer) PrintArchiveSummary(identity types.CrawlerIdentity, results []types.ArchiveResult) {
	succeeded := 0
	failed := 0
	totalImages := 0
	totalChars := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		succeeded++
		totalImages += r.ImageCount
		totalChars += r.TextLength
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Archived: %d\n", succeeded))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", failed))
	sb.WriteString(fmt.Sprintf("Images:   %d\n", totalImages))
	sb.WriteString(fmt.Sprintf("Text:     %d chars\n", totalChars))

	p.printBox(fmt.Sprintf("Archive: %s", identity.FriendlyName), sb.String())
}
