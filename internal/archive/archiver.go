// Package archive implements per-site article archival: visiting each
// discovered link, extracting body content and images, and optionally
// persisting them to disk. Archiving one link never aborts the batch.
package archive

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/news-archiver/internal/browser"
	"github.com/jonathan/news-archiver/internal/sites"
	"github.com/jonathan/news-archiver/internal/types"
)

// DefaultNavigationTimeout bounds each article navigation.
const DefaultNavigationTimeout = 30 * time.Second

// contentFileName is the name of the plain-text body file inside an
// article's output folder.
const contentFileName = "content.txt"

// Error represents a per-link archival failure. It lands on the link's
// ArchiveResult, never in the batch return path.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return "archive error for " + e.URL + ": " + e.Message + ": " + e.Cause.Error()
	}
	return "archive error for " + e.URL + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// extraction is the structured data the article script returns from the
// document context.
type extraction struct {
	Text        string   `json:"text"`
	HTML        string   `json:"html"`
	Images      []string `json:"images"`
	Publisher   string   `json:"publisher"`
	PublishTime string   `json:"publishTime"`
}

// Archiver expands links into ArchiveResults for one site. It owns a shared
// HTTP client for image downloads and acquires one automation session per
// batch. Not safe for concurrent use.
type Archiver struct {
	rule    sites.Rule
	factory browser.Factory
	client  *http.Client
	verbose bool
	closed  bool
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithHTTPClient overrides the image-download client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Archiver) {
		if client != nil {
			a.client = client
		}
	}
}

// WithVerbose enables per-link logging.
func WithVerbose(verbose bool) Option {
	return func(a *Archiver) { a.verbose = verbose }
}

// New creates an archiver for one site.
func New(rule sites.Rule, factory browser.Factory, opts ...Option) *Archiver {
	a := &Archiver{
		rule:    rule,
		factory: factory,
		client:  &http.Client{Timeout: DefaultNavigationTimeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive visits each link and extracts its content. Input links are
// filtered to non-blank URLs and deduplicated by URL, preserving order; one
// result is returned per surviving link, addressable by URL. When
// outputRoot is non-empty the body text and images are persisted under a
// per-article folder. A per-link failure is recorded on that link's result
// with zeroed content fields.
func (a *Archiver) Archive(ctx context.Context, links []types.Link, outputRoot string, navTimeout time.Duration) []types.ArchiveResult {
	if navTimeout <= 0 {
		navTimeout = DefaultNavigationTimeout
	}

	batch := dedupeLinks(links)
	results := make([]types.ArchiveResult, 0, len(batch))
	if len(batch) == 0 {
		return results
	}

	session, err := a.factory(ctx)
	if err != nil {
		// Without a session every link fails the same way.
		for _, link := range batch {
			results = append(results, failed(link, &Error{URL: link.URL, Message: "failed to acquire browser session", Cause: err}))
		}
		return results
	}
	defer func() { _ = session.Close() }()

	for _, link := range batch {
		if ctx.Err() != nil {
			break
		}
		results = append(results, a.archiveOne(ctx, session, link, outputRoot, navTimeout))
	}
	return results
}

// Close releases the shared HTTP client's idle connections. Idempotent.
func (a *Archiver) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.client.CloseIdleConnections()
}

// archiveOne handles a single link, opening a fresh page so no state leaks
// between links.
func (a *Archiver) archiveOne(ctx context.Context, session browser.Browser, link types.Link, outputRoot string, navTimeout time.Duration) types.ArchiveResult {
	page, err := session.NewPage(ctx)
	if err != nil {
		return failed(link, &Error{URL: link.URL, Message: "failed to open page", Cause: err})
	}
	defer func() { _ = page.Close() }()

	nav, err := page.Navigate(ctx, link.URL, navTimeout)
	if err != nil {
		return failed(link, &Error{URL: link.URL, Message: "navigation failed", Cause: err})
	}
	if !nav.OK {
		return failed(link, &Error{URL: link.URL, Message: fmt.Sprintf("navigation returned status %d", nav.StatusCode)})
	}

	var ext extraction
	if err := page.Evaluate(ctx, a.rule.ArticleScript, &ext); err != nil {
		return failed(link, &Error{URL: link.URL, Message: "extraction failed", Cause: err})
	}

	text := strings.TrimSpace(ext.Text)
	if text == "" && ext.HTML != "" {
		text = fallbackText(ext.HTML)
	}
	if text == "" {
		return failed(link, &Error{URL: link.URL, Message: "page yielded no content"})
	}

	result := types.ArchiveResult{
		Title:       link.Title,
		URL:         link.URL,
		Content:     text,
		TextLength:  len([]rune(text)),
		Publisher:   strings.TrimSpace(ext.Publisher),
		PublishTime: ParsePublishTime(ext.PublishTime),
	}

	if outputRoot != "" {
		folder := filepath.Join(outputRoot, FolderName(link.Title, link.URL))
		if err := os.MkdirAll(folder, 0755); err != nil {
			return failed(link, &Error{URL: link.URL, Message: "failed to create output folder", Cause: err})
		}
		if err := os.WriteFile(filepath.Join(folder, contentFileName), []byte(text), 0644); err != nil {
			return failed(link, &Error{URL: link.URL, Message: "failed to write content", Cause: err})
		}
		result.OutputFolder = folder
		result.ImageCount = DownloadImages(ctx, a.client, link.URL, ext.Images, folder, a.verbose)
	}

	if a.verbose {
		log.Printf("[ARCHIVE] %s: %d chars, %d images (%s)",
			a.rule.Identity.InternalName, result.TextLength, result.ImageCount, link.URL)
	}
	return result
}

// fallbackText derives readable text from extracted markup when the
// in-document routine returned HTML but no text (some engines report empty
// innerText for detached subtrees).
func fallbackText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()
	return strings.TrimSpace(doc.Text())
}

// dedupeLinks filters to non-blank URLs and removes duplicates, preserving
// the filtered order.
func dedupeLinks(links []types.Link) []types.Link {
	seen := make(map[string]bool, len(links))
	out := make([]types.Link, 0, len(links))
	for _, link := range links {
		url := strings.TrimSpace(link.URL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		out = append(out, types.Link{Title: link.Title, URL: url})
	}
	return out
}

// failed builds the zeroed result carrying a link's failure.
func failed(link types.Link, err error) types.ArchiveResult {
	return types.ArchiveResult{
		Title: link.Title,
		URL:   link.URL,
		Err:   err,
	}
}
