// Package crawler composes one site's link extractor, content archiver, and
// identity into a Crawler, and owns the Registry that runs the fixed set of
// crawlers. Each Crawler exclusively owns its extractor and archiver; both
// hold automation-session state and must not be shared.
package crawler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/news-archiver/internal/archive"
	"github.com/jonathan/news-archiver/internal/browser"
	"github.com/jonathan/news-archiver/internal/classify"
	"github.com/jonathan/news-archiver/internal/db"
	"github.com/jonathan/news-archiver/internal/extract"
	"github.com/jonathan/news-archiver/internal/sites"
	"github.com/jonathan/news-archiver/internal/types"
)

// Discoverer is the link-discovery stage a crawler drives. Satisfied by
// *extract.Extractor; tests substitute fakes.
type Discoverer interface {
	Links(ctx context.Context, pages int) (types.ExtractionStatus, []types.Link, error)
	Refresh(ctx context.Context, timeout time.Duration) bool
	Close()
}

// Expander is the archival stage a crawler drives. Satisfied by
// *archive.Archiver.
type Expander interface {
	Archive(ctx context.Context, links []types.Link, outputRoot string, navTimeout time.Duration) []types.ArchiveResult
	Close()
}

// Options configures a Crawler.
type Options struct {
	OutputRoot        string
	NavigationTimeout time.Duration
	ScrollPages       int
	Verbose           bool
}

// Crawler orchestrates discovery, dedup filtering, archival, and
// persistence for one site.
type Crawler struct {
	rule       sites.Rule
	factory    browser.Factory
	classifier classify.Classifier
	opts       Options

	extractor   Discoverer
	archiver    Expander
	initialized bool
}

// New creates a crawler for one site. Components are created by Initialize
// and torn down by Release; the Registry drives both.
func New(rule sites.Rule, factory browser.Factory, classifier classify.Classifier, opts Options) *Crawler {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = extract.DefaultNavigationTimeout
	}
	return &Crawler{
		rule:       rule,
		factory:    factory,
		classifier: classifier,
		opts:       opts,
	}
}

// Identity returns the crawler's static site identity.
func (c *Crawler) Identity() types.CrawlerIdentity {
	return c.rule.Identity
}

// Initialize constructs the extractor and archiver. Idempotent.
func (c *Crawler) Initialize() {
	if c.initialized {
		return
	}
	c.extractor = extract.New(c.rule, c.factory,
		extract.WithNavigationTimeout(c.opts.NavigationTimeout),
		extract.WithVerbose(c.opts.Verbose),
	)
	c.archiver = archive.New(c.rule, c.factory,
		archive.WithVerbose(c.opts.Verbose),
	)
	c.initialized = true
}

// Release tears the components down. Releasing an uninitialized crawler is
// a no-op.
func (c *Crawler) Release() {
	if !c.initialized {
		return
	}
	c.extractor.Close()
	c.archiver.Close()
	c.extractor = nil
	c.archiver = nil
	c.initialized = false
}

// Run executes one crawl cycle for this site: discover links, filter
// against the store, archive what is new, classify, and append. Per-item
// failures are contained inside the stages; Run returns an error only for
// cancellation, use of an unreleased crawler, or a broken store.
func (c *Crawler) Run(ctx context.Context, store db.ArticleStore) error {
	if !c.initialized {
		return fmt.Errorf("crawler %s is not initialized", c.rule.Identity.InternalName)
	}

	status, links, err := c.extractor.Links(ctx, c.opts.ScrollPages)
	if err != nil {
		return err
	}
	c.logf("[CRAWL] %s: discovery %s, %d links", c.rule.Identity.InternalName, status, len(links))
	if len(links) == 0 {
		return nil
	}

	// One bulk read per run; per-link lookups would hammer the store.
	existing, err := store.ExistingURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stored URLs: %w", err)
	}

	fresh := make([]types.Link, 0, len(links))
	for _, link := range links {
		if strings.TrimSpace(link.URL) == "" {
			continue
		}
		if _, seen := existing[link.URL]; seen {
			continue
		}
		fresh = append(fresh, link)
	}

	if len(fresh) == 0 {
		c.logf("[CRAWL] %s: nothing new", c.rule.Identity.InternalName)
		// Refresh the listing so the next cycle sees fresh state.
		c.extractor.Refresh(ctx, c.opts.NavigationTimeout)
		return nil
	}

	results := c.archiver.Archive(ctx, fresh, c.opts.OutputRoot, c.opts.NavigationTimeout)

	appended := 0
	for _, result := range results {
		if result.Err != nil {
			c.logf("[CRAWL] %s: archive failed for %s: %v", c.rule.Identity.InternalName, result.URL, result.Err)
			continue
		}
		if strings.TrimSpace(result.URL) == "" {
			continue
		}
		// Defensive re-check: a concurrent writer may have inserted this
		// URL since the bulk read; the store's unique constraint is the
		// final backstop.
		if _, seen := existing[result.URL]; seen {
			continue
		}
		if strings.TrimSpace(result.Content) == "" {
			continue
		}

		category, err := c.classifier.Classify(ctx, result.Title)
		if err != nil {
			// Classification never drops valid content.
			c.logf("[CRAWL] %s: classification failed for %q: %v", c.rule.Identity.InternalName, result.Title, err)
			category = types.CategoryGeneral
		}

		entity := &db.ArchivedEntity{
			Title:       result.Title,
			URL:         result.URL,
			TextLength:  result.TextLength,
			ImageCount:  result.ImageCount,
			PublishTime: result.PublishTime,
			Publisher:   result.Publisher,
			Content:     result.Content,
			Category:    category,
		}
		if err := store.Append(ctx, entity); err != nil {
			return fmt.Errorf("failed to append %s: %w", result.URL, err)
		}
		existing[result.URL] = struct{}{}
		appended++
	}

	if err := store.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	c.logf("[CRAWL] %s: archived %d new articles", c.rule.Identity.InternalName, appended)
	return nil
}

func (c *Crawler) logf(format string, args ...any) {
	if c.opts.Verbose {
		log.Printf(format, args...)
	}
}
