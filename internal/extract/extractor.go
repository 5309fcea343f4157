// Package extract implements per-site link discovery on listing pages. An
// Extractor owns one automation session, acquired lazily on first use and
// reused across calls; it is not safe for concurrent invocation.
package extract

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jonathan/news-archiver/internal/browser"
	"github.com/jonathan/news-archiver/internal/sites"
	"github.com/jonathan/news-archiver/internal/types"
)

// DefaultNavigationTimeout bounds listing navigations.
const DefaultNavigationTimeout = 30 * time.Second

// scrollSettleDelay is how long a scroll step waits for lazy content to
// arrive before re-reading the document height.
const scrollSettleDelay = 750 * time.Millisecond

// ErrClosed is returned when an Extractor is used after Close.
var ErrClosed = errors.New("extract: link extractor is closed")

// Extractor discovers candidate article links on one site's listing page.
type Extractor struct {
	rule    sites.Rule
	factory browser.Factory
	timeout time.Duration
	verbose bool

	session   browser.Browser
	page      browser.Page
	navigated bool
	closed    bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithNavigationTimeout overrides DefaultNavigationTimeout.
func WithNavigationTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithVerbose enables step-level logging.
func WithVerbose(verbose bool) Option {
	return func(e *Extractor) { e.verbose = verbose }
}

// New creates an extractor for one site. The browser session is not
// launched until the first discovery call.
func New(rule sites.Rule, factory browser.Factory, opts ...Option) *Extractor {
	e := &Extractor{
		rule:    rule,
		factory: factory,
		timeout: DefaultNavigationTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Links navigates to the site's listing page and returns the discovered
// links with a terminal status. pages bounds the scroll-and-wait steps used
// on lazy-loaded listings; pages <= 0 uses the rule's default. Internal
// failures are converted to a status, never propagated; the error return is
// non-nil only for use-after-Close and context cancellation.
func (e *Extractor) Links(ctx context.Context, pages int) (types.ExtractionStatus, []types.Link, error) {
	if e.closed {
		return types.StatusError, nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return types.StatusError, nil, err
	}
	if pages <= 0 {
		pages = e.rule.ScrollPages
	}

	if err := e.ensureSession(ctx); err != nil {
		e.logf("[EXTRACT] %s: session acquisition failed: %v", e.rule.Identity.InternalName, err)
		return types.StatusError, nil, nil
	}

	nav, navErr := e.page.Navigate(ctx, e.rule.Identity.URL, e.timeout)
	if navErr == nil {
		e.navigated = true
	} else {
		e.logf("[EXTRACT] %s: navigation failed: %v", e.rule.Identity.InternalName, navErr)
	}

	if navErr == nil && pages > 0 {
		if err := e.scrollListing(ctx, pages); err != nil {
			if ctx.Err() != nil {
				return types.StatusError, nil, ctx.Err()
			}
			// A stalled scroll is not fatal; extract what loaded.
			e.logf("[EXTRACT] %s: scroll aborted: %v", e.rule.Identity.InternalName, err)
		}
	}

	var raw []types.Link
	evalErr := e.page.Evaluate(ctx, e.rule.ListingScript, &raw)
	if ctx.Err() != nil {
		return types.StatusError, nil, ctx.Err()
	}

	links := postProcess(e.rule, raw)

	switch {
	case len(links) > 0:
		return types.StatusSuccess, links, nil
	case navErr != nil || nav == nil || !nav.OK:
		return types.StatusNavigationFailed, nil, nil
	case evalErr != nil:
		e.logf("[EXTRACT] %s: listing script failed: %v", e.rule.Identity.InternalName, evalErr)
		return types.StatusError, nil, nil
	default:
		return types.StatusNoLinks, nil, nil
	}
}

// Refresh re-navigates the session: a reload when a navigation already
// happened, the initial navigation otherwise. Errors are swallowed; the
// return value reports success.
func (e *Extractor) Refresh(ctx context.Context, timeout time.Duration) bool {
	if e.closed {
		return false
	}
	if timeout <= 0 {
		timeout = e.timeout
	}
	if err := e.ensureSession(ctx); err != nil {
		return false
	}

	if e.navigated {
		if err := e.page.Reload(ctx, timeout); err != nil {
			e.logf("[EXTRACT] %s: refresh reload failed: %v", e.rule.Identity.InternalName, err)
			return false
		}
		return true
	}

	if _, err := e.page.Navigate(ctx, e.rule.Identity.URL, timeout); err != nil {
		e.logf("[EXTRACT] %s: refresh navigation failed: %v", e.rule.Identity.InternalName, err)
		return false
	}
	e.navigated = true
	return true
}

// Close releases the automation session, page first then browser,
// tolerating teardown errors. Double-close is a no-op.
func (e *Extractor) Close() {
	if e.closed {
		return
	}
	e.closed = true

	if e.page != nil {
		if err := e.page.Close(); err != nil {
			e.logf("[EXTRACT] %s: page close: %v", e.rule.Identity.InternalName, err)
		}
		e.page = nil
	}
	if e.session != nil {
		if err := e.session.Close(); err != nil {
			e.logf("[EXTRACT] %s: browser close: %v", e.rule.Identity.InternalName, err)
		}
		e.session = nil
	}
	e.navigated = false
}

// ensureSession lazily launches the browser and opens the single page this
// extractor reuses across calls.
func (e *Extractor) ensureSession(ctx context.Context) error {
	if e.page != nil {
		return nil
	}
	session, err := e.factory(ctx)
	if err != nil {
		return err
	}
	page, err := session.NewPage(ctx)
	if err != nil {
		_ = session.Close()
		return err
	}
	e.session = session
	e.page = page
	return nil
}

// scrollListing performs up to pages scroll-and-wait steps, each scrolling
// one viewport and polling total content height. When the height stops
// increasing it forces a jump to the bottom; if the height still does not
// grow, the listing has stalled and scrolling stops early.
func (e *Extractor) scrollListing(ctx context.Context, pages int) error {
	lastHeight, err := e.page.ContentHeight(ctx)
	if err != nil {
		return err
	}

	for step := 0; step < pages; step++ {
		if err := e.page.ScrollBy(ctx, lastHeight); err != nil {
			return err
		}
		if err := settle(ctx, scrollSettleDelay); err != nil {
			return err
		}

		height, err := e.page.ContentHeight(ctx)
		if err != nil {
			return err
		}

		if height <= lastHeight {
			// Force a jump to the absolute bottom; some listings only
			// trigger their loader at the final scroll position.
			if err := e.page.ScrollBy(ctx, height*2); err != nil {
				return err
			}
			if err := settle(ctx, scrollSettleDelay); err != nil {
				return err
			}
			height, err = e.page.ContentHeight(ctx)
			if err != nil {
				return err
			}
			if height <= lastHeight {
				return nil
			}
		}
		lastHeight = height
	}
	return nil
}

// settle waits d, aborting early on context cancellation.
func settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Extractor) logf(format string, args ...any) {
	if e.verbose {
		log.Printf(format, args...)
	}
}
