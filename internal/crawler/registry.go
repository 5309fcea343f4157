package crawler

import (
	"context"
	"log"

	"github.com/jonathan/news-archiver/internal/db"
)

// Registry owns the fixed set of crawlers. It is explicitly constructed and
// injected wherever it is needed; there is no process-wide instance.
type Registry struct {
	crawlers []*Crawler
	verbose  bool
}

// NewRegistry creates a registry over the given crawlers.
func NewRegistry(verbose bool, crawlers ...*Crawler) *Registry {
	return &Registry{crawlers: crawlers, verbose: verbose}
}

// Crawlers returns the registered crawlers in registration order.
func (r *Registry) Crawlers() []*Crawler {
	return r.crawlers
}

// Get looks a crawler up by internal name, case-insensitively.
func (r *Registry) Get(name string) (*Crawler, bool) {
	for _, c := range r.crawlers {
		if c.Identity().Matches(name) {
			return c, true
		}
	}
	return nil, false
}

// InitializeAll initializes every crawler's components.
func (r *Registry) InitializeAll() {
	for _, c := range r.crawlers {
		c.Initialize()
	}
}

// ReleaseAll releases every crawler's components. Idempotent; releasing an
// uninitialized crawler is a no-op.
func (r *Registry) ReleaseAll() {
	for _, c := range r.crawlers {
		c.Release()
	}
}

// Initialize initializes one crawler by name. A miss is silently ignored.
func (r *Registry) Initialize(name string) {
	if c, ok := r.Get(name); ok {
		c.Initialize()
	}
}

// Release releases one crawler by name. A miss is silently ignored.
func (r *Registry) Release(name string) {
	if c, ok := r.Get(name); ok {
		c.Release()
	}
}

// RunAll runs every crawler sequentially against the store. One crawler's
// failure is logged and isolated so it cannot block the rest; only context
// cancellation stops the sweep.
func (r *Registry) RunAll(ctx context.Context, store db.ArticleStore) error {
	for _, c := range r.crawlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Run(ctx, store); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if r.verbose {
				log.Printf("[CRAWL] %s: run failed: %v", c.Identity().InternalName, err)
			}
		}
	}
	return nil
}
