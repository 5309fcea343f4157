// Package scheduler drives repeated crawl cycles on a fixed interval. The
// orchestrator is the only driver of crawl work; sites run sequentially
// within one tick.
package scheduler

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/news-archiver/internal/db"
)

// DefaultInterval is the delay between crawl cycles.
const DefaultInterval = 10 * time.Minute

// Runner is the registry surface the orchestrator drives. Satisfied by
// *crawler.Registry.
type Runner interface {
	RunAll(ctx context.Context, store db.ArticleStore) error
}

// Orchestrator runs every registered crawler once per tick.
type Orchestrator struct {
	registry Runner
	store    db.ArticleStore
	interval time.Duration
	verbose  bool

	// inFlight is the single-flight guard: a tick that fires while the
	// previous cycle is still running is skipped, so a slow cycle never
	// overlaps the next one.
	inFlight *semaphore.Weighted
}

// New creates an orchestrator. A non-positive interval uses
// DefaultInterval.
func New(registry Runner, store db.ArticleStore, interval time.Duration, verbose bool) *Orchestrator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Orchestrator{
		registry: registry,
		store:    store,
		interval: interval,
		verbose:  verbose,
		inFlight: semaphore.NewWeighted(1),
	}
}

// Interval returns the effective tick interval.
func (o *Orchestrator) Interval() time.Duration {
	return o.interval
}

// Start enters the periodic loop and blocks until ctx is cancelled. The
// first cycle runs after one full interval. On cancellation Start waits for
// any in-flight cycle to finish, then returns the context's error.
func (o *Orchestrator) Start(ctx context.Context) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.logf("[SCHEDULER] started, interval %s", o.interval)

	for {
		select {
		case <-ctx.Done():
			// Drain: wait for an in-flight cycle before reporting stopped.
			_ = o.inFlight.Acquire(context.Background(), 1)
			o.inFlight.Release(1)
			o.logf("[SCHEDULER] stopped")
			return ctx.Err()

		case <-ticker.C:
			if !o.inFlight.TryAcquire(1) {
				o.logf("[SCHEDULER] tick skipped: previous cycle still running")
				continue
			}
			go func() {
				defer o.inFlight.Release(1)
				o.runCycle(ctx)
			}()
		}
	}
}

// RunOnce executes a single crawl cycle outside the periodic loop, honoring
// the same single-flight guard.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	if err := o.inFlight.Acquire(ctx, 1); err != nil {
		return err
	}
	defer o.inFlight.Release(1)
	return o.registry.RunAll(ctx, o.store)
}

func (o *Orchestrator) runCycle(ctx context.Context) {
	started := time.Now()
	if err := o.registry.RunAll(ctx, o.store); err != nil {
		if ctx.Err() != nil {
			return
		}
		o.logf("[SCHEDULER] cycle failed: %v", err)
		return
	}
	o.logf("[SCHEDULER] cycle finished in %s", time.Since(started).Round(time.Millisecond))
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}
