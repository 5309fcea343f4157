// Package browser abstracts the remote-controlled browser used for link
// discovery and article extraction. The pipeline consumes only these
// interfaces; any engine that can navigate, evaluate a script in the
// document context, and report layout metrics is substitutable.
package browser

import (
	"context"
	"fmt"
	"time"
)

// Navigation describes the outcome of a page navigation.
type Navigation struct {
	// OK is true when a response was received with a 2xx status.
	OK bool
	// StatusCode is the HTTP status of the main document response, or 0
	// when no response was observed.
	StatusCode int
}

// Page is a single tab. A Page is not safe for concurrent use.
type Page interface {
	// Navigate loads url, waiting only for structural-load readiness
	// (document body present), bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) (*Navigation, error)

	// Reload re-navigates to the current document, bounded by timeout.
	Reload(ctx context.Context, timeout time.Duration) error

	// Evaluate runs script in the document context and unmarshals the
	// JSON-like result into out.
	Evaluate(ctx context.Context, script string, out any) error

	// ScrollBy scrolls the viewport vertically by deltaY pixels.
	ScrollBy(ctx context.Context, deltaY int) error

	// ContentHeight returns the current total document height in pixels.
	ContentHeight(ctx context.Context) (int, error)

	// Close releases the tab. Idempotent.
	Close() error
}

// Browser is one automation session. A Browser owns its pages; closing the
// browser closes every page opened from it.
type Browser interface {
	// NewPage opens a fresh tab with no state carried over from other tabs.
	NewPage(ctx context.Context) (Page, error)

	// Close releases the session. Idempotent.
	Close() error
}

// Factory launches a new automation session. Extractors and archivers
// acquire sessions lazily through a Factory so tests can substitute fakes.
type Factory func(ctx context.Context) (Browser, error)

// Error represents a browser automation failure.
type Error struct {
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("browser %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
