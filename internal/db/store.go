// Package db provides PostgreSQL-backed persistence for archived articles.
// The pipeline consumes it through the ArticleStore interface: one bulk URL
// read for dedup, buffered appends, and a single batch commit per crawl run.
package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/news-archiver/internal/types"
)

// ArchivedEntity is one stored article. Rows are insert-only; the url
// column carries a unique constraint that is the final arbiter of dedup
// under concurrent writers.
type ArchivedEntity struct {
	ID          uuid.UUID
	Title       string
	URL         string
	TextLength  int
	ImageCount  int
	PublishTime *time.Time
	Publisher   string
	Content     string
	Category    types.Category
}

// ArticleStore is the persistence collaborator consumed by the crawl
// pipeline.
type ArticleStore interface {
	// ExistingURLs bulk-reads every stored article URL for dedup.
	ExistingURLs(ctx context.Context) (map[string]struct{}, error)

	// Append buffers one new entity for the next Commit.
	Append(ctx context.Context, entity *ArchivedEntity) error

	// Commit writes all buffered entities in one batch. Already-present
	// URLs are silently skipped.
	Commit(ctx context.Context) error

	// Close releases the store's resources.
	Close()
}

// categoryFromString maps a stored category column back to a known
// Category, defaulting to general for anything unrecognized.
func categoryFromString(s string) types.Category {
	for _, c := range types.KnownCategories() {
		if string(c) == s {
			return c
		}
	}
	return types.CategoryGeneral
}
