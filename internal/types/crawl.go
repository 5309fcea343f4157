// Package types defines the shared value types passed between the crawl
// pipeline stages: discovery, archival, classification, and persistence.
package types

import (
	"strings"
	"time"
)

// Link is a discovered anchor on a listing page: a title and the URL it
// points at. Links are immutable once returned by an extractor; the URL is
// the identity used for deduplication.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ExtractionStatus is the terminal classification of one link-discovery
// attempt. A discovery attempt always resolves to exactly one status.
type ExtractionStatus int

const (
	// StatusSuccess means at least one link survived filtering.
	StatusSuccess ExtractionStatus = iota
	// StatusNavigationFailed means the listing navigation response was
	// absent or non-OK and no links were found.
	StatusNavigationFailed
	// StatusNoLinks means navigation succeeded but extraction yielded
	// nothing.
	StatusNoLinks
	// StatusError means a step raised an unexpected error; extractors
	// convert, never propagate.
	StatusError
)

// String returns the status name for logging.
func (s ExtractionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNavigationFailed:
		return "navigation_failed"
	case StatusNoLinks:
		return "no_links"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ArchiveResult is the outcome of archiving one link. Err == nil signals
// success; on failure all content fields are zeroed and Err carries the
// cause. Results are addressable by URL, not by input order.
type ArchiveResult struct {
	Title        string
	URL          string
	OutputFolder string
	ImageCount   int
	TextLength   int
	Content      string
	Publisher    string
	PublishTime  *time.Time
	Err          error
}

// CrawlerIdentity is the static identity of one site's crawler, used for
// registry lookup and log correlation.
type CrawlerIdentity struct {
	URL          string
	FriendlyName string
	InternalName string
}

// Matches reports whether name refers to this identity. InternalName
// comparisons are case-insensitive.
func (id CrawlerIdentity) Matches(name string) bool {
	return strings.EqualFold(id.InternalName, name)
}

// Category is the topic assigned to an archived article by the
// classification collaborator.
type Category string

// Categories the classifier may assign. CategoryGeneral is the fallback
// when classification fails or yields something unrecognized.
const (
	CategoryGeneral    Category = "general"
	CategoryPolitics   Category = "politics"
	CategoryBusiness   Category = "business"
	CategoryTechnology Category = "technology"
	CategoryScience    Category = "science"
	CategorySports     Category = "sports"
	CategoryCulture    Category = "culture"
)

// KnownCategories lists every category the pipeline accepts from a
// classifier.
func KnownCategories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryPolitics,
		CategoryBusiness,
		CategoryTechnology,
		CategoryScience,
		CategorySports,
		CategoryCulture,
	}
}
