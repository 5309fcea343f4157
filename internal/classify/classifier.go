// Package classify provides the topic-classification collaborator: given an
// article title, assign one Category. The pipeline consumes only the
// Classifier interface; classification failures must never drop
// otherwise-valid content, so callers fall back to CategoryGeneral.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/news-archiver/internal/types"
)

// Classifier assigns a topic category to an article title.
type Classifier interface {
	Classify(ctx context.Context, title string) (types.Category, error)
	Close() error
}

// Error represents a classification failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("classification error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// keywordRules maps lowercase keywords to categories, checked in order.
var keywordRules = []struct {
	category types.Category
	keywords []string
}{
	{types.CategoryPolitics, []string{"election", "senate", "parliament", "congress", "minister", "president", "policy", "government"}},
	{types.CategoryBusiness, []string{"market", "stock", "startup", "funding", "acquisition", "ipo", "earnings", "economy", "bank"}},
	{types.CategoryTechnology, []string{"software", "hardware", "ai ", " ai", "chip", "app ", "cloud", "linux", "programming", "google", "apple", "microsoft", "crypto"}},
	{types.CategoryScience, []string{"research", "study", "species", "physics", "climate", "nasa", "quantum", "vaccine", "genome"}},
	{types.CategorySports, []string{"league", "match", "championship", "tournament", "olympic", "season", "coach", "playoff"}},
	{types.CategoryCulture, []string{"film", "album", "museum", "festival", "novel", "theater", "music", "art "}},
}

// Keyword is an offline classifier backed by a keyword table. It is the
// zero-dependency fallback used when no API key is configured, and the
// deterministic collaborator used in tests.
type Keyword struct{}

// NewKeyword creates a keyword classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Classify matches the title against the keyword table, first hit wins.
func (k *Keyword) Classify(_ context.Context, title string) (types.Category, error) {
	lower := " " + strings.ToLower(title) + " "
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category, nil
			}
		}
	}
	return types.CategoryGeneral, nil
}

// Close is a no-op; the keyword classifier holds no resources.
func (k *Keyword) Close() error {
	return nil
}
