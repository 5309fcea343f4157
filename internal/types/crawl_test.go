package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "navigation_failed", StatusNavigationFailed.String())
	assert.Equal(t, "no_links", StatusNoLinks.String())
	assert.Equal(t, "error", StatusError.String())
}

func TestCrawlerIdentityMatches(t *testing.T) {
	id := CrawlerIdentity{
		URL:          "https://news.ycombinator.com/",
		FriendlyName: "Hacker News",
		InternalName: "hackernews",
	}

	assert.True(t, id.Matches("hackernews"))
	assert.True(t, id.Matches("HackerNews"))
	assert.False(t, id.Matches("Hacker News"))
	assert.False(t, id.Matches(""))
}

func TestKnownCategories(t *testing.T) {
	categories := KnownCategories()
	assert.Contains(t, categories, CategoryGeneral)
	assert.Contains(t, categories, CategoryTechnology)

	seen := map[Category]bool{}
	for _, c := range categories {
		assert.False(t, seen[c], "duplicate category %s", c)
		seen[c] = true
	}
}
