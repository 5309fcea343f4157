package sites

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_RulesAreComplete(t *testing.T) {
	rules := All()
	require.Len(t, rules, 3)

	seen := map[string]bool{}
	for _, rule := range rules {
		assert.NotEmpty(t, rule.Identity.URL)
		assert.NotEmpty(t, rule.Identity.FriendlyName)
		assert.NotEmpty(t, rule.Identity.InternalName)
		assert.NotEmpty(t, rule.ListingScript)
		assert.NotEmpty(t, rule.ArticleScript)
		assert.False(t, seen[rule.Identity.InternalName], "duplicate internal name")
		seen[rule.Identity.InternalName] = true
	}
}

func TestByName(t *testing.T) {
	rule, ok := ByName("TechCrunch")
	require.True(t, ok)
	assert.Equal(t, "techcrunch", rule.Identity.InternalName)

	_, ok = ByName("does-not-exist")
	assert.False(t, ok)
}

func TestAllowsURL(t *testing.T) {
	tc, ok := ByName("techcrunch")
	require.True(t, ok)

	assert.True(t, tc.AllowsURL("https://techcrunch.com/2026/08/25/some-story/"))
	assert.False(t, tc.AllowsURL("https://techcrunch.com/events/"))
	assert.False(t, tc.AllowsURL("https://example.com/2026/08/25/"))
	assert.False(t, tc.AllowsURL(""))

	// No allow-list means every non-empty URL passes.
	hn, ok := ByName("hackernews")
	require.True(t, ok)
	assert.True(t, hn.AllowsURL("https://anywhere.example/post"))
	assert.False(t, hn.AllowsURL(""))
}

func TestIsNoise(t *testing.T) {
	hn, ok := ByName("hackernews")
	require.True(t, ok)

	assert.True(t, hn.IsNoise("12 comments"))
	assert.True(t, hn.IsNoise("1 comment"))
	assert.False(t, hn.IsNoise("Why 12 comments matter"))
	assert.False(t, hn.IsNoise("Postgres at scale"))
}

func TestIsBanned(t *testing.T) {
	hn, ok := ByName("hackernews")
	require.True(t, ok)

	assert.True(t, hn.IsBanned("Privacy Policy"))
	assert.True(t, hn.IsBanned("privacy policy"))
	assert.False(t, hn.IsBanned("Privacy policy changes at BigCo"))
}

func TestListingScriptQuotesSelector(t *testing.T) {
	script := listingScript(`a[data-kind="story"]`)
	assert.Contains(t, script, `"a[data-kind=\"story\"]"`)
	assert.Contains(t, script, "querySelectorAll")
}

func TestArticleScriptListsSelectorsInOrder(t *testing.T) {
	script := articleScript("article", "main")
	first := strings.Index(script, `"article"`)
	second := strings.Index(script, `"main"`)
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Contains(t, script, "article:published_time")
}
