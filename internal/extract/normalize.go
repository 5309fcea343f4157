package extract

import (
	"strings"

	"github.com/jonathan/news-archiver/internal/sites"
	"github.com/jonathan/news-archiver/internal/types"
)

// NormalizeTitle collapses all whitespace runs (including newlines and tabs)
// to single spaces and trims the ends.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// postProcess applies the discovery filters outside the document context:
// title normalization, the rule's URL allow-list and noise pattern,
// case-insensitive URL dedup (first occurrence wins), and the banned-title
// set with the rule's all-filtered policy.
func postProcess(rule sites.Rule, raw []types.Link) []types.Link {
	seen := make(map[string]bool, len(raw))
	filtered := make([]types.Link, 0, len(raw))

	for _, link := range raw {
		title := NormalizeTitle(link.Title)
		if title == "" || link.URL == "" {
			continue
		}
		if !rule.AllowsURL(link.URL) {
			continue
		}
		if rule.IsNoise(title) {
			continue
		}
		key := strings.ToLower(link.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		filtered = append(filtered, types.Link{Title: title, URL: link.URL})
	}

	kept := make([]types.Link, 0, len(filtered))
	for _, link := range filtered {
		if !rule.IsBanned(link.Title) {
			kept = append(kept, link)
		}
	}

	// Banned-title filtering emptied a non-empty set; recovery is a
	// per-site policy.
	if len(kept) == 0 && len(filtered) > 0 && rule.OnAllFiltered == sites.ReturnUnfiltered {
		return filtered
	}
	return kept
}
