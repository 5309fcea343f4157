// Package sites defines the closed set of per-site extraction rules. Each
// rule bundles a site's identity with the scripts and filters that turn its
// listing page into links and its article pages into content. Adding a site
// means adding a rule here; the rest of the pipeline is site-agnostic.
package sites

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/news-archiver/internal/types"
)

// AllFilteredPolicy decides what a link extractor returns when banned-title
// filtering would empty an otherwise non-empty result set.
type AllFilteredPolicy int

const (
	// ReturnUnfiltered recovers conservatively: hand back the set as it
	// was before banned-title filtering.
	ReturnUnfiltered AllFilteredPolicy = iota
	// ReturnEmpty treats a fully-banned set as no links at all.
	ReturnEmpty
)

// Rule is one site's extraction configuration.
type Rule struct {
	Identity types.CrawlerIdentity

	// ListingScript runs in the listing page's document context and
	// returns [{title, url}] with hrefs already resolved to absolute form.
	ListingScript string

	// ArticleScript runs in an article page's document context and
	// returns {text, html, images, publisher, publishTime}.
	ArticleScript string

	// AllowPrefixes restricts discovered URLs to these prefixes. Empty
	// means no restriction.
	AllowPrefixes []string

	// NoisePattern matches anchor titles that are navigation noise rather
	// than content (e.g. a bare "12 comments" label).
	NoisePattern *regexp.Regexp

	// BannedTitles is the site's footer/legal/nav boilerplate; anchors
	// whose normalized title matches (case-insensitive) are stripped.
	BannedTitles []string

	// OnAllFiltered is this site's recovery policy when BannedTitles
	// would remove every discovered link.
	OnAllFiltered AllFilteredPolicy

	// ScrollPages is the number of scroll-and-wait steps used on
	// lazy-loaded listings. Zero means the listing is static.
	ScrollPages int
}

// AllowsURL reports whether url passes the rule's prefix allow-list.
func (r Rule) AllowsURL(url string) bool {
	if url == "" {
		return false
	}
	if len(r.AllowPrefixes) == 0 {
		return true
	}
	for _, prefix := range r.AllowPrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// IsNoise reports whether title matches the rule's noise pattern.
func (r Rule) IsNoise(title string) bool {
	return r.NoisePattern != nil && r.NoisePattern.MatchString(title)
}

// IsBanned reports whether title is in the rule's banned-title set.
func (r Rule) IsBanned(title string) bool {
	for _, banned := range r.BannedTitles {
		if strings.EqualFold(title, banned) {
			return true
		}
	}
	return false
}

// listingScript builds the in-document listing extraction routine for a
// given anchor selector. The routine resolves hrefs to absolute form and
// drops anchors with no visible text.
func listingScript(anchorSelector string) string {
	return fmt.Sprintf(`(() => {
	const anchors = Array.from(document.querySelectorAll(%q));
	const seen = {};
	const out = [];
	for (const a of anchors) {
		const url = a.href || '';
		const title = (a.innerText || '').trim();
		if (!url || !title) continue;
		if (seen[url]) continue;
		seen[url] = true;
		out.push({title: title, url: url});
	}
	return out;
})()`, anchorSelector)
}

// articleScript builds the in-document article extraction routine. The
// content root is the first matching selector, falling back to body.
func articleScript(contentSelectors ...string) string {
	quoted := make([]string, len(contentSelectors))
	for i, s := range contentSelectors {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf(`(() => {
	const selectors = [%s];
	let root = null;
	for (const s of selectors) {
		root = document.querySelector(s);
		if (root) break;
	}
	if (!root) root = document.body;
	const images = Array.from(root.querySelectorAll('img'))
		.map(img => img.getAttribute('src') || '')
		.filter(src => src);
	const timeMeta = document.querySelector('meta[property="article:published_time"]');
	const timeEl = document.querySelector('time[datetime]');
	const siteMeta = document.querySelector('meta[property="og:site_name"]');
	return {
		text: root ? (root.innerText || '') : '',
		html: root ? (root.outerHTML || '') : '',
		images: images,
		publisher: siteMeta ? (siteMeta.getAttribute('content') || '') : '',
		publishTime: timeMeta ? (timeMeta.getAttribute('content') || '')
			: (timeEl ? (timeEl.getAttribute('datetime') || '') : '')
	};
})()`, strings.Join(quoted, ", "))
}

// commonBoilerplate is the banned-title baseline shared by every site.
var commonBoilerplate = []string{
	"About",
	"Contact",
	"Privacy Policy",
	"Terms of Service",
	"Terms of Use",
	"Advertise",
	"Login",
	"Log in",
	"Sign up",
	"Subscribe",
	"Newsletter",
	"RSS",
	"FAQ",
}

// All returns every registered site rule. The slice is freshly allocated;
// callers may reorder or filter it.
func All() []Rule {
	return []Rule{
		hackerNews(),
		lobsters(),
		techCrunch(),
	}
}

// ByName looks up a rule by its internal name, case-insensitively.
func ByName(name string) (Rule, bool) {
	for _, rule := range All() {
		if rule.Identity.Matches(name) {
			return rule, true
		}
	}
	return Rule{}, false
}

func hackerNews() Rule {
	return Rule{
		Identity: types.CrawlerIdentity{
			URL:          "https://news.ycombinator.com/",
			FriendlyName: "Hacker News",
			InternalName: "hackernews",
		},
		ListingScript: listingScript("span.titleline > a"),
		ArticleScript: articleScript("article", "main", "#content"),
		NoisePattern:  regexp.MustCompile(`^\d+\s+comments?$`),
		BannedTitles:  commonBoilerplate,
		OnAllFiltered: ReturnUnfiltered,
	}
}

func lobsters() Rule {
	return Rule{
		Identity: types.CrawlerIdentity{
			URL:          "https://lobste.rs/",
			FriendlyName: "Lobsters",
			InternalName: "lobsters",
		},
		ListingScript: listingScript(".link > a.u-url"),
		ArticleScript: articleScript("article", "main", "#content"),
		NoisePattern:  regexp.MustCompile(`^(\d+\s+comments?|hide|save|flag)$`),
		BannedTitles:  commonBoilerplate,
		OnAllFiltered: ReturnEmpty,
	}
}

func techCrunch() Rule {
	return Rule{
		Identity: types.CrawlerIdentity{
			URL:          "https://techcrunch.com/",
			FriendlyName: "TechCrunch",
			InternalName: "techcrunch",
		},
		ListingScript: listingScript("a.loop-card__title-link"),
		ArticleScript: articleScript("article .entry-content", "article", "main"),
		// Article permalinks are date-prefixed; everything else on the
		// listing is navigation.
		AllowPrefixes: []string{"https://techcrunch.com/2"},
		NoisePattern:  regexp.MustCompile(`^(read more|load more)$`),
		BannedTitles:  append([]string{"Events", "Podcasts", "Startups"}, commonBoilerplate...),
		OnAllFiltered: ReturnUnfiltered,
		// The listing lazy-loads cards as the viewport approaches the
		// bottom; three steps covers roughly a day of posts.
		ScrollPages: 3,
	}
}
