package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-archiver/internal/db"
	"github.com/jonathan/news-archiver/internal/sites"
	"github.com/jonathan/news-archiver/internal/types"
)

type fakeDiscoverer struct {
	status types.ExtractionStatus
	links  []types.Link
	err    error

	refreshed bool
	closed    bool
}

func (d *fakeDiscoverer) Links(_ context.Context, _ int) (types.ExtractionStatus, []types.Link, error) {
	return d.status, d.links, d.err
}

func (d *fakeDiscoverer) Refresh(_ context.Context, _ time.Duration) bool {
	d.refreshed = true
	return true
}

func (d *fakeDiscoverer) Close() { d.closed = true }

type fakeExpander struct {
	// results keyed by URL; links without an entry succeed with stub content.
	failures map[string]error
	empty    map[string]bool

	batches [][]types.Link
	closed  bool
}

func (e *fakeExpander) Archive(_ context.Context, links []types.Link, _ string, _ time.Duration) []types.ArchiveResult {
	e.batches = append(e.batches, links)
	results := make([]types.ArchiveResult, 0, len(links))
	for _, link := range links {
		if err, ok := e.failures[link.URL]; ok {
			results = append(results, types.ArchiveResult{Title: link.Title, URL: link.URL, Err: err})
			continue
		}
		content := "body of " + link.Title
		if e.empty[link.URL] {
			content = "   "
		}
		results = append(results, types.ArchiveResult{
			Title:      link.Title,
			URL:        link.URL,
			Content:    content,
			TextLength: len([]rune(content)),
		})
	}
	return results
}

func (e *fakeExpander) Close() { e.closed = true }

type fakeStore struct {
	existing    map[string]struct{}
	existingErr error
	appendErr   error
	commitErr   error

	appended []*db.ArchivedEntity
	commits  int
}

func (s *fakeStore) ExistingURLs(_ context.Context) (map[string]struct{}, error) {
	if s.existingErr != nil {
		return nil, s.existingErr
	}
	out := make(map[string]struct{}, len(s.existing))
	for url := range s.existing {
		out[url] = struct{}{}
	}
	return out, nil
}

func (s *fakeStore) Append(_ context.Context, entity *db.ArchivedEntity) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, entity)
	s.existing[entity.URL] = struct{}{}
	return nil
}

func (s *fakeStore) Commit(_ context.Context) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.commits++
	return nil
}

func (s *fakeStore) Close() {}

type fakeClassifier struct {
	category types.Category
	err      error
	calls    []string
}

func (c *fakeClassifier) Classify(_ context.Context, title string) (types.Category, error) {
	c.calls = append(c.calls, title)
	if c.err != nil {
		return types.CategoryGeneral, c.err
	}
	return c.category, nil
}

func (c *fakeClassifier) Close() error { return nil }

func newTestCrawler(d *fakeDiscoverer, e *fakeExpander, cl *fakeClassifier) *Crawler {
	rule, ok := sites.ByName("hackernews")
	if !ok {
		panic("hackernews rule missing")
	}
	c := New(rule, nil, cl, Options{})
	c.extractor = d
	c.archiver = e
	c.initialized = true
	return c
}

func TestRun_ArchivesOnlyNewLinks(t *testing.T) {
	discoverer := &fakeDiscoverer{
		status: types.StatusSuccess,
		links: []types.Link{
			{Title: "A", URL: "https://x/1"},
			{Title: "B", URL: "https://x/2"},
		},
	}
	expander := &fakeExpander{}
	classifier := &fakeClassifier{category: types.CategoryTechnology}
	store := &fakeStore{existing: map[string]struct{}{"https://x/1": {}}}

	c := newTestCrawler(discoverer, expander, classifier)
	require.NoError(t, c.Run(context.Background(), store))

	require.Len(t, expander.batches, 1)
	assert.Equal(t, []types.Link{{Title: "B", URL: "https://x/2"}}, expander.batches[0])

	require.Len(t, store.appended, 1)
	entity := store.appended[0]
	assert.Equal(t, "B", entity.Title)
	assert.Equal(t, "https://x/2", entity.URL)
	assert.Equal(t, types.CategoryTechnology, entity.Category)
	assert.Equal(t, 1, store.commits)
}

func TestRun_SecondCycleIsIdempotent(t *testing.T) {
	discoverer := &fakeDiscoverer{
		status: types.StatusSuccess,
		links:  []types.Link{{Title: "A", URL: "https://x/1"}},
	}
	expander := &fakeExpander{}
	classifier := &fakeClassifier{category: types.CategoryGeneral}
	store := &fakeStore{existing: map[string]struct{}{}}

	c := newTestCrawler(discoverer, expander, classifier)
	require.NoError(t, c.Run(context.Background(), store))
	require.Len(t, store.appended, 1)

	// Same listing again: everything is stored, nothing gets archived and
	// the listing is refreshed instead.
	require.NoError(t, c.Run(context.Background(), store))
	assert.Len(t, store.appended, 1)
	assert.Len(t, expander.batches, 1)
	assert.True(t, discoverer.refreshed)
}

func TestRun_NoLinksSkipsStore(t *testing.T) {
	discoverer := &fakeDiscoverer{status: types.StatusNoLinks}
	expander := &fakeExpander{}
	store := &fakeStore{existing: map[string]struct{}{}}

	c := newTestCrawler(discoverer, expander, &fakeClassifier{})
	require.NoError(t, c.Run(context.Background(), store))

	assert.Empty(t, expander.batches)
	assert.Zero(t, store.commits)
}

func TestRun_SkipsFailedAndEmptyResults(t *testing.T) {
	discoverer := &fakeDiscoverer{
		status: types.StatusSuccess,
		links: []types.Link{
			{Title: "Fails", URL: "https://x/1"},
			{Title: "Empty", URL: "https://x/2"},
			{Title: "Good", URL: "https://x/3"},
		},
	}
	expander := &fakeExpander{
		failures: map[string]error{"https://x/1": errors.New("navigation failed")},
		empty:    map[string]bool{"https://x/2": true},
	}
	store := &fakeStore{existing: map[string]struct{}{}}

	c := newTestCrawler(discoverer, expander, &fakeClassifier{category: types.CategoryGeneral})
	require.NoError(t, c.Run(context.Background(), store))

	require.Len(t, store.appended, 1)
	assert.Equal(t, "https://x/3", store.appended[0].URL)
	assert.Equal(t, 1, store.commits)
}

func TestRun_ClassificationFailureFallsBackToGeneral(t *testing.T) {
	discoverer := &fakeDiscoverer{
		status: types.StatusSuccess,
		links:  []types.Link{{Title: "A", URL: "https://x/1"}},
	}
	store := &fakeStore{existing: map[string]struct{}{}}
	classifier := &fakeClassifier{err: errors.New("quota exceeded")}

	c := newTestCrawler(discoverer, &fakeExpander{}, classifier)
	require.NoError(t, c.Run(context.Background(), store))

	require.Len(t, store.appended, 1)
	assert.Equal(t, types.CategoryGeneral, store.appended[0].Category)
}

func TestRun_UninitializedFails(t *testing.T) {
	rule, ok := sites.ByName("hackernews")
	require.True(t, ok)

	c := New(rule, nil, &fakeClassifier{}, Options{})
	err := c.Run(context.Background(), &fakeStore{existing: map[string]struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestRun_StoreReadFailurePropagates(t *testing.T) {
	discoverer := &fakeDiscoverer{
		status: types.StatusSuccess,
		links:  []types.Link{{Title: "A", URL: "https://x/1"}},
	}
	store := &fakeStore{existingErr: errors.New("connection refused")}

	c := newTestCrawler(discoverer, &fakeExpander{}, &fakeClassifier{})
	err := c.Run(context.Background(), store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load stored URLs")
}

func TestRun_DiscoveryErrorPropagates(t *testing.T) {
	discoverer := &fakeDiscoverer{err: context.Canceled}

	c := newTestCrawler(discoverer, &fakeExpander{}, &fakeClassifier{})
	err := c.Run(context.Background(), &fakeStore{existing: map[string]struct{}{}})
	assert.ErrorIs(t, err, context.Canceled)
}
