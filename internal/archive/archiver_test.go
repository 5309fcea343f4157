package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-archiver/internal/browser"
	"github.com/jonathan/news-archiver/internal/sites"
	"github.com/jonathan/news-archiver/internal/types"
)

// fakeSession serves scripted extractions per URL, one fresh page per link
// like the real session.
type fakeSession struct {
	failNav map[string]bool
	content map[string]extraction

	pagesOpened int
	pagesClosed int
	closed      bool
}

func (s *fakeSession) NewPage(_ context.Context) (browser.Page, error) {
	s.pagesOpened++
	return &fakeArticlePage{session: s}, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeArticlePage struct {
	session *fakeSession
	url     string
}

func (p *fakeArticlePage) Navigate(_ context.Context, url string, _ time.Duration) (*browser.Navigation, error) {
	p.url = url
	if p.session.failNav[url] {
		return nil, errors.New("net::ERR_CONNECTION_REFUSED")
	}
	return &browser.Navigation{OK: true, StatusCode: 200}, nil
}

func (p *fakeArticlePage) Reload(_ context.Context, _ time.Duration) error { return nil }

func (p *fakeArticlePage) Evaluate(_ context.Context, _ string, out any) error {
	if target, ok := out.(*extraction); ok {
		*target = p.session.content[p.url]
	}
	return nil
}

func (p *fakeArticlePage) ScrollBy(_ context.Context, _ int) error { return nil }

func (p *fakeArticlePage) ContentHeight(_ context.Context) (int, error) { return 1000, nil }

func (p *fakeArticlePage) Close() error {
	p.session.pagesClosed++
	return nil
}

func sessionFactory(s *fakeSession) browser.Factory {
	return func(_ context.Context) (browser.Browser, error) {
		return s, nil
	}
}

func archiveRule() sites.Rule {
	rule, ok := sites.ByName("hackernews")
	if !ok {
		panic("hackernews rule missing")
	}
	return rule
}

func TestArchive_PartialFailureIsolation(t *testing.T) {
	session := &fakeSession{
		failNav: map[string]bool{"https://x/2": true},
		content: map[string]extraction{
			"https://x/1": {Text: "first body"},
			"https://x/3": {Text: "third body"},
		},
	}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	links := []types.Link{
		{Title: "One", URL: "https://x/1"},
		{Title: "Two", URL: "https://x/2"},
		{Title: "Three", URL: "https://x/3"},
	}
	results := a.Archive(context.Background(), links, "", 0)
	require.Len(t, results, 3)

	byURL := make(map[string]types.ArchiveResult, len(results))
	for _, r := range results {
		byURL[r.URL] = r
	}

	failedResult := byURL["https://x/2"]
	require.Error(t, failedResult.Err)
	assert.Empty(t, failedResult.Content)
	assert.Zero(t, failedResult.TextLength)
	assert.Zero(t, failedResult.ImageCount)
	assert.Empty(t, failedResult.OutputFolder)

	for _, url := range []string{"https://x/1", "https://x/3"} {
		r := byURL[url]
		require.NoError(t, r.Err, url)
		assert.NotEmpty(t, r.Content)
		assert.Equal(t, len([]rune(r.Content)), r.TextLength)
	}
}

func TestArchive_FiltersBlankAndDuplicateURLs(t *testing.T) {
	session := &fakeSession{
		content: map[string]extraction{"https://x/1": {Text: "body"}},
	}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	links := []types.Link{
		{Title: "One", URL: "https://x/1"},
		{Title: "Blank", URL: "   "},
		{Title: "Dup", URL: "https://x/1"},
	}
	results := a.Archive(context.Background(), links, "", 0)
	require.Len(t, results, 1)
	assert.Equal(t, "https://x/1", results[0].URL)
}

func TestArchive_FreshPagePerLink(t *testing.T) {
	session := &fakeSession{
		content: map[string]extraction{
			"https://x/1": {Text: "a"},
			"https://x/2": {Text: "b"},
		},
	}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	a.Archive(context.Background(), []types.Link{
		{Title: "One", URL: "https://x/1"},
		{Title: "Two", URL: "https://x/2"},
	}, "", 0)

	assert.Equal(t, 2, session.pagesOpened)
	assert.Equal(t, 2, session.pagesClosed)
	assert.True(t, session.closed, "batch session must be released")
}

func TestArchive_WritesContentAndImages(t *testing.T) {
	root := t.TempDir()
	session := &fakeSession{
		content: map[string]extraction{
			"https://x/1": {
				Text:        "article body",
				Images:      []string{"data:image/png;base64,aGk="},
				Publisher:   "Example Press",
				PublishTime: "2026-03-14T09:30:00Z",
			},
		},
	}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	results := a.Archive(context.Background(), []types.Link{{Title: "Big News", URL: "https://x/1"}}, root, 0)
	require.Len(t, results, 1)
	r := results[0]
	require.NoError(t, r.Err)

	assert.Equal(t, 1, r.ImageCount)
	assert.Equal(t, "Example Press", r.Publisher)
	require.NotNil(t, r.PublishTime)

	expectedFolder := filepath.Join(root, FolderName("Big News", "https://x/1"))
	assert.Equal(t, expectedFolder, r.OutputFolder)

	body, err := os.ReadFile(filepath.Join(expectedFolder, contentFileName))
	require.NoError(t, err)
	assert.Equal(t, "article body", string(body))

	_, err = os.Stat(filepath.Join(expectedFolder, "img_001.png"))
	assert.NoError(t, err)
}

func TestArchive_NoOutputRootSkipsDisk(t *testing.T) {
	session := &fakeSession{
		content: map[string]extraction{
			"https://x/1": {Text: "body", Images: []string{"data:image/png;base64,aGk="}},
		},
	}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	results := a.Archive(context.Background(), []types.Link{{Title: "One", URL: "https://x/1"}}, "", 0)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].ImageCount)
	assert.Empty(t, results[0].OutputFolder)
}

func TestArchive_FallbackTextFromHTML(t *testing.T) {
	session := &fakeSession{
		content: map[string]extraction{
			"https://x/1": {HTML: "<div><nav>menu</nav><p>real content</p></div>"},
		},
	}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	results := a.Archive(context.Background(), []types.Link{{Title: "One", URL: "https://x/1"}}, "", 0)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "real content", results[0].Content)
}

func TestArchive_EmptyPageIsAnError(t *testing.T) {
	session := &fakeSession{content: map[string]extraction{}}
	a := New(archiveRule(), sessionFactory(session))
	defer a.Close()

	results := a.Archive(context.Background(), []types.Link{{Title: "One", URL: "https://x/1"}}, "", 0)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestArchive_SessionFailureFailsEveryLink(t *testing.T) {
	factory := func(_ context.Context) (browser.Browser, error) {
		return nil, errors.New("chrome not found")
	}
	a := New(archiveRule(), factory)
	defer a.Close()

	results := a.Archive(context.Background(), []types.Link{
		{Title: "One", URL: "https://x/1"},
		{Title: "Two", URL: "https://x/2"},
	}, "", 0)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
