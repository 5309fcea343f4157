package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-archiver/internal/types"
)

func TestKeyword_Classify(t *testing.T) {
	k := NewKeyword()
	ctx := context.Background()

	cases := []struct {
		title string
		want  types.Category
	}{
		{"Senate passes new election bill", types.CategoryPolitics},
		{"Startup raises $40M in funding", types.CategoryBusiness},
		{"New Linux kernel release improves scheduling", types.CategoryTechnology},
		{"Quantum research breakthrough announced", types.CategoryScience},
		{"Championship final goes to overtime", types.CategorySports},
		{"Film festival opens in Venice", types.CategoryCulture},
		{"Untitled post", types.CategoryGeneral},
		{"", types.CategoryGeneral},
	}
	for _, tc := range cases {
		got, err := k.Classify(ctx, tc.title)
		require.NoError(t, err, tc.title)
		assert.Equal(t, tc.want, got, tc.title)
	}
}

func TestKeyword_FirstRuleWins(t *testing.T) {
	// "election" (politics) appears before "startup" (business) in the
	// rule order, so a title with both keywords is politics.
	got, err := NewKeyword().Classify(context.Background(), "Election coverage dominates startup news")
	require.NoError(t, err)
	assert.Equal(t, types.CategoryPolitics, got)
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		response string
		want     types.Category
		wantErr  bool
	}{
		{"technology", types.CategoryTechnology, false},
		{"  Technology \n", types.CategoryTechnology, false},
		{"```\nsports\n```", types.CategorySports, false},
		{"business", types.CategoryBusiness, false},
		{"astrology", types.CategoryGeneral, true},
		{"", types.CategoryGeneral, true},
	}
	for _, tc := range cases {
		got, err := parseCategory(tc.response)
		if tc.wantErr {
			assert.Error(t, err, tc.response)
		} else {
			assert.NoError(t, err, tc.response)
		}
		assert.Equal(t, tc.want, got, tc.response)
	}
}

func TestBuildPrompt_ListsEveryCategory(t *testing.T) {
	prompt := buildPrompt("Some headline")
	for _, c := range types.KnownCategories() {
		assert.Contains(t, prompt, string(c))
	}
	assert.Contains(t, prompt, "Some headline")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Message: "wrapped", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "wrapped")
}
