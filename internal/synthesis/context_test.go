// internal/synthesis/context_test.go
package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "omnisearch/internal/common/errors"
	"omnisearch/internal/fanout"
	"omnisearch/internal/sources"
)

// ==========================
// Test Helper Functions
// ==========================

func successResult(items ...sources.SourceItem) sources.SourceResult {
	return sources.SourceResult{Status: sources.StatusSuccess, Items: items}
}

func failedResult() sources.SourceResult {
	return sources.SourceResult{
		Status:       sources.StatusFailure,
		ErrorKind:    apperrors.CodeTransport,
		ErrorMessage: "stub",
	}
}

func aggregateOf(results map[sources.SourceID]sources.SourceResult, order ...sources.SourceID) *fanout.Aggregate {
	return &fanout.Aggregate{Order: order, Results: results}
}

// ==========================
// Budget Tests
// ==========================

func TestBuild_NeverExceedsBudget(t *testing.T) {
	long := strings.Repeat("word ", 200)
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(
			sources.SourceItem{Title: "One", Snippet: long},
			sources.SourceItem{Title: "Two", Snippet: long},
		),
		sources.SourceGitHub: successResult(
			sources.SourceItem{Title: "Three", Snippet: long},
		),
	}, sources.SourceWikipedia, sources.SourceGitHub)

	for _, budget := range []int{10, 50, 100, 500, 2000} {
		ctx := NewBuilder(nil).Build(agg, budget)
		assert.LessOrEqual(t, len(ctx.Text), budget, "budget %d", budget)
	}
}

func TestBuild_ZeroBudgetYieldsEmptyContext(t *testing.T) {
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(sources.SourceItem{Title: "France", Snippet: "Paris"}),
	}, sources.SourceWikipedia)

	ctx := NewBuilder(nil).Build(agg, 0)

	assert.Empty(t, ctx.Text)
	assert.Empty(t, ctx.Included)
}

func TestBuild_AllFailedYieldsEmptyContext(t *testing.T) {
	results := make(map[sources.SourceID]sources.SourceResult, len(sources.All))
	for _, id := range sources.All {
		results[id] = failedResult()
	}
	agg := aggregateOf(results, sources.All...)

	ctx := NewBuilder(nil).Build(agg, 6000)

	assert.Empty(t, ctx.Text)
	assert.Empty(t, ctx.Included)
	assert.False(t, ctx.Truncated)
}

// ==========================
// Ordering and Rendering Tests
// ==========================

func TestBuild_PriorityOrderWins(t *testing.T) {
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(sources.SourceItem{Title: "Wiki", Snippet: "w"}),
		sources.SourceGitHub:    successResult(sources.SourceItem{Title: "Hub", Snippet: "h"}),
	}, sources.SourceWikipedia, sources.SourceGitHub)

	ctx := NewBuilder([]sources.SourceID{sources.SourceGitHub, sources.SourceWikipedia}).Build(agg, 6000)

	assert.Equal(t, []sources.SourceID{sources.SourceGitHub, sources.SourceWikipedia}, ctx.Included)
	assert.Less(t, strings.Index(ctx.Text, "[github]"), strings.Index(ctx.Text, "[wikipedia]"))
}

func TestBuild_DefaultOrderIsInvocationOrder(t *testing.T) {
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(sources.SourceItem{Title: "Wiki", Snippet: "w"}),
		sources.SourceGitHub:    successResult(sources.SourceItem{Title: "Hub", Snippet: "h"}),
	}, sources.SourceWikipedia, sources.SourceGitHub)

	ctx := NewBuilder(nil).Build(agg, 6000)

	assert.Equal(t, []sources.SourceID{sources.SourceWikipedia, sources.SourceGitHub}, ctx.Included)
}

func TestBuild_LineRendering(t *testing.T) {
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(sources.SourceItem{Title: "France", Snippet: "Paris is the capital."}),
	}, sources.SourceWikipedia)

	ctx := NewBuilder(nil).Build(agg, 6000)

	assert.Equal(t, "[wikipedia] France - Paris is the capital.", ctx.Text)
	assert.False(t, ctx.Truncated)
}

func TestBuild_FailedSourcesContributeNothing(t *testing.T) {
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(sources.SourceItem{Title: "France", Snippet: "Paris"}),
		sources.SourceGitHub:    failedResult(),
	}, sources.SourceWikipedia, sources.SourceGitHub)

	ctx := NewBuilder(nil).Build(agg, 6000)

	assert.NotContains(t, ctx.Text, "github")
	assert.Equal(t, []sources.SourceID{sources.SourceWikipedia}, ctx.Included)
}

// ==========================
// Truncation Tests
// ==========================

func TestBuild_TruncatesAtWhitespace(t *testing.T) {
	agg := aggregateOf(map[sources.SourceID]sources.SourceResult{
		sources.SourceWikipedia: successResult(sources.SourceItem{
			Title:   "France",
			Snippet: "Paris is the capital and largest city of France",
		}),
	}, sources.SourceWikipedia)

	ctx := NewBuilder(nil).Build(agg, 30)

	assert.True(t, ctx.Truncated)
	assert.LessOrEqual(t, len(ctx.Text), 30)
	assert.NotEmpty(t, ctx.Text)
	// The cut must land between words, never inside one.
	lastWord := ctx.Text[strings.LastIndex(ctx.Text, " ")+1:]
	assert.Contains(t, "[wikipedia] France - Paris is the capital and largest city of France", lastWord)
	assert.False(t, strings.HasSuffix(ctx.Text, " "))
}

func TestTruncateAtWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "fits", in: "short", limit: 10, want: "short"},
		{name: "cut at space", in: "hello world again", limit: 13, want: "hello world"},
		{name: "no whitespace falls back to hard cut", in: "abcdefghij", limit: 4, want: "abcd"},
		{name: "zero limit", in: "anything", limit: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateAtWhitespace(tt.in, tt.limit))
		})
	}
}
