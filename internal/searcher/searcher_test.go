package searcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlang/ddox/pkg/types"
)

// recordingRenderer keeps every render call for inspection
type recordingRenderer struct {
	mu       sync.Mutex
	calls    int
	last     []string
	overflow int
	err      error
}

func (r *recordingRenderer) Render(results []types.Symbol, overflow int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls++
	r.last = names(results)
	r.overflow = overflow
	return nil
}

func (r *recordingRenderer) snapshot() (int, []string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.last, r.overflow
}

func exampleFeed() []types.Symbol {
	return []types.Symbol{
		sym("pkg.Foo"),
		sym("pkg.Foo.bar", types.AttrDeprecated),
		sym("pkg.foobar"),
	}
}

// setupTestEngine creates an engine over symbols with a recording renderer
func setupTestEngine(t *testing.T, symbols []types.Symbol, opts Options) (*Engine, *recordingRenderer) {
	t.Helper()

	renderer := &recordingRenderer{}
	engine, err := New(symbols, renderer, opts)
	require.NoError(t, err)
	return engine, renderer
}

// generatedFeed builds n symbols named "<prefix>.sym<i>"
func generatedFeed(prefix string, n int) []types.Symbol {
	symbols := make([]types.Symbol, n)
	for i := range symbols {
		symbols[i] = sym(fmt.Sprintf("%s.sym%04d", prefix, i))
	}
	return symbols
}

func TestNew(t *testing.T) {
	engine, _ := setupTestEngine(t, exampleFeed(), Options{})

	assert.Equal(t, 3, engine.Len())
	assert.Equal(t, DefaultMaxResults, engine.MaxResults())
	assert.NotEmpty(t, engine.Session().ID)
	assert.Equal(t, uint64(0), engine.Session().RequestCount())
	assert.NotNil(t, engine.cache)
}

func TestNew_RejectsMalformedFeed(t *testing.T) {
	tests := []struct {
		name   string
		symbol types.Symbol
	}{
		{"MissingName", types.Symbol{Path: "a.html"}},
		{"MissingPath", types.Symbol{Name: "a"}},
		{"BadAttribute", types.Symbol{Name: "a", Path: "a.html", Attributes: []string{"two tags"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := append(exampleFeed(), tt.symbol)
			_, err := New(feed, nil, Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidSymbol)
			assert.Contains(t, err.Error(), "symbol 3")
		})
	}
}

func TestNew_CacheDisabled(t *testing.T) {
	engine, _ := setupTestEngine(t, exampleFeed(), Options{CacheSize: -1})
	assert.Nil(t, engine.cache)

	outcome, err := engine.Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 3)
}

func TestSearch_ExampleScenario(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})

	outcome, err := engine.Search(context.Background(), "foo")
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg.Foo", "pkg.foobar", "pkg.Foo.bar"}, names(outcome.Results))
	assert.Equal(t, 3, outcome.TotalMatches)
	assert.Equal(t, 0, outcome.Overflow)
	assert.True(t, outcome.Rendered)
	assert.False(t, outcome.Stale)
	assert.Equal(t, uint64(1), outcome.RequestID)

	calls, last, overflow := renderer.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, names(outcome.Results), last)
	assert.Equal(t, 0, overflow)
}

func TestSearch_Idempotence(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})
	ctx := context.Background()

	first, err := engine.Search(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, first.Redundant)

	for _, raw := range []string{"foo", "  FOO ", "Foo"} {
		again, err := engine.Search(ctx, raw)
		require.NoError(t, err)
		assert.True(t, again.Redundant, "query %q", raw)
		assert.False(t, again.Rendered)
	}

	calls, _, _ := renderer.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), engine.Session().RequestCount())
	assert.Equal(t, int64(1), engine.Computations())
	assert.Equal(t, "foo", engine.Session().LastQuery())
}

func TestSearch_Cutoff(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})
	ctx := context.Background()

	// The session starts with an empty last query, so "" is a no-op at first
	outcome, err := engine.Search(ctx, "")
	require.NoError(t, err)
	assert.True(t, outcome.Redundant)
	assert.Empty(t, outcome.Results)

	outcome, err = engine.Search(ctx, "f")
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.Equal(t, 0, outcome.TotalMatches)
	assert.True(t, outcome.Rendered, "the cleared list is still rendered")

	calls, last, _ := renderer.snapshot()
	assert.Equal(t, 1, calls)
	assert.Empty(t, last)

	outcome, err = engine.Search(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, outcome.Redundant)
	assert.Empty(t, outcome.Results)

	outcome, err = engine.Search(ctx, "fo")
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 3)
}

func TestSearch_TwoSingleCharacterTermsAccepted(t *testing.T) {
	engine, _ := setupTestEngine(t, exampleFeed(), Options{})

	outcome, err := engine.Search(context.Background(), "f b")
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.foobar", "pkg.Foo.bar"}, names(outcome.Results))
}

func TestSearch_ConjunctiveSubstringLaw(t *testing.T) {
	feed := []types.Symbol{
		sym("std.stdio.File"),
		sym("std.stdio.File.open"),
		sym("std.stdio.File.close"),
		sym("std.file.read"),
		sym("std.file.write", types.AttrDeprecated),
		sym("core.thread.Thread"),
		sym("std.algorithm.searching.find"),
	}
	engine, _ := setupTestEngine(t, feed, Options{})

	queries := []string{"file", "FILE open", "std file", "re ad", "thread", "in d", "zz", "st io fi"}
	for _, q := range queries {
		outcome, err := engine.Search(context.Background(), q)
		require.NoError(t, err)

		terms := Tokenize(Normalize(q))
		var want []string
		for _, s := range feed {
			if Matches(strings.ToLower(s.Name), terms) {
				want = append(want, s.Name)
			}
		}

		assert.ElementsMatch(t, want, names(outcome.Results), "query %q", q)
		assert.Equal(t, len(want), outcome.TotalMatches, "query %q", q)
	}
}

func TestSearch_OrderingLaw(t *testing.T) {
	feed := []types.Symbol{
		sym("x.Gamma.alpha"), sym("x.beta", types.AttrDeprecated), sym("x.Alpha"),
		sym("x.alpha.Beta.c"), sym("x.aLPha"), sym("x.delta.x", types.AttrDeprecated),
	}
	engine, _ := setupTestEngine(t, feed, Options{})

	outcome, err := engine.Search(context.Background(), "x.")
	require.NoError(t, err)
	require.Len(t, outcome.Results, len(feed))

	for i := 0; i+1 < len(outcome.Results); i++ {
		assert.LessOrEqual(t, Compare(outcome.Results[i], outcome.Results[i+1]), 0)
	}
	assert.Equal(t, []string{"x.Alpha", "x.aLPha"}, names(outcome.Results[:2]), "ties keep feed order")
}

func TestSearch_Cap(t *testing.T) {
	engine, renderer := setupTestEngine(t, generatedFeed("x", 150), Options{})
	ctx := context.Background()

	// A lone one-character term is cut off before matching
	outcome, err := engine.Search(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)

	outcome, err = engine.Search(ctx, "x x")
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 100)
	assert.Equal(t, 150, outcome.TotalMatches)
	assert.Equal(t, 50, outcome.Overflow)
	assert.NoError(t, outcome.Validate(engine.MaxResults()))

	_, last, overflow := renderer.snapshot()
	assert.Len(t, last, 100)
	assert.Equal(t, 50, overflow)
	assert.Equal(t, "x.sym0000", last[0])
	assert.Equal(t, "x.sym0099", last[99])
}

func TestSearch_CapKeepsBestRanked(t *testing.T) {
	// Deprecated symbols come first in feed order but must lose the cap
	feed := make([]types.Symbol, 0, 120)
	for i := 0; i < 20; i++ {
		feed = append(feed, sym(fmt.Sprintf("old.item%02d", i), types.AttrDeprecated))
	}
	feed = append(feed, generatedFeed("new.item", 100)...)

	engine, _ := setupTestEngine(t, feed, Options{})

	outcome, err := engine.Search(context.Background(), "item")
	require.NoError(t, err)
	require.Len(t, outcome.Results, 100)
	assert.Equal(t, 20, outcome.Overflow)
	for _, s := range outcome.Results {
		assert.False(t, s.IsDeprecated(), "%s should have been cut", s.Name)
	}
}

func TestSearch_CustomMaxResults(t *testing.T) {
	engine, _ := setupTestEngine(t, generatedFeed("pkg", 30), Options{MaxResults: 10})

	outcome, err := engine.Search(context.Background(), "sym")
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 10)
	assert.Equal(t, 20, outcome.Overflow)
}

func TestSearch_MemoizedRepeat(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})
	ctx := context.Background()

	first, err := engine.Search(ctx, "foo")
	require.NoError(t, err)
	_, err = engine.Search(ctx, "bar")
	require.NoError(t, err)
	again, err := engine.Search(ctx, "foo")
	require.NoError(t, err)

	assert.Equal(t, names(first.Results), names(again.Results))
	assert.Equal(t, uint64(3), again.RequestID)
	assert.True(t, again.Rendered)
	assert.Equal(t, 2, engine.cache.Len())

	calls, last, _ := renderer.snapshot()
	assert.Equal(t, 3, calls)
	assert.Equal(t, names(first.Results), last)
}

func TestSearch_ContextCanceled(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Search(ctx, "foo")
	assert.ErrorIs(t, err, context.Canceled)

	calls, _, _ := renderer.snapshot()
	assert.Equal(t, 0, calls)
}

func TestSearch_RendererError(t *testing.T) {
	renderer := &recordingRenderer{err: errors.New("display gone")}
	engine, err := New(exampleFeed(), renderer, Options{})
	require.NoError(t, err)

	outcome, err := engine.Search(context.Background(), "foo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display gone")
	require.NotNil(t, outcome)
	assert.False(t, outcome.Rendered)
}

func TestSearch_NilRenderer(t *testing.T) {
	engine, err := New(exampleFeed(), nil, Options{})
	require.NoError(t, err)

	outcome, err := engine.Search(context.Background(), "foo")
	require.NoError(t, err)
	assert.True(t, outcome.Rendered)
	assert.Len(t, outcome.Results, 3)
}

func TestDeliver_StaleRequestNeverRendered(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})
	ctx := context.Background()

	id1, ok := engine.session.begin("foo")
	require.True(t, ok)
	outcome, err := engine.compute(ctx, id1, "foo")
	require.NoError(t, err)

	// A newer request starts before the first one renders
	id2, ok := engine.session.begin("bar")
	require.True(t, ok)
	assert.Greater(t, id2, id1)

	require.NoError(t, engine.deliver(outcome))
	assert.True(t, outcome.Stale)
	assert.False(t, outcome.Rendered)

	calls, _, _ := renderer.snapshot()
	assert.Equal(t, 0, calls)
}

func TestFilter_ParallelMatchesSequential(t *testing.T) {
	feed := generatedFeed("std.range", 500)
	feed = append(feed, generatedFeed("std.algorithm", 500)...)
	feed = append(feed, sym("std.range.sym0001", types.AttrDeprecated))

	sequential, _ := setupTestEngine(t, feed, Options{CacheSize: -1})
	parallel, _ := setupTestEngine(t, feed, Options{CacheSize: -1, Workers: 7, ParallelThreshold: 10})

	for _, q := range []string{"range", "sym00", "algorithm sym1", "sym0001", "nothing"} {
		want, err := sequential.Search(context.Background(), q)
		require.NoError(t, err)
		got, err := parallel.Search(context.Background(), q)
		require.NoError(t, err)

		assert.Equal(t, names(want.Results), names(got.Results), "query %q", q)
		assert.Equal(t, want.TotalMatches, got.TotalMatches, "query %q", q)
	}
}

func TestFilter_ParallelStopsWhenSuperseded(t *testing.T) {
	engine, _ := setupTestEngine(t, generatedFeed("pkg", 100), Options{Workers: 4, ParallelThreshold: 10})

	id1, _ := engine.session.begin("sym")
	engine.session.begin("pkg")

	_, err := engine.filter(context.Background(), id1, []string{"sym"})
	assert.ErrorIs(t, err, errSuperseded)
}

func TestSearchAsync(t *testing.T) {
	engine, renderer := setupTestEngine(t, exampleFeed(), Options{})

	res := <-engine.SearchAsync(context.Background(), "foo")
	require.NoError(t, res.Err)
	assert.True(t, res.Outcome.Rendered)
	assert.Equal(t, []string{"pkg.Foo", "pkg.foobar", "pkg.Foo.bar"}, names(res.Outcome.Results))

	res = <-engine.SearchAsync(context.Background(), "FOO")
	require.NoError(t, res.Err)
	assert.True(t, res.Outcome.Redundant)

	calls, _, _ := renderer.snapshot()
	assert.Equal(t, 1, calls)
}

func TestSearchAsync_NewerRequestWins(t *testing.T) {
	feed := append(generatedFeed("std.range", 5000), sym("std.bar"))
	engine, renderer := setupTestEngine(t, feed, Options{Workers: 4, ParallelThreshold: 100})
	ctx := context.Background()

	older := engine.SearchAsync(ctx, "range")
	newer, err := engine.Search(ctx, "bar")
	require.NoError(t, err)
	assert.True(t, newer.Rendered)

	res := <-older
	require.NoError(t, res.Err)
	if !res.Outcome.Stale {
		// Only possible if the older request rendered before the newer one started
		assert.True(t, res.Outcome.Rendered)
	}

	_, last, _ := renderer.snapshot()
	assert.Equal(t, []string{"std.bar"}, last, "the newest request owns the display")
}
