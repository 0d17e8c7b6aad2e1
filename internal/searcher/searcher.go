package searcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dlang/ddox/pkg/types"
)

const (
	// DefaultMaxResults caps the number of rendered results
	DefaultMaxResults = 100
	// DefaultParallelThreshold is the feed size from which matching is sharded
	DefaultParallelThreshold = 4096
	// DefaultCacheSize is the number of memoized term lists
	DefaultCacheSize = 256

	// supersededCheckInterval is how many symbols a shard matches between
	// checks for a newer request
	supersededCheckInterval = 1024
)

// errSuperseded aborts matching once a newer request has been issued
var errSuperseded = errors.New("request superseded")

// Renderer receives the ranked, capped results of the newest request.
// Every call fully replaces what the previous call produced.
type Renderer interface {
	Render(results []types.Symbol, overflow int) error
}

// Options configures an Engine
type Options struct {
	MaxResults        int // Result cap (default 100)
	Workers           int // Matching shards for large feeds (default runtime.NumCPU())
	ParallelThreshold int // Feed size from which matching is sharded (default 4096)
	CacheSize         int // Memoized term lists (default 256, negative disables)
}

// AsyncResult is delivered by SearchAsync
type AsyncResult struct {
	Outcome *types.SearchOutcome
	Err     error
}

// matchSet is the memoized, ranked and capped match list of one term list
type matchSet struct {
	ranked []int // Indices into the feed, at most MaxResults
	total  int   // Matches before the cap
}

// Engine is the symbol search engine of one loaded feed
type Engine struct {
	symbols  []types.Symbol
	keys     []rankKey
	renderer Renderer
	session  *Session
	opts     Options

	cache        *lru.Cache[string, *matchSet] // nil when disabled
	computations atomic.Int64
}

// New creates an engine over an ordered symbol feed. The feed is validated
// once here; the engine never mutates it and callers must not either.
func New(symbols []types.Symbol, renderer Renderer, opts Options) (*Engine, error) {
	if err := types.ValidateSymbols(symbols); err != nil {
		return nil, fmt.Errorf("invalid symbol feed: %w", err)
	}

	applyDefaults(&opts)

	keys := make([]rankKey, len(symbols))
	for i := range symbols {
		keys[i] = newRankKey(&symbols[i])
	}

	e := &Engine{
		symbols:  symbols,
		keys:     keys,
		renderer: renderer,
		session:  NewSession(),
		opts:     opts,
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *matchSet](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create match cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// applyDefaults fills zero-valued options
func applyDefaults(opts *Options) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}

	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
}

// Session returns the engine's query session
func (e *Engine) Session() *Session {
	return e.session
}

// Len returns the number of symbols in the feed
func (e *Engine) Len() int {
	return len(e.symbols)
}

// MaxResults returns the effective result cap
func (e *Engine) MaxResults() int {
	return e.opts.MaxResults
}

// Computations returns how many requests were actually computed
func (e *Engine) Computations() int64 {
	return e.computations.Load()
}

// Search runs one query synchronously and renders its results if the
// request is still the newest one when matching finishes.
//
// A query equal to the previous one returns a Redundant outcome without any
// work. The only errors are context cancellation and renderer failures.
func (e *Engine) Search(ctx context.Context, rawQuery string) (*types.SearchOutcome, error) {
	query := Normalize(rawQuery)

	id, ok := e.session.begin(query)
	if !ok {
		return &types.SearchOutcome{Query: query, Redundant: true}, nil
	}

	return e.run(ctx, id, query)
}

// SearchAsync registers the query immediately and computes it on a
// goroutine. The channel receives exactly one result. Results of a request
// that was superseded in the meantime come back Stale and are never rendered.
func (e *Engine) SearchAsync(ctx context.Context, rawQuery string) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	query := Normalize(rawQuery)

	id, ok := e.session.begin(query)
	if !ok {
		out <- AsyncResult{Outcome: &types.SearchOutcome{Query: query, Redundant: true}}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		outcome, err := e.run(ctx, id, query)
		out <- AsyncResult{Outcome: outcome, Err: err}
	}()

	return out
}

// run computes and delivers request id
func (e *Engine) run(ctx context.Context, id uint64, query string) (*types.SearchOutcome, error) {
	outcome, err := e.compute(ctx, id, query)
	if errors.Is(err, errSuperseded) {
		return &types.SearchOutcome{RequestID: id, Query: query, Terms: Tokenize(query), Stale: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := e.deliver(outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// compute builds the ranked, capped outcome for request id
func (e *Engine) compute(ctx context.Context, id uint64, query string) (*types.SearchOutcome, error) {
	e.computations.Add(1)

	terms := Tokenize(query)
	outcome := &types.SearchOutcome{
		RequestID: id,
		Query:     query,
		Terms:     terms,
	}

	if TooBroad(terms) {
		return outcome, nil
	}

	set, err := e.rankedMatches(ctx, id, terms)
	if err != nil {
		return nil, err
	}

	outcome.Results = make([]types.Symbol, len(set.ranked))
	for i, idx := range set.ranked {
		outcome.Results[i] = e.symbols[idx]
	}
	outcome.TotalMatches = set.total
	outcome.Overflow = set.total - len(set.ranked)

	return outcome, nil
}

// rankedMatches filters, ranks and caps the feed for terms, memoized by term list
func (e *Engine) rankedMatches(ctx context.Context, id uint64, terms []string) (*matchSet, error) {
	key := memoKey(terms)
	if e.cache != nil {
		if set, ok := e.cache.Get(key); ok {
			return set, nil
		}
	}

	matched, err := e.filter(ctx, id, terms)
	if err != nil {
		return nil, err
	}

	// The full match list is ranked before capping: ranking decides which survive
	rankIndices(matched, e.keys)

	set := &matchSet{total: len(matched), ranked: matched}
	if len(matched) > e.opts.MaxResults {
		set.ranked = slices.Clone(matched[:e.opts.MaxResults])
	}

	if e.cache != nil {
		e.cache.Add(key, set)
	}

	return set, nil
}

// filter returns the feed indices whose names contain every term, in feed order
func (e *Engine) filter(ctx context.Context, id uint64, terms []string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(e.keys)
	if n < e.opts.ParallelThreshold || e.opts.Workers <= 1 {
		return e.matchRange(0, n, terms, nil), nil
	}

	shards := e.opts.Workers
	size := (n + shards - 1) / shards
	parts := make([][]int, shards)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * size
		hi := min(lo+size, n)
		if lo >= hi {
			break
		}

		g.Go(func() error {
			var abort error
			parts[i] = e.matchRange(lo, hi, terms, func() bool {
				if err := gctx.Err(); err != nil {
					abort = err
					return false
				}
				if !e.session.isCurrent(id) {
					abort = errSuperseded
					return false
				}
				return true
			})
			return abort
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, part := range parts {
		total += len(part)
	}
	matched := make([]int, 0, total)
	for _, part := range parts {
		matched = append(matched, part...)
	}

	return matched, nil
}

// matchRange matches feed indices [lo, hi). keepGoing, when set, is polled
// every supersededCheckInterval symbols and stops the scan when it returns false.
func (e *Engine) matchRange(lo, hi int, terms []string, keepGoing func() bool) []int {
	var matched []int
	for i := lo; i < hi; i++ {
		if keepGoing != nil && (i-lo)%supersededCheckInterval == 0 && !keepGoing() {
			return nil
		}
		if Matches(e.keys[i].lowerName, terms) {
			matched = append(matched, i)
		}
	}
	return matched
}

// deliver renders the outcome if its request is still the newest one,
// otherwise marks it stale
func (e *Engine) deliver(outcome *types.SearchOutcome) error {
	current, err := e.session.gate(outcome.RequestID, func() error {
		if e.renderer == nil {
			return nil
		}
		return e.renderer.Render(outcome.Results, outcome.Overflow)
	})

	if !current {
		outcome.Stale = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	outcome.Rendered = true
	return nil
}
