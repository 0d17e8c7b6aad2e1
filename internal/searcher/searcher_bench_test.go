package searcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/dlang/ddox/pkg/types"
)

// benchFeed builds a feed shaped like a standard library symbol index
func benchFeed(n int) []types.Symbol {
	modules := []string{"std.algorithm", "std.range", "std.stdio", "core.thread", "std.container.rbtree"}
	symbols := make([]types.Symbol, n)
	for i := range symbols {
		attrs := []string{}
		if i%17 == 0 {
			attrs = append(attrs, types.AttrDeprecated)
		}
		symbols[i] = types.Symbol{
			Name:       fmt.Sprintf("%s.Item%d.member%d", modules[i%len(modules)], i/10, i%10),
			Kind:       types.KindFunction,
			Attributes: attrs,
			Path:       fmt.Sprintf("item%d.html", i),
		}
	}
	return symbols
}

func benchmarkSearch(b *testing.B, n int, opts Options) {
	engine, err := New(benchFeed(n), nil, opts)
	if err != nil {
		b.Fatal(err)
	}
	queries := []string{"range item", "member3", "std thread", "item12"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, queries[i%len(queries)]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch_Sequential_10k(b *testing.B) {
	benchmarkSearch(b, 10_000, Options{CacheSize: -1, ParallelThreshold: 1 << 30})
}

func BenchmarkSearch_Parallel_10k(b *testing.B) {
	benchmarkSearch(b, 10_000, Options{CacheSize: -1, ParallelThreshold: 1000})
}

func BenchmarkSearch_Memoized_10k(b *testing.B) {
	benchmarkSearch(b, 10_000, Options{})
}

func BenchmarkRank_1k(b *testing.B) {
	feed := benchFeed(1000)
	work := make([]types.Symbol, len(feed))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(work, feed)
		Rank(work)
	}
}
