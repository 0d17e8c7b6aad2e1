package searcher

import (
	"slices"
	"strings"

	"github.com/dlang/ddox/pkg/types"
)

// rankKey holds the precomputed sort keys of one symbol
type rankKey struct {
	deprecated bool
	depth      int
	lowerName  string
}

func newRankKey(sym *types.Symbol) rankKey {
	lower := strings.ToLower(sym.Name)
	return rankKey{
		deprecated: sym.IsDeprecated(),
		depth:      strings.Count(lower, ".") + 1,
		lowerName:  lower,
	}
}

// compareKeys orders by deprecation, then depth, then lower-cased name
func compareKeys(a, b rankKey) int {
	if a.deprecated != b.deprecated {
		if a.deprecated {
			return 1
		}
		return -1
	}

	if a.depth != b.depth {
		if a.depth < b.depth {
			return -1
		}
		return 1
	}

	return strings.Compare(a.lowerName, b.lowerName)
}

// Compare orders two symbols for display: non-deprecated before deprecated,
// then fewer dotted segments first, then case-insensitive name order.
// It returns 0 only for symbols that agree on all three keys.
func Compare(a, b types.Symbol) int {
	return compareKeys(newRankKey(&a), newRankKey(&b))
}

// Rank sorts symbols in place with Compare. The sort is stable, so symbols
// equal under Compare keep their feed order.
func Rank(symbols []types.Symbol) {
	slices.SortStableFunc(symbols, Compare)
}

// rankIndices stably sorts indices into keys
func rankIndices(indices []int, keys []rankKey) {
	slices.SortStableFunc(indices, func(i, j int) int {
		return compareKeys(keys[i], keys[j])
	})
}
