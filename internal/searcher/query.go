package searcher

import (
	"strings"
	"unicode/utf8"
)

// MinTermLength is the shortest accepted lone query term, in characters.
// Multi-term queries are not subject to it.
const MinTermLength = 2

// Normalize lower-cases a raw query and trims surrounding whitespace
func Normalize(rawQuery string) string {
	return strings.ToLower(strings.TrimSpace(rawQuery))
}

// Tokenize splits a normalized query on runs of whitespace into non-empty terms
func Tokenize(query string) []string {
	return strings.Fields(query)
}

// TooBroad reports whether a term list must produce an empty result set:
// no terms at all, or a single term shorter than MinTermLength.
func TooBroad(terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	return len(terms) == 1 && utf8.RuneCountInString(terms[0]) < MinTermLength
}

// Matches reports whether every term is a substring of the lower-cased name
func Matches(lowerName string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(lowerName, term) {
			return false
		}
	}
	return true
}

// memoKey is the canonical form of a term list used as the memo key
func memoKey(terms []string) string {
	return strings.Join(terms, " ")
}
