package types

import (
	"fmt"
	"slices"
	"strings"
)

// SymbolKind is the declaration category of a documented symbol.
// It is used for display and styling only, never for ranking.
type SymbolKind string

const (
	KindModule     SymbolKind = "module"
	KindClass      SymbolKind = "class"
	KindInterface  SymbolKind = "interface"
	KindStruct     SymbolKind = "struct"
	KindUnion      SymbolKind = "union"
	KindEnum       SymbolKind = "enum"
	KindEnumMember SymbolKind = "enummember"
	KindFunction   SymbolKind = "function"
	KindVariable   SymbolKind = "variable"
	KindAlias      SymbolKind = "alias"
	KindTemplate   SymbolKind = "template"
)

// Attribute tags with meaning to the search engine.
const (
	AttrDeprecated = "deprecated"
)

// Symbol is one record of the documentation symbol feed.
//
// Records are immutable once handed to a search engine; the engine keeps
// its own lower-cased copy of Name for matching.
type Symbol struct {
	Name       string     `json:"name"`       // Dotted hierarchical identifier, e.g. "std.stdio.File.open"
	Kind       SymbolKind `json:"kind"`       // Display category
	Attributes []string   `json:"attributes"` // Style tags, may include "deprecated"
	Path       string     `json:"path"`       // Documentation page, relative to the root directory
}

// IsDeprecated reports whether the symbol carries the "deprecated" attribute.
func (s *Symbol) IsDeprecated() bool {
	return slices.Contains(s.Attributes, AttrDeprecated)
}

// Depth returns the number of dot-separated segments of the name.
func (s *Symbol) Depth() int {
	return strings.Count(s.Name, ".") + 1
}

// Validate checks the required fields of a feed record
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSymbol)
	}

	if s.Path == "" {
		return fmt.Errorf("%w: path is required for %q", ErrInvalidSymbol, s.Name)
	}

	for _, attr := range s.Attributes {
		if attr == "" || strings.ContainsAny(attr, " \t\r\n") {
			return fmt.Errorf("%w: attribute %q of %q is not a single tag", ErrInvalidSymbol, attr, s.Name)
		}
	}

	return nil
}

// ValidateSymbols validates a whole feed and reports the first bad record by index.
func ValidateSymbols(symbols []Symbol) error {
	for i := range symbols {
		if err := symbols[i].Validate(); err != nil {
			return fmt.Errorf("symbol %d: %w", i, err)
		}
	}
	return nil
}
