// Package types provides shared type definitions for the ddox symbol search.
//
// # Core Types
//
// Symbol is one record of the documentation symbol feed produced by the
// documentation generator:
//
//	sym := types.Symbol{
//	    Name:       "std.stdio.File.open",
//	    Kind:       types.KindFunction,
//	    Attributes: []string{"public"},
//	    Path:       "std/stdio/File.open.html",
//	}
//
// Names are dotted hierarchical identifiers. Depth is the number of
// dot-separated segments, and a symbol is deprecated when its attributes
// contain "deprecated". Both feed the ranking of search results.
//
// # Validation
//
// Feeds are validated once at load time rather than per query:
//
//	if err := types.ValidateSymbols(symbols); err != nil {
//	    log.Fatal(err)
//	}
//
// # Search Outcomes
//
// SearchOutcome carries the ranked, capped results of one search request
// together with its delivery state (redundant, stale, rendered).
package types
