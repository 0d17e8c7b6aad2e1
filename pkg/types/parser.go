package types

import "fmt"

// ParseResult represents the output of parsing a symbol feed
type ParseResult struct {
	// Extracted data, in feed order
	Symbols []Symbol

	// Record-level problems encountered during parsing
	Errors []ParseError
}

// ParseError describes a malformed record of the feed
type ParseError struct {
	Index   int    // Position of the record in the feed
	Field   string // Offending field, empty for record-level problems
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	if pe.Field == "" {
		return fmt.Sprintf("record %d: %s", pe.Index, pe.Message)
	}
	return fmt.Sprintf("record %d: %s: %s", pe.Index, pe.Field, pe.Message)
}

// HasErrors returns true if any record was malformed
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError adds a record-level error to the result
func (pr *ParseResult) AddError(index int, field, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		Index:   index,
		Field:   field,
		Message: msg,
	})
}
