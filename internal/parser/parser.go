package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/titanous/json5"

	"github.com/dlang/ddox/pkg/types"
)

// Required keys of every feed record
const (
	FieldName       = "name"
	FieldKind       = "kind"
	FieldPath       = "path"
	FieldAttributes = "attributes"
)

// Parser reads symbol feeds
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseFile parses a symbol feed file: a JSON array of records, or the
// symbols.js script emitted next to the generated documentation
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(f)
}

// Parse parses a symbol feed. The array is read as JSON5, which covers both
// plain JSON and the object literals of symbols.js. Syntax errors fail the
// whole feed; records that are not objects or have missing or mistyped
// fields are reported in the result and left out of its symbols.
func (p *Parser) Parse(r io.Reader) (*types.ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	var records []json5.RawMessage
	if err := json5.Unmarshal(normalizeEscapes(unwrap(content)), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedFeed, err)
	}

	result := &types.ParseResult{
		Symbols: make([]types.Symbol, 0, len(records)),
	}

	for i, record := range records {
		if sym, ok := parseRecord(i, record, result); ok {
			result.Symbols = append(result.Symbols, sym)
		}
	}

	return result, nil
}

// parseRecord decodes one record, reporting every problem to result
func parseRecord(index int, raw json5.RawMessage, result *types.ParseResult) (types.Symbol, bool) {
	var sym types.Symbol
	ok := true

	var record map[string]json5.RawMessage
	if err := json5.Unmarshal(raw, &record); err != nil || record == nil {
		result.AddError(index, "", "record must be an object")
		return sym, false
	}

	stringField := func(field string, dst *string) {
		raw, present := record[field]
		if !present || isNull(raw) {
			result.AddError(index, field, types.ErrMissingField.Error())
			ok = false
			return
		}
		if err := json5.Unmarshal(raw, dst); err != nil {
			result.AddError(index, field, "must be a string")
			ok = false
		}
	}

	var kind string
	stringField(FieldName, &sym.Name)
	stringField(FieldKind, &kind)
	stringField(FieldPath, &sym.Path)
	sym.Kind = types.SymbolKind(kind)

	attrs, present := record[FieldAttributes]
	switch {
	case !present || isNull(attrs):
		result.AddError(index, FieldAttributes, types.ErrMissingField.Error())
		ok = false
	default:
		if err := json5.Unmarshal(attrs, &sym.Attributes); err != nil {
			result.AddError(index, FieldAttributes, "must be an array of strings")
			ok = false
		}
	}

	if !ok {
		return sym, false
	}

	if err := sym.Validate(); err != nil {
		result.AddError(index, "", err.Error())
		return sym, false
	}

	return sym, true
}

func isNull(raw json5.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
