package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// importSymbolsTool returns the tool definition for import_symbols
func importSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_symbols",
		Description: "Import a DDOX symbol feed (symbols.js or a JSON array of symbol records) and make it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the symbol feed file",
				},
				"root_dir": map[string]interface{}{
					"type":        "string",
					"description": "Prefix prepended to every symbol page path when building result links (e.g. '../')",
					"default":     "",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-import even if the feed is unchanged since the last import",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name: "search_symbols",
		Description: "Incremental symbol search over the active feed. Every whitespace-separated term must occur " +
			"in the symbol name (case-insensitive). Results are ranked non-deprecated first, then by nesting depth, " +
			"then by name, and capped at 100.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search box contents; a single term needs at least 2 characters",
				},
				"include_html": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the rendered result list as an HTML fragment",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report the active symbol feed, search session and last rendered result list",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
