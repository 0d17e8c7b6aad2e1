package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dlang/ddox/internal/indexer"
	"github.com/dlang/ddox/internal/render"
	"github.com/dlang/ddox/internal/storage"
	"github.com/dlang/ddox/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeImportInProgress = -32002 // Another import is already running
	ErrorCodeNotLoaded        = -32003 // No feed imported yet
	ErrorCodeInvalidFeed      = -32005 // Feed is malformed or has invalid records
)

// handleImportSymbols handles the import_symbols tool invocation
func (s *Server) handleImportSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateFeedPath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	rootDir := getStringDefault(args, "root_dir", "")
	force := getBoolDefault(args, "force", false)

	stats, err := s.ImportFeed(ctx, path, rootDir, force)
	switch {
	case errors.Is(err, indexer.ErrImportInProgress):
		return nil, newMCPError(ErrorCodeImportInProgress, "another import is already running", nil)
	case errors.Is(err, indexer.ErrInvalidFeed), errors.Is(err, types.ErrMalformedFeed):
		data := map[string]interface{}{"error": err.Error()}
		if stats != nil && len(stats.ErrorMessages) > 0 {
			data["errors"] = stats.ErrorMessages
		}
		return nil, newMCPError(ErrorCodeInvalidFeed, "feed rejected", data)
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "import failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	engine, _, _, _ := s.active()

	response := map[string]interface{}{
		"imported":           true,
		"source":             stats.SourceName,
		"symbols_imported":   stats.SymbolsImported,
		"deprecated_symbols": stats.DeprecatedSymbols,
		"skipped":            stats.Skipped,
		"duration_ms":        stats.Duration.Milliseconds(),
		"session_id":         engine.Session().ID,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	// An empty query is valid: it clears the result list
	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}
	includeHTML := getBoolDefault(args, "include_html", false)

	engine, source, page, snapshot := s.active()
	if engine == nil {
		return nil, newMCPError(ErrorCodeNotLoaded, ErrNoFeedLoaded.Error()+"; use import_symbols first", nil)
	}

	outcome, err := engine.Search(ctx, query)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	shown := displayedPage(outcome, snapshot)

	response := map[string]interface{}{
		"query":         outcome.Query,
		"request_id":    outcome.RequestID,
		"total_matches": shown.TotalMatches,
		"overflow":      shown.Overflow,
		"redundant":     outcome.Redundant,
		"stale":         outcome.Stale,
		"results":       formatResults(shown.Results, source.RootDir),
	}
	if includeHTML {
		response["html"] = page.HTML()
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	engine, source, _, snapshot := s.active()
	if engine == nil {
		response := map[string]interface{}{
			"loaded":    false,
			"importing": s.indexer.IsImporting(),
			"message":   "No symbol feed loaded. Use import_symbols tool to import one.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	status, err := s.storage.GetStatus(ctx, source.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotLoaded, "active feed is no longer stored", map[string]interface{}{
			"source": source.Name,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	session := engine.Session()
	last := snapshot.Page()

	response := map[string]interface{}{
		"loaded":    true,
		"importing": s.indexer.IsImporting(),
		"source": map[string]interface{}{
			"name":            source.Name,
			"root_dir":        source.RootDir,
			"index_version":   source.IndexVersion,
			"last_indexed_at": source.LastIndexedAt.Format(time.RFC3339),
		},
		"statistics": map[string]interface{}{
			"symbols_count":    status.SymbolsCount,
			"deprecated_count": status.DeprecatedCount,
			"engine_symbols":   engine.Len(),
			"computations":     engine.Computations(),
			"index_size_mb":    fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"session": map[string]interface{}{
			"id":            session.ID,
			"created_at":    session.CreatedAt.Format(time.RFC3339),
			"last_query":    session.LastQuery(),
			"request_count": session.RequestCount(),
		},
		"last_render": map[string]interface{}{
			"renders":      snapshot.Renders(),
			"result_count": len(last.Results),
			"overflow":     last.Overflow,
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"symbols_loaded":      status.Health.SymbolsLoaded,
			"counts_consistent":   status.Health.CountsConsistent,
		},
	}
	if !last.RenderedAt.IsZero() {
		response["last_render"].(map[string]interface{})["rendered_at"] = last.RenderedAt.Format(time.RFC3339)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// displayedPage returns the list the client should show for outcome. Redundant
// and stale outcomes were never rendered, so the last rendered page stays.
func displayedPage(outcome *types.SearchOutcome, snapshot *render.Snapshot) render.Page {
	if outcome.Redundant || outcome.Stale {
		return snapshot.Page()
	}
	return render.Page{
		Results:      outcome.Results,
		Overflow:     outcome.Overflow,
		TotalMatches: outcome.TotalMatches,
	}
}

// formatResults converts ranked symbols into tool output entries
func formatResults(results []types.Symbol, rootDir string) []map[string]interface{} {
	out := make([]map[string]interface{}, len(results))
	for i, sym := range results {
		out[i] = map[string]interface{}{
			"name":       sym.Name,
			"kind":       string(sym.Kind),
			"attributes": sym.Attributes,
			"link":       render.Link(rootDir, sym.Path),
		}
	}
	return out
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateFeedPath checks that a feed path names a readable regular file
func validateFeedPath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if info.IsDir() {
		return ErrPathIsDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrPathIsDirectory = errors.New("path is a directory, expected a feed file")
)
