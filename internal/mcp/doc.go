// Package mcp implements the Model Context Protocol (MCP) server for DDOX
// symbol search.
//
// The server exposes three tools:
//   - import_symbols: Import a symbol feed and make it the active feed
//   - search_symbols: Run an incremental search against the active feed
//   - get_status: Report the active feed, session and last rendered list
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Tool: import_symbols
//
//	Request:
//	{
//	  "name": "import_symbols",
//	  "arguments": {"path": "/srv/docs/phobos/symbols.js", "root_dir": "../"}
//	}
//
//	Response:
//	{
//	  "imported": true,
//	  "source": "/srv/docs/phobos/symbols.js",
//	  "symbols_imported": 8432,
//	  "deprecated_symbols": 97,
//	  "skipped": false,
//	  "duration_ms": 412,
//	  "session_id": "5b0e..."
//	}
//
// Every import starts a new search session, so the first query after an
// import is never treated as redundant unless it is empty.
//
// # Tool: search_symbols
//
//	Request:
//	{"name": "search_symbols", "arguments": {"query": "stdio file"}}
//
//	Response:
//	{
//	  "query": "stdio file",
//	  "request_id": 7,
//	  "total_matches": 2,
//	  "overflow": 0,
//	  "redundant": false,
//	  "stale": false,
//	  "results": [
//	    {"name": "std.stdio.File", "kind": "struct", "attributes": [], "link": "../std/stdio/File.html"}
//	  ]
//	}
//
// A redundant query (equal to the previous one after normalization) returns
// the list that is currently displayed, and so does a stale one that was
// superseded before it could be rendered. total_matches and overflow always
// describe the returned list.
//
// # Error Handling
//
// Errors are returned as MCPError values with JSON-RPC style codes:
//   - -32602: Invalid parameters
//   - -32603: Internal error
//   - -32002: Import already in progress
//   - -32003: No feed loaded
//   - -32005: Feed rejected (malformed or invalid records)
//
// # Configuration
//
// ConfigFromEnv reads DDOX_SEARCH_DB_PATH, DDOX_SEARCH_FEED,
// DDOX_SEARCH_ROOT_DIR and DDOX_SEARCH_WORKERS.
package mcp
