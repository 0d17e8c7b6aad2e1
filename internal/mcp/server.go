package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dlang/ddox/internal/indexer"
	"github.com/dlang/ddox/internal/render"
	"github.com/dlang/ddox/internal/searcher"
	"github.com/dlang/ddox/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "ddox-search"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// ErrNoFeedLoaded is returned by searches before any feed was imported
var ErrNoFeedLoaded = errors.New("no symbol feed loaded")

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
	indexer *indexer.Indexer
	config  *Config

	// Active feed; replaced wholesale by every import
	mu       sync.RWMutex
	engine   *searcher.Engine
	source   *storage.Source
	page     *render.HTMLRenderer
	snapshot *render.Snapshot
}

// NewServer creates a new MCP server instance
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = &Config{DBPath: DefaultDBPath}
	}

	dbFile, err := cfg.databaseFile()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return newServer(store, cfg), nil
}

// newServer wires a server around an open store
func newServer(store storage.Storage, cfg *Config) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		storage: store,
		indexer: indexer.New(store),
		config:  cfg,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the storage
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(importSymbolsTool(), s.handleImportSymbols)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// ImportFeed imports a feed file and makes it the active feed. The feed is
// keyed by its absolute path.
func (s *Server) ImportFeed(ctx context.Context, feedPath, rootDir string, force bool) (*indexer.Statistics, error) {
	absPath, err := filepath.Abs(feedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve feed path: %w", err)
	}

	stats, err := s.indexer.IndexFeed(ctx, absPath, &indexer.Config{
		SourceName: absPath,
		RootDir:    rootDir,
		Force:      force,
	})
	if err != nil {
		return stats, err
	}

	if err := s.activate(ctx, absPath); err != nil {
		return stats, err
	}

	log.Printf("Imported %d symbols from %s (skipped=%v, %v)",
		stats.SymbolsImported, absPath, stats.Skipped, stats.Duration)
	return stats, nil
}

// RestoreLatest activates the most recently imported feed, if any
func (s *Server) RestoreLatest(ctx context.Context) (bool, error) {
	sources, err := s.storage.ListSources(ctx)
	if err != nil {
		return false, err
	}

	var latest *storage.Source
	for _, src := range sources {
		if latest == nil || src.LastIndexedAt.After(latest.LastIndexedAt) {
			latest = src
		}
	}
	if latest == nil {
		return false, nil
	}

	if err := s.activate(ctx, latest.Name); err != nil {
		return false, err
	}
	log.Printf("Restored symbol feed %s (%d symbols)", latest.Name, latest.SymbolCount)
	return true, nil
}

// activate loads a stored feed and swaps in a fresh engine and session
func (s *Server) activate(ctx context.Context, sourceName string) error {
	symbols, source, err := indexer.LoadSymbols(ctx, s.storage, sourceName)
	if err != nil {
		return err
	}

	page := render.NewHTMLRenderer(source.RootDir)
	snapshot := render.NewSnapshot()

	engine, err := searcher.New(symbols, render.Multi(snapshot, page), searcher.Options{
		Workers: s.config.Workers,
	})
	if err != nil {
		return fmt.Errorf("failed to build search engine: %w", err)
	}

	s.mu.Lock()
	s.engine = engine
	s.source = source
	s.page = page
	s.snapshot = snapshot
	s.mu.Unlock()

	return nil
}

// active returns the current feed state
func (s *Server) active() (*searcher.Engine, *storage.Source, *render.HTMLRenderer, *render.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.source, s.page, s.snapshot
}
