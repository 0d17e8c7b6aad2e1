package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dlang/ddox/internal/mcp"
	"github.com/dlang/ddox/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("DDOX Symbol Search MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Schema Version: %s\n", storage.CurrentSchemaVersion)
		os.Exit(0)
	}

	// Log to stderr, stdout is reserved for the MCP protocol
	log.SetOutput(os.Stderr)
	log.Printf("DDOX Symbol Search v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", storage.BuildMode, storage.DriverName)

	cfg, err := mcp.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the configured feed, or fall back to the last imported one
	if cfg.Feed != "" {
		if _, err := server.ImportFeed(ctx, cfg.Feed, cfg.RootDir, false); err != nil {
			log.Fatalf("Failed to import %s: %v", cfg.Feed, err)
		}
	} else if restored, err := server.RestoreLatest(ctx); err != nil {
		log.Printf("Failed to restore previous feed: %v", err)
	} else if !restored {
		log.Println("No symbol feed loaded; waiting for import_symbols")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
