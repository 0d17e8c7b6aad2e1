package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables read by ConfigFromEnv
const (
	EnvDBPath  = "DDOX_SEARCH_DB_PATH"
	EnvFeed    = "DDOX_SEARCH_FEED"
	EnvRootDir = "DDOX_SEARCH_ROOT_DIR"
	EnvWorkers = "DDOX_SEARCH_WORKERS"
)

const (
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.ddox-search"
	// DBFileName is the database file created inside the database directory
	DBFileName = "ddox-search.db"
	// MemoryDBPath keeps the database in memory
	MemoryDBPath = ":memory:"
)

// Config contains the server configuration
type Config struct {
	DBPath  string // Database directory, or MemoryDBPath
	Feed    string // Feed imported at startup (optional)
	RootDir string // Link prefix for the startup feed
	Workers int    // Matching shards for large feeds (0 = one per CPU)
}

// ConfigFromEnv builds a Config from the DDOX_SEARCH_* environment variables
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:  os.Getenv(EnvDBPath),
		Feed:    os.Getenv(EnvFeed),
		RootDir: os.Getenv(EnvRootDir),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if raw := strings.TrimSpace(os.Getenv(EnvWorkers)); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil || workers < 0 {
			return nil, fmt.Errorf("invalid %s %q: must be a non-negative integer", EnvWorkers, raw)
		}
		cfg.Workers = workers
	}

	return cfg, nil
}

// databaseFile resolves the database directory of cfg to a database file,
// creating the directory when needed
func (c *Config) databaseFile() (string, error) {
	if c.DBPath == MemoryDBPath {
		return MemoryDBPath, nil
	}

	dbPath := c.DBPath
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".ddox-search")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	return filepath.Join(dbPath, DBFileName), nil
}
