package indexer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dlang/ddox/internal/parser"
	"github.com/dlang/ddox/internal/storage"
	"github.com/dlang/ddox/pkg/types"
)

const (
	// DefaultBatchSize is the number of symbols inserted between cancellation checks
	DefaultBatchSize = 500

	// maxReportedErrors bounds the record errors carried in a rejection
	maxReportedErrors = 10
)

var (
	// ErrImportInProgress is returned when another import holds the indexer
	ErrImportInProgress = errors.New("import already in progress")
	// ErrInvalidFeed is returned when a feed contains malformed records
	ErrInvalidFeed = errors.New("feed contains invalid records")
)

// Indexer imports symbol feeds into storage: parse -> validate -> store
type Indexer struct {
	parser  *parser.Parser
	storage storage.Storage
	lock    importLock
}

// Config contains configuration for a single import
type Config struct {
	SourceName string // Key of the stored feed (default: the feed path)
	RootDir    string // Link prefix stored with the feed
	Force      bool   // Re-import even if the feed is unchanged
	BatchSize  int    // Symbols per insert batch (default: DefaultBatchSize)
}

// Statistics contains statistics about an import
type Statistics struct {
	SourceName        string
	SymbolsImported   int
	DeprecatedSymbols int
	Batches           int
	Skipped           bool // Feed unchanged since the last import
	Duration          time.Duration
	ErrorMessages     []string
}

// New creates a new Indexer instance
func New(storage storage.Storage) *Indexer {
	return &Indexer{
		parser:  parser.New(),
		storage: storage,
	}
}

// IsImporting reports whether an import is currently running
func (idx *Indexer) IsImporting() bool {
	return idx.lock.held()
}

// IndexFeed imports the feed at feedPath, replacing any previously stored
// symbols of the same source. Feeds with malformed records are rejected as a
// whole, and unchanged feeds are skipped unless config.Force is set.
func (idx *Indexer) IndexFeed(ctx context.Context, feedPath string, config *Config) (*Statistics, error) {
	if !idx.lock.tryAcquire() {
		return nil, ErrImportInProgress
	}
	defer idx.lock.release()

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.SourceName == "" {
		cfg.SourceName = feedPath
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	startTime := time.Now()
	stats := &Statistics{
		SourceName:    cfg.SourceName,
		ErrorMessages: make([]string, 0),
	}

	content, err := os.ReadFile(feedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	hash, result, err := idx.hashAndParse(ctx, content)
	if err != nil {
		return nil, err
	}

	if result.HasErrors() {
		for i, pe := range result.Errors {
			if i == maxReportedErrors {
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("... %d more", len(result.Errors)-maxReportedErrors))
				break
			}
			stats.ErrorMessages = append(stats.ErrorMessages, pe.Error())
		}
		return stats, fmt.Errorf("%w: %d of %d records rejected, first: %s",
			ErrInvalidFeed, len(result.Errors), len(result.Symbols)+len(result.Errors), stats.ErrorMessages[0])
	}

	for i := range result.Symbols {
		if result.Symbols[i].IsDeprecated() {
			stats.DeprecatedSymbols++
		}
	}

	existing, err := idx.storage.GetSource(ctx, cfg.SourceName)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up source: %w", err)
	}

	if existing != nil && !cfg.Force && existing.ContentHash == hash && existing.RootDir == cfg.RootDir {
		stats.Skipped = true
		stats.SymbolsImported = existing.SymbolCount
		stats.Duration = time.Since(startTime)
		return stats, nil
	}

	if err := idx.store(ctx, existing, hash, result.Symbols, &cfg, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// hashAndParse hashes and parses the feed content concurrently. Parsing is
// not interruptible, so ctx is checked once both are done.
func (idx *Indexer) hashAndParse(ctx context.Context, content []byte) ([32]byte, *types.ParseResult, error) {
	var hash [32]byte
	var result *types.ParseResult

	var g errgroup.Group
	g.Go(func() error {
		hash = sha256.Sum256(content)
		return nil
	})
	g.Go(func() error {
		var err error
		result, err = idx.parser.Parse(bytes.NewReader(content))
		if err != nil {
			return fmt.Errorf("failed to parse feed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return hash, nil, err
	}
	if err := ctx.Err(); err != nil {
		return hash, nil, err
	}
	return hash, result, nil
}

// store replaces the source's symbols inside one transaction, in feed order
func (idx *Indexer) store(ctx context.Context, existing *storage.Source, hash [32]byte,
	symbols []types.Symbol, cfg *Config, stats *Statistics) error {

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	source := existing
	if source == nil {
		source = &storage.Source{
			Name:         cfg.SourceName,
			IndexVersion: storage.CurrentSchemaVersion,
		}
		if err := tx.CreateSource(ctx, source); err != nil {
			return fmt.Errorf("failed to create source: %w", err)
		}
	} else if err := tx.DeleteSymbolsBySource(ctx, source.ID); err != nil {
		return err
	}

	for start := 0; start < len(symbols); start += cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+cfg.BatchSize, len(symbols))
		for i := start; i < end; i++ {
			if err := tx.InsertSymbol(ctx, storage.FromTypesSymbol(symbols[i], source.ID, i)); err != nil {
				return err
			}
		}
		stats.Batches++
	}

	source.RootDir = cfg.RootDir
	source.ContentHash = hash
	source.SymbolCount = len(symbols)
	source.IndexVersion = storage.CurrentSchemaVersion
	source.LastIndexedAt = time.Now()
	if err := tx.UpdateSource(ctx, source); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	stats.SymbolsImported = len(symbols)
	return nil
}

// LoadSymbols returns the stored feed of a source in feed order
func LoadSymbols(ctx context.Context, store storage.Storage, sourceName string) ([]types.Symbol, *storage.Source, error) {
	source, err := store.GetSource(ctx, sourceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load source %q: %w", sourceName, err)
	}

	stored, err := store.ListSymbols(ctx, source.ID)
	if err != nil {
		return nil, nil, err
	}

	symbols := make([]types.Symbol, len(stored))
	for i, sym := range stored {
		symbols[i] = sym.ToTypesSymbol()
	}

	return symbols, source, nil
}
