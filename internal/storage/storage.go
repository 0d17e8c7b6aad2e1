package storage

import (
	"context"
	"time"

	"github.com/dlang/ddox/pkg/types"
)

// Storage defines the interface for persisting imported symbol feeds
type Storage interface {
	// Source operations
	CreateSource(ctx context.Context, source *Source) error
	GetSource(ctx context.Context, name string) (*Source, error)
	GetSourceByID(ctx context.Context, sourceID int64) (*Source, error)
	UpdateSource(ctx context.Context, source *Source) error
	DeleteSource(ctx context.Context, sourceID int64) error
	ListSources(ctx context.Context) ([]*Source, error)

	// Symbol operations
	InsertSymbol(ctx context.Context, symbol *Symbol) error
	ListSymbols(ctx context.Context, sourceID int64) ([]*Symbol, error)
	DeleteSymbolsBySource(ctx context.Context, sourceID int64) error
	CountSymbols(ctx context.Context, sourceID int64) (int, error)

	// Status operations
	GetStatus(ctx context.Context, sourceID int64) (*SourceStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Source represents one imported symbol feed, e.g. the index of a
// generated documentation site
type Source struct {
	ID            int64
	Name          string // Unique, usually the feed path
	RootDir       string // Link prefix prepended to every symbol path
	ContentHash   [32]byte
	SymbolCount   int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Symbol is a stored feed record. Position is its index in the feed.
type Symbol struct {
	ID         int64
	SourceID   int64
	Position   int
	Name       string
	Kind       string
	Path       string
	Attributes []string
}

// SourceStatus contains statistics about an imported feed
type SourceStatus struct {
	Source          *Source
	SymbolsCount    int
	DeprecatedCount int
	IndexSizeMB     float64
	LastIndexedAt   time.Time
	Health          HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible bool
	SymbolsLoaded      bool
	CountsConsistent   bool // Stored rows match the source's recorded symbol count
}

// ToTypesSymbol converts storage Symbol to types.Symbol
func (s *Symbol) ToTypesSymbol() types.Symbol {
	attrs := s.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	return types.Symbol{
		Name:       s.Name,
		Kind:       types.SymbolKind(s.Kind),
		Attributes: attrs,
		Path:       s.Path,
	}
}

// FromTypesSymbol converts types.Symbol to storage Symbol
func FromTypesSymbol(s types.Symbol, sourceID int64, position int) *Symbol {
	return &Symbol{
		SourceID:   sourceID,
		Position:   position,
		Name:       s.Name,
		Kind:       string(s.Kind),
		Path:       s.Path,
		Attributes: s.Attributes,
	}
}
