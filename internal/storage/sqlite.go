package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dlang/ddox/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// nullTime stores the zero time as NULL
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Source operations

const sourceColumns = `
	id, name, root_dir, content_hash, symbol_count, index_version,
	last_indexed_at, created_at, updated_at
`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*Source, error) {
	var source Source
	var hash []byte
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&source.ID, &source.Name, &source.RootDir, &hash, &source.SymbolCount,
		&source.IndexVersion, &lastIndexedAt, &source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(source.ContentHash[:], hash)
	if lastIndexedAt.Valid {
		source.LastIndexedAt = lastIndexedAt.Time
	}
	return &source, nil
}

// createSourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createSourceWithQuerier(ctx context.Context, q querier, source *Source) error {
	if _, err := s.getSourceWithQuerier(ctx, q, source.Name); err == nil {
		return fmt.Errorf("source %q: %w", source.Name, ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	query := `
		INSERT INTO sources (name, root_dir, content_hash, symbol_count, index_version,
		                     last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		source.Name, source.RootDir, source.ContentHash[:], source.SymbolCount,
		source.IndexVersion, nullTime(source.LastIndexedAt), now, now)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	source.ID = id
	source.CreatedAt = now
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateSource(ctx context.Context, source *Source) error {
	return s.createSourceWithQuerier(ctx, s.querier(), source)
}

// getSourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getSourceWithQuerier(ctx context.Context, q querier, name string) (*Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE name = ?`
	source, err := scanSource(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return source, err
}

func (s *SQLiteStorage) GetSource(ctx context.Context, name string) (*Source, error) {
	return s.getSourceWithQuerier(ctx, s.querier(), name)
}

// getSourceByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getSourceByIDWithQuerier(ctx context.Context, q querier, sourceID int64) (*Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = ?`
	source, err := scanSource(q.QueryRowContext(ctx, query, sourceID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return source, err
}

func (s *SQLiteStorage) GetSourceByID(ctx context.Context, sourceID int64) (*Source, error) {
	return s.getSourceByIDWithQuerier(ctx, s.querier(), sourceID)
}

// updateSourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateSourceWithQuerier(ctx context.Context, q querier, source *Source) error {
	query := `
		UPDATE sources
		SET root_dir = ?, content_hash = ?, symbol_count = ?, index_version = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		source.RootDir, source.ContentHash[:], source.SymbolCount, source.IndexVersion,
		nullTime(source.LastIndexedAt), now, source.ID)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateSource(ctx context.Context, source *Source) error {
	return s.updateSourceWithQuerier(ctx, s.querier(), source)
}

// deleteSourceWithQuerier removes a source; its symbols cascade
func (s *SQLiteStorage) deleteSourceWithQuerier(ctx context.Context, q querier, sourceID int64) error {
	result, err := q.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteSource(ctx context.Context, sourceID int64) error {
	return s.deleteSourceWithQuerier(ctx, s.querier(), sourceID)
}

func (s *SQLiteStorage) listSourcesWithQuerier(ctx context.Context, q querier) ([]*Source, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []*Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (s *SQLiteStorage) ListSources(ctx context.Context) ([]*Source, error) {
	return s.listSourcesWithQuerier(ctx, s.querier())
}

// Symbol operations

// insertSymbolWithQuerier stores a symbol row followed by its attributes in feed order
func (s *SQLiteStorage) insertSymbolWithQuerier(ctx context.Context, q querier, symbol *Symbol) error {
	query := `
		INSERT INTO symbols (source_id, position, name, kind, path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := q.QueryRowContext(ctx, query,
		symbol.SourceID, symbol.Position, symbol.Name, symbol.Kind, symbol.Path, time.Now(),
	).Scan(&symbol.ID)
	if err != nil {
		return fmt.Errorf("failed to insert symbol %q: %w", symbol.Name, err)
	}

	for ordinal, attr := range symbol.Attributes {
		_, err := q.ExecContext(ctx,
			"INSERT INTO symbol_attributes (symbol_id, ordinal, attribute) VALUES (?, ?, ?)",
			symbol.ID, ordinal, attr)
		if err != nil {
			return fmt.Errorf("failed to insert attribute %q of %q: %w", attr, symbol.Name, err)
		}
	}

	return nil
}

func (s *SQLiteStorage) InsertSymbol(ctx context.Context, symbol *Symbol) error {
	return s.insertSymbolWithQuerier(ctx, s.querier(), symbol)
}

// listSymbolsWithQuerier returns the symbols of a source in feed order
func (s *SQLiteStorage) listSymbolsWithQuerier(ctx context.Context, q querier, sourceID int64) ([]*Symbol, error) {
	query := `
		SELECT s.id, s.source_id, s.position, s.name, s.kind, s.path, a.attribute
		FROM symbols s
		LEFT JOIN symbol_attributes a ON a.symbol_id = s.id
		WHERE s.source_id = ?
		ORDER BY s.position, a.ordinal
	`
	rows, err := q.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var symbols []*Symbol
	var current *Symbol
	for rows.Next() {
		var sym Symbol
		var attr sql.NullString
		if err := rows.Scan(&sym.ID, &sym.SourceID, &sym.Position, &sym.Name, &sym.Kind, &sym.Path, &attr); err != nil {
			return nil, err
		}

		if current == nil || current.ID != sym.ID {
			sym.Attributes = []string{}
			current = &sym
			symbols = append(symbols, current)
		}
		if attr.Valid {
			current.Attributes = append(current.Attributes, attr.String)
		}
	}

	return symbols, rows.Err()
}

func (s *SQLiteStorage) ListSymbols(ctx context.Context, sourceID int64) ([]*Symbol, error) {
	return s.listSymbolsWithQuerier(ctx, s.querier(), sourceID)
}

func (s *SQLiteStorage) deleteSymbolsBySourceWithQuerier(ctx context.Context, q querier, sourceID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM symbols WHERE source_id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete symbols: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteSymbolsBySource(ctx context.Context, sourceID int64) error {
	return s.deleteSymbolsBySourceWithQuerier(ctx, s.querier(), sourceID)
}

func (s *SQLiteStorage) countSymbolsWithQuerier(ctx context.Context, q querier, sourceID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols WHERE source_id = ?", sourceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count symbols: %w", err)
	}
	return count, nil
}

func (s *SQLiteStorage) CountSymbols(ctx context.Context, sourceID int64) (int, error) {
	return s.countSymbolsWithQuerier(ctx, s.querier(), sourceID)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, sourceID int64) (*SourceStatus, error) {
	source, err := s.getSourceByIDWithQuerier(ctx, q, sourceID)
	if err != nil {
		return nil, err
	}

	status := &SourceStatus{
		Source:        source,
		LastIndexedAt: source.LastIndexedAt,
	}

	status.SymbolsCount, err = s.countSymbolsWithQuerier(ctx, q, sourceID)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT s.id) FROM symbols s
		JOIN symbol_attributes a ON a.symbol_id = s.id
		WHERE s.source_id = ? AND a.attribute = ?
	`, sourceID, types.AttrDeprecated).Scan(&status.DeprecatedCount)
	if err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	err = q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		SymbolsLoaded:      status.SymbolsCount > 0,
		CountsConsistent:   status.SymbolsCount == source.SymbolCount,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, sourceID int64) (*SourceStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), sourceID)
}

// Transaction implementations - every operation runs on the transaction querier

func (t *sqliteTx) CreateSource(ctx context.Context, source *Source) error {
	return t.storage.createSourceWithQuerier(ctx, t.querier(), source)
}

func (t *sqliteTx) GetSource(ctx context.Context, name string) (*Source, error) {
	return t.storage.getSourceWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) GetSourceByID(ctx context.Context, sourceID int64) (*Source, error) {
	return t.storage.getSourceByIDWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) UpdateSource(ctx context.Context, source *Source) error {
	return t.storage.updateSourceWithQuerier(ctx, t.querier(), source)
}

func (t *sqliteTx) DeleteSource(ctx context.Context, sourceID int64) error {
	return t.storage.deleteSourceWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) ListSources(ctx context.Context) ([]*Source, error) {
	return t.storage.listSourcesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) InsertSymbol(ctx context.Context, symbol *Symbol) error {
	return t.storage.insertSymbolWithQuerier(ctx, t.querier(), symbol)
}

func (t *sqliteTx) ListSymbols(ctx context.Context, sourceID int64) ([]*Symbol, error) {
	return t.storage.listSymbolsWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) DeleteSymbolsBySource(ctx context.Context, sourceID int64) error {
	return t.storage.deleteSymbolsBySourceWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) CountSymbols(ctx context.Context, sourceID int64) (int, error) {
	return t.storage.countSymbolsWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, sourceID int64) (*SourceStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
