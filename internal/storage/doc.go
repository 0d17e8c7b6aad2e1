// Package storage provides SQLite-based persistence for imported symbol feeds.
//
// # Database Schema
//
// Tables:
//   - sources: one row per imported feed (name, link root, content hash, counts)
//   - symbols: feed records with their position in the feed
//   - symbol_attributes: style tags of each symbol, in feed order
//   - schema_version: applied migrations, compared with semver
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("ddox-search.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	source := &storage.Source{Name: "phobos", RootDir: "../", IndexVersion: "1.0.0"}
//	if err := tx.CreateSource(ctx, source); err != nil {
//	    return err
//	}
//	for i, sym := range feed {
//	    if err := tx.InsertSymbol(ctx, storage.FromTypesSymbol(sym, source.ID, i)); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// ListSymbols returns the records in feed order; the search engine relies on
// that order for its stable sort.
//
// # Build Tags
//
// The default build uses modernc.org/sqlite and needs no C compiler. Building
// with the sqlite_cgo tag switches to github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
