// Package indexer imports documentation symbol feeds into storage and loads
// them back for the search engine.
//
// # Basic Usage
//
//	idx := indexer.New(store)
//
//	stats, err := idx.IndexFeed(ctx, "docs/symbols.js", &indexer.Config{
//	    SourceName: "phobos",
//	    RootDir:    "../",
//	})
//
//	fmt.Printf("Imported %d symbols in %v\n", stats.SymbolsImported, stats.Duration)
//
//	symbols, source, err := indexer.LoadSymbols(ctx, store, "phobos")
//
// # Import Pipeline
//
//  1. Read: the feed file is read once
//  2. Hash & Parse: SHA-256 of the content and record parsing run concurrently
//  3. Validate: any malformed record rejects the whole feed (ErrInvalidFeed)
//  4. Incremental Decision: an unchanged hash and link root skips the import
//  5. Store: old symbols are replaced in one transaction, in feed order
//
// Feed order is preserved through storage because ranking ties fall back to it.
//
// # Concurrency
//
// One import runs at a time per Indexer. A concurrent IndexFeed call returns
// ErrImportInProgress immediately.
package indexer
