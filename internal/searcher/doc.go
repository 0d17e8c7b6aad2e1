// Package searcher implements the incremental symbol search of the
// documentation browser.
//
// An Engine is built once per loaded symbol feed and owns a Session holding
// the last processed query and a request counter. Every call to Search:
//
//  1. lower-cases and trims the query;
//  2. returns a Redundant outcome, doing nothing, if the query equals the
//     previous one;
//  3. records the query and takes the next request id;
//  4. splits the query into whitespace-separated terms;
//  5. yields an empty result set for zero terms or a lone term shorter
//     than two characters ("a b" is accepted);
//  6. keeps symbols whose name contains every term, case-insensitively;
//  7. ranks them: non-deprecated first, then fewer dotted segments, then
//     case-insensitive name order (stable);
//  8. caps the list at 100 and reports the overflow count;
//  9. renders the list only if no newer request was issued meanwhile.
//
// # Basic Usage
//
//	engine, err := searcher.New(symbols, render.NewHTMLRenderer("../"), searcher.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outcome, err := engine.Search(ctx, "file open")
//	fmt.Printf("%d shown, %d more\n", len(outcome.Results), outcome.Overflow)
//
// # Superseded Requests
//
// SearchAsync registers a request immediately and computes it on a
// goroutine. When a newer request is issued before it finishes, its outcome
// is marked Stale and never reaches the Renderer. Rendering happens while the
// session is locked, so a newer request cannot start halfway through a render.
//
// Large feeds (Options.ParallelThreshold) are matched in contiguous shards
// under an errgroup; shards stop early once their request is superseded.
//
// # Caching
//
// Ranked and capped match lists are memoized per term list in an LRU cache.
// The feed never changes during an engine's life, so entries never expire.
// A memo hit still counts as a request and still goes through the render gate.
package searcher
