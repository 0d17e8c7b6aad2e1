// Package parser reads the symbol feed of the generated documentation.
//
// Two encodings are accepted. A JSON array:
//
//	[{"name": "std.stdio", "kind": "module", "path": "std/stdio.html", "attributes": []}]
//
// and the symbols.js script the documentation generator writes next to the
// pages. Its array is decoded as JSON5, so bare keys, single-quoted strings,
// trailing commas, comments and JavaScript string escapes are accepted:
//
//	// symbol index generated by DDOX - do not edit
//	var symbols = [
//	{name: 'std.stdio', kind: "module", path: './std/stdio.html', attributes: []},
//	];
//
// Every record must be an object with name, kind, path and attributes.
// Problems with single records are collected in types.ParseResult.Errors so a loader can reject
// the feed with a complete report; syntax errors fail the parse outright.
package parser
