// Package render turns ranked search results into output.
//
// HTMLRenderer produces the result list of the documentation page:
//
//	<ul id="symbolSearchResults">
//	  <li class="function deprecated"><a href="../std/foo.html" title="std.foo">std.foo</a></li>
//	  <li>…12 additional results</li>
//	</ul>
//
// Links are the renderer's root directory followed by the symbol path.
// Every Render replaces the previous list entirely.
//
// Snapshot keeps the last rendered page for status and tool responses, and
// Multi fans one render out to several renderers.
package render
