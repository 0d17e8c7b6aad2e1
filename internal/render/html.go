package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dlang/ddox/pkg/types"
)

// ResultListID is the id of the rendered result list element
const ResultListID = "symbolSearchResults"

// Link builds the hyperlink target of a symbol page
func Link(rootDir, path string) string {
	return rootDir + path
}

// HTMLRenderer renders search results as an HTML list. Each Render call
// replaces the whole list; nothing of a previous render survives.
type HTMLRenderer struct {
	rootDir string

	mu   sync.RWMutex
	list *html.Node
}

// NewHTMLRenderer creates a renderer that resolves symbol paths against rootDir
func NewHTMLRenderer(rootDir string) *HTMLRenderer {
	return &HTMLRenderer{
		rootDir: rootDir,
		list:    newResultList(),
	}
}

// RootDir returns the link prefix of the renderer
func (r *HTMLRenderer) RootDir() string {
	return r.rootDir
}

// Render implements searcher.Renderer
func (r *HTMLRenderer) Render(results []types.Symbol, overflow int) error {
	list := newResultList()

	for i := range results {
		list.AppendChild(r.resultItem(&results[i]))
	}

	if overflow > 0 {
		li := element(atom.Li)
		li.AppendChild(text(fmt.Sprintf("…%d additional results", overflow)))
		list.AppendChild(li)
	}

	r.mu.Lock()
	r.list = list
	r.mu.Unlock()

	return nil
}

// resultItem builds <li class="kind attrs..."><a href title>name</a></li>
func (r *HTMLRenderer) resultItem(sym *types.Symbol) *html.Node {
	li := element(atom.Li)
	if classes := styleClasses(sym); classes != "" {
		li.Attr = append(li.Attr, html.Attribute{Key: "class", Val: classes})
	}

	a := element(atom.A)
	a.Attr = []html.Attribute{
		{Key: "href", Val: Link(r.rootDir, sym.Path)},
		{Key: "title", Val: sym.Name},
	}
	a.AppendChild(text(sym.Name))
	li.AppendChild(a)

	return li
}

// WriteTo writes the current list as HTML
func (r *HTMLRenderer) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	r.mu.RLock()
	err := html.Render(&buf, r.list)
	r.mu.RUnlock()

	if err != nil {
		return 0, fmt.Errorf("failed to render result list: %w", err)
	}
	return buf.WriteTo(w)
}

// HTML returns the current list as an HTML fragment
func (r *HTMLRenderer) HTML() string {
	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		return ""
	}
	return sb.String()
}

// styleClasses joins the kind and every attribute into a class list
func styleClasses(sym *types.Symbol) string {
	classes := make([]string, 0, len(sym.Attributes)+1)
	if sym.Kind != "" {
		classes = append(classes, string(sym.Kind))
	}
	classes = append(classes, sym.Attributes...)
	return strings.Join(classes, " ")
}

func newResultList() *html.Node {
	list := element(atom.Ul)
	list.Attr = []html.Attribute{{Key: "id", Val: ResultListID}}
	return list
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
