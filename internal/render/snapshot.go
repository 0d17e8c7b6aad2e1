package render

import (
	"errors"
	"sync"
	"time"

	"github.com/dlang/ddox/pkg/types"
)

// Renderer mirrors searcher.Renderer so this package stays importable on its own
type Renderer interface {
	Render(results []types.Symbol, overflow int) error
}

// Page is one rendered result page
type Page struct {
	Results      []types.Symbol
	Overflow     int
	TotalMatches int
	RenderedAt   time.Time
}

// Snapshot remembers the last rendered page
type Snapshot struct {
	mu      sync.RWMutex
	page    Page
	renders int
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Render implements searcher.Renderer
func (s *Snapshot) Render(results []types.Symbol, overflow int) error {
	page := Page{
		Results:      make([]types.Symbol, len(results)),
		Overflow:     overflow,
		TotalMatches: len(results) + overflow,
		RenderedAt:   time.Now(),
	}
	copy(page.Results, results)

	s.mu.Lock()
	s.page = page
	s.renders++
	s.mu.Unlock()

	return nil
}

// Page returns the last rendered page
func (s *Snapshot) Page() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Renders returns how many pages were rendered
func (s *Snapshot) Renders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renders
}

// multi fans a render out to several renderers
type multi []Renderer

// Multi combines renderers; every one is called even if an earlier one fails
func Multi(renderers ...Renderer) Renderer {
	return multi(renderers)
}

func (m multi) Render(results []types.Symbol, overflow int) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(results, overflow); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
