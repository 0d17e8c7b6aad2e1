package searcher

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the mutable query state of one engine: the last processed
// query and the request counter used to discard superseded results.
// All mutation goes through the engine's entry points and is serialized by mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu             sync.Mutex
	lastQuery      string
	requestCounter uint64
}

// NewSession creates a fresh session with an empty last query
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// begin registers a new request for the normalized query.
// It returns ok=false, without touching the counter, when the query equals
// the last processed one.
func (s *Session) begin(query string) (id uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == s.lastQuery {
		return 0, false
	}

	s.lastQuery = query
	s.requestCounter++
	return s.requestCounter, true
}

// isCurrent reports whether id is still the newest request
func (s *Session) isCurrent(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id == s.requestCounter
}

// gate runs fn only if id is still the newest request. The session stays
// locked while fn runs, so no newer request can start until it returns.
func (s *Session) gate(id uint64, fn func() error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.requestCounter {
		return false, nil
	}
	return true, fn()
}

// LastQuery returns the most recently processed normalized query
func (s *Session) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// RequestCount returns the number of non-redundant requests issued so far
func (s *Session) RequestCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCounter
}
