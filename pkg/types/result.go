package types

// SearchOutcome is the result of one invocation of the search entry point
type SearchOutcome struct {
	// Identification
	RequestID uint64 // Session request id captured by this call (0 when Redundant)
	Query     string // Normalized query
	Terms     []string

	// Results, ranked and capped
	Results      []Symbol
	TotalMatches int // Matches before the cap
	Overflow     int // TotalMatches - len(Results) when the cap applied, else 0

	// Delivery
	Redundant bool // Query equal to the previous one; nothing was computed or rendered
	Stale     bool // Superseded by a newer request before rendering; never rendered
	Rendered  bool // Handed to the renderer
}

// Validate checks the result cap and overflow accounting against maxResults
func (o *SearchOutcome) Validate(maxResults int) error {
	if o.TotalMatches < 0 || o.Overflow < 0 {
		return ErrNegativeResult
	}

	if len(o.Results) > maxResults {
		return ErrResultOverflow
	}

	if o.TotalMatches > maxResults && o.Overflow != o.TotalMatches-maxResults {
		return ErrResultOverflow
	}

	if o.TotalMatches <= maxResults && o.Overflow != 0 {
		return ErrResultOverflow
	}

	return nil
}
