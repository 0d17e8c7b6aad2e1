package types

import "errors"

// Domain errors for feed validation
var (
	ErrInvalidSymbol  = errors.New("invalid symbol record")
	ErrMissingField   = errors.New("required field missing")
	ErrMalformedFeed  = errors.New("malformed symbol feed")
	ErrNegativeResult = errors.New("result counts cannot be negative")
	ErrResultOverflow = errors.New("result set exceeds the cap")
)
