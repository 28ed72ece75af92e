package shared

import "errors"

var (
	// ErrNoPrimaryKey indicates a table without a usable single-column primary key.
	ErrNoPrimaryKey = errors.New("single-column primary key required")
	// ErrQuoteExpired indicates an evicted or unknown quote session.
	ErrQuoteExpired = errors.New("quote session expired")
)
