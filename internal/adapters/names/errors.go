package names

import (
	"errors"
)

// Sentinel kinds for name table errors.
var (
	// ErrMalformedRow is returned for a row with a missing column or a weight
	// that is not a base-10 integer.
	ErrMalformedRow = errors.New("malformed row")

	// ErrEmptyTable is returned for a table without any data rows.
	ErrEmptyTable = errors.New("empty name table")

	// ErrUnknownTable is returned when no embedded default exists for a table.
	ErrUnknownTable = errors.New("unknown name table")
)
