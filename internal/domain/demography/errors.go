package demography

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidExpectation = errors.New("invalid expected children count")
)
