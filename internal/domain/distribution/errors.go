package distribution

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidDistribution reports a weighted list that cannot form a CDF
	// (empty input, negative weight, or zero total weight).
	ErrInvalidDistribution = errors.New("invalid distribution")

	// ErrEmptyDistribution reports a draw from a CDF with no reachable value.
	// For a CDF built by Build this indicates a logic defect in the caller.
	ErrEmptyDistribution = errors.New("empty distribution")
)
