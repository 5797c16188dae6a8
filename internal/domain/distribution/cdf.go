// Package distribution turns weighted value lists into cumulative
// distribution functions and draws values from them.
package distribution

import (
	"fmt"
	"math/rand"
	"sort"
)

// Weighted is a single source row: a value and its raw occurrence count.
// The weight is a count, never a probability.
type Weighted[T comparable] struct {
	Value  T
	Weight int64
}

// Point is one step of a CDF. P is the cumulative probability reached once
// Value has been accounted for.
type Point[T comparable] struct {
	P     float64
	Value T
}

// CDF is an ordered list of points, non-decreasing in P, whose last point
// has P == 1.0 when built by Build.
type CDF[T comparable] []Point[T]

// Build converts a weighted list into a CDF. One point is emitted per input
// value, in input order, including zero-weight values; those share the P of
// their predecessor and can never be drawn.
func Build[T comparable](values []Weighted[T]) (CDF[T], error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no weighted values: %w", ErrInvalidDistribution)
	}

	var total int64
	for i, v := range values {
		if v.Weight < 0 {
			return nil, fmt.Errorf("value %d (%v) has negative weight %d: %w", i, v.Value, v.Weight, ErrInvalidDistribution)
		}
		total += v.Weight
	}
	if total == 0 {
		return nil, fmt.Errorf("total weight of %d values is zero: %w", len(values), ErrInvalidDistribution)
	}

	// Integer prefix sums keep the sequence monotonic and end exactly at 1.
	cdf := make(CDF[T], len(values))
	var running int64
	for i, v := range values {
		running += v.Weight
		cdf[i] = Point[T]{P: float64(running) / float64(total), Value: v.Value}
	}
	return cdf, nil
}

// FromShares builds a CDF from per-value probability shares that should add
// up to one. Cumulative values are normalised by their own sum so that the
// last point is exactly 1.0 despite floating point drift.
func FromShares[T comparable](values []T, shares []float64) (CDF[T], error) {
	if len(values) == 0 || len(values) != len(shares) {
		return nil, fmt.Errorf("%d values with %d shares: %w", len(values), len(shares), ErrInvalidDistribution)
	}

	cdf := make(CDF[T], len(values))
	var running float64
	for i, s := range shares {
		if s < 0 {
			return nil, fmt.Errorf("value %v has negative share %f: %w", values[i], s, ErrInvalidDistribution)
		}
		running += s
		cdf[i] = Point[T]{P: running, Value: values[i]}
	}
	if running <= 0 {
		return nil, fmt.Errorf("shares add up to zero: %w", ErrInvalidDistribution)
	}
	for i := range cdf {
		cdf[i].P /= running
	}
	cdf[len(cdf)-1].P = 1
	return cdf, nil
}

// Last returns the cumulative probability of the final point, or zero for an
// empty CDF.
func (c CDF[T]) Last() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].P
}

// Sample draws r uniformly from [0, Last()) and returns the value of the
// first point whose P is strictly greater than r.
func (c CDF[T]) Sample(rng *rand.Rand) (T, error) {
	var zero T
	limit := c.Last()
	if limit <= 0 {
		return zero, fmt.Errorf("sampling %d points: %w", len(c), ErrEmptyDistribution)
	}

	r := rng.Float64() * limit
	i := sort.Search(len(c), func(i int) bool { return c[i].P > r })
	if i == len(c) {
		return zero, fmt.Errorf("no point above %f: %w", r, ErrEmptyDistribution)
	}
	return c[i].Value, nil
}

// Without returns a shrunk CDF that omits every excluded value. Survivors
// keep their original share, so relative weighting among them is preserved.
// The result is not renormalised; Sample scales by its last point.
func (c CDF[T]) Without(excluded ...T) CDF[T] {
	reject := make(map[T]struct{}, len(excluded))
	for _, v := range excluded {
		reject[v] = struct{}{}
	}

	var (
		prev  float64
		total float64
	)
	small := make(CDF[T], 0, len(c))
	for _, p := range c {
		if _, skip := reject[p.Value]; skip {
			prev = p.P
			continue
		}
		total += p.P - prev
		small = append(small, Point[T]{P: total, Value: p.Value})
		prev = p.P
	}
	return small
}

// SampleExcluding draws from the CDF as if the excluded values were never
// part of it. Excluding every reachable value yields ErrEmptyDistribution.
func (c CDF[T]) SampleExcluding(rng *rand.Rand, excluded ...T) (T, error) {
	v, err := c.Without(excluded...).Sample(rng)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("sampling with %d excluded values: %w", len(excluded), err)
	}
	return v, nil
}

// Distinct reports how many different values carry a positive share.
func (c CDF[T]) Distinct() int {
	seen := make(map[T]struct{}, len(c))
	var prev float64
	for _, p := range c {
		if p.P > prev {
			seen[p.Value] = struct{}{}
		}
		prev = p.P
	}
	return len(seen)
}

// Values returns the values of the CDF in order.
func (c CDF[T]) Values() []T {
	out := make([]T, len(c))
	for i, p := range c {
		out[i] = p.Value
	}
	return out
}

// Share returns the probability of drawing the value at index i.
func (c CDF[T]) Share(i int) float64 {
	if i < 0 || i >= len(c) {
		return 0
	}
	if i == 0 {
		return c[0].P
	}
	return c[i].P - c[i-1].P
}
