// Package demography holds the fixed and parametric distributions that shape
// generated people and families: sex, relationship status, child pedigree
// and the number of children per family.
package demography

import (
	"fmt"

	"github.com/okian/gedgen/internal/domain/distribution"
	"github.com/okian/gedgen/internal/domain/model"
)

// Pedigree values for the PEDI line under a child-to-family link.
const (
	PedigreeBirth   = "birth"
	PedigreeAdopted = "adopted"
	PedigreeFoster  = "foster"
)

// Split of the degenerate zero-expectation distribution.
const (
	zeroChildrenShare = 0.6
	oneChildShare     = 0.4
)

// Shape and floor proportions on each side of the expected value.
const (
	shapeShare = 0.8
	floorShare = 0.2
)

// SexCDF returns the distribution of a person's sex.
func SexCDF() distribution.CDF[model.Sex] {
	return distribution.CDF[model.Sex]{
		{P: 0.48, Value: model.SexMale},
		{P: 0.96, Value: model.SexFemale},
		{P: 0.98, Value: model.SexIntersex},
		{P: 0.99, Value: model.SexUnknown},
		{P: 1.00, Value: model.SexNotRecorded},
	}
}

// RelationLegalStatusCDF returns the distribution of the legal status of the
// parents' relationship within a family.
func RelationLegalStatusCDF() distribution.CDF[string] {
	return distribution.CDF[string]{
		{P: 0.60, Value: "marriage"},
		{P: 0.70, Value: "civil"},
		{P: 0.80, Value: "not married"},
		{P: 0.85, Value: "unknown"},
		{P: 0.86, Value: "religious"},
		{P: 0.87, Value: "common law"},
		{P: 0.94, Value: "partnership"},
		{P: 0.97, Value: "registered partnership"},
		{P: 0.99, Value: "living together"},
		{P: 1.00, Value: "living apart together"},
	}
}

// ChildPedigreeCDF returns the distribution of the pedigree linking a child
// to its family.
func ChildPedigreeCDF() distribution.CDF[string] {
	return distribution.CDF[string]{
		{P: 0.96, Value: PedigreeBirth},
		{P: 0.99, Value: PedigreeAdopted},
		{P: 1.00, Value: PedigreeFoster},
	}
}

// MaxChildren returns the largest child count ExpectedChildrenCountCDF can
// produce for the given expectation.
func MaxChildren(expected int) int {
	return expected*3/2 + 1
}

// ExpectedChildrenCountCDF returns a distribution over 0..MaxChildren(e)
// that clusters around e. Probability ramps up linearly to e and down
// linearly after it; each side mixes the ramp with a flat floor so no count
// in range is impossible. Counts up to e together hold the majority of the
// probability.
func ExpectedChildrenCountCDF(expected int) (distribution.CDF[int], error) {
	if expected < 0 {
		return nil, fmt.Errorf("expected %d: %w", expected, ErrInvalidExpectation)
	}
	if expected == 0 {
		return distribution.FromShares([]int{0, 1}, []float64{zeroChildrenShare, oneChildShare})
	}

	maxNum := MaxChildren(expected)
	upTo := (1.0 / float64(maxNum+1)) * (6.0/5.0*float64(expected) + 1)
	after := 1.0 - upTo

	values := make([]int, 0, maxNum+1)
	shares := make([]float64, 0, maxNum+1)

	if expected > 1 {
		a := shapeShare * upTo / float64(triangular(expected))
		b := floorShare * upTo / float64(expected+1)
		for n := 0; n <= expected; n++ {
			values = append(values, n)
			shares = append(shares, a*float64(n)+b)
		}
	} else {
		// A single expected child keeps a heavier flat part so that
		// childless families stay common.
		values = append(values, 0, 1)
		shares = append(shares, 0.4*upTo, 0.6*upTo)
	}

	tail := maxNum - expected
	if tail > 1 {
		a := shapeShare * after / float64(triangular(tail-1))
		b := floorShare * after / float64(tail)
		for n := expected + 1; n <= maxNum; n++ {
			values = append(values, n)
			shares = append(shares, a*float64(maxNum-n)+b)
		}
	} else {
		for n := expected + 1; n <= maxNum; n++ {
			values = append(values, n)
			shares = append(shares, after)
		}
	}

	return distribution.FromShares(values, shares)
}

// triangular returns 1 + 2 + ... + n.
func triangular(n int) int {
	return n * (n + 1) / 2
}
