// Package genealogy grows synthetic family trees: a factory creates people
// and families with inherited attributes, and a builder arranges them into a
// trunk of first-born lines with sub-branches around it.
package genealogy

import (
	"fmt"
	"time"

	"github.com/okian/gedgen/internal/domain/distribution"
)

// Policy is everything a build needs apart from the random stream: the name
// tables as CDFs and the demographic knobs.
type Policy struct {
	FirstNamesMale   distribution.CDF[string]
	FirstNamesFemale distribution.CDF[string]
	LastNamesMale    distribution.CDF[string]
	LastNamesFemale  distribution.CDF[string]

	// TargetPopulation is the minimum number of people to generate.
	TargetPopulation int
	// Generations is the depth of the trunk.
	Generations int
	// TrunkWidth is the expected number of children in trunk families.
	// Zero derives it from the target and the generation count.
	TrunkWidth int
	// ExpectedChildren is the expected number of children in sub-branch
	// families.
	ExpectedChildren int
	// SecondNameChance is the percent chance of a second given name.
	SecondNameChance int

	// FinalDate anchors birth dates and change dates.
	FinalDate time.Time
	// GenerationSpan is the number of years between generations.
	GenerationSpan int

	BirthEvents bool
	MaidenNames bool
	UIDs        bool
}

// Validate reports the first setting that cannot drive a build.
func (p *Policy) Validate() error {
	tables := []struct {
		name string
		cdf  distribution.CDF[string]
	}{
		{"male first names", p.FirstNamesMale},
		{"female first names", p.FirstNamesFemale},
		{"male last names", p.LastNamesMale},
		{"female last names", p.LastNamesFemale},
	}
	for _, t := range tables {
		if len(t.cdf) == 0 || t.cdf.Last() <= 0 {
			return fmt.Errorf("%w: %s table is empty", ErrInvalidPolicy, t.name)
		}
	}

	switch {
	case p.TargetPopulation < 1:
		return fmt.Errorf("%w: target population %d", ErrInvalidPolicy, p.TargetPopulation)
	case p.Generations < 1:
		return fmt.Errorf("%w: generations %d", ErrInvalidPolicy, p.Generations)
	case p.TrunkWidth < 0:
		return fmt.Errorf("%w: trunk width %d", ErrInvalidPolicy, p.TrunkWidth)
	case p.ExpectedChildren < 0:
		return fmt.Errorf("%w: expected children %d", ErrInvalidPolicy, p.ExpectedChildren)
	case p.SecondNameChance < 0 || p.SecondNameChance > 100:
		return fmt.Errorf("%w: second name chance %d", ErrInvalidPolicy, p.SecondNameChance)
	case p.GenerationSpan < 0:
		return fmt.Errorf("%w: generation span %d", ErrInvalidPolicy, p.GenerationSpan)
	}
	return nil
}

// trunkWidth returns the configured width or floor(target/3/generations).
func (p *Policy) trunkWidth() int {
	if p.TrunkWidth > 0 {
		return p.TrunkWidth
	}
	return p.TargetPopulation / 3 / p.Generations
}

// epoch is the start of the birth date range for level zero.
func (p *Policy) epoch() time.Time {
	return p.FinalDate.AddDate(-p.GenerationSpan*p.Generations, 0, 0)
}
