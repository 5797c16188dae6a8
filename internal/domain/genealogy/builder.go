package genealogy

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/gedgen/internal/domain/demography"
	"github.com/okian/gedgen/internal/domain/distribution"
	"github.com/okian/gedgen/internal/domain/model"
	"github.com/okian/gedgen/pkg/logger"
	"github.com/okian/gedgen/pkg/metrics"
)

// Stats summarises a build.
type Stats struct {
	People   int
	Families int

	// Trunk holds the trunk person of every generation, root first.
	Trunk []int

	TrunkFamilies  int
	SpouseFamilies int
	ParentFamilies int
	ForcedMales    int

	// Remarriages counts spouse families added to people who already had
	// one, after a pass found nobody without a family.
	Remarriages int

	// Passes is the number of sub-branch expansion passes.
	Passes int

	Duration time.Duration
}

// Builder grows one tree per Build call from a policy and a random stream.
type Builder struct {
	policy Policy
	seed   int64
	rng    *rand.Rand
	logger logger.Logger
}

// NewBuilder validates the policy and returns a builder. Without WithSeed or
// WithRand the stream is seeded from the clock.
func NewBuilder(policy Policy, opts ...Option) (*Builder, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		policy: policy,
		seed:   time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Nop()
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(b.seed)) //nolint:gosec // reproducible synthetic data, not security
	}
	return b, nil
}

// Seed returns the seed of the random stream. It is meaningless when the
// stream was supplied with WithRand.
func (b *Builder) Seed() int64 { return b.seed }

// Build grows a trunk of Generations first-born male lines from a single
// root, then attaches spouse and parent families until the tree holds at
// least TargetPopulation people.
func (b *Builder) Build(ctx context.Context) (*model.Tree, Stats, error) {
	start := time.Now()
	var stats Stats

	trunkCDF, err := demography.ExpectedChildrenCountCDF(b.policy.trunkWidth())
	if err != nil {
		return nil, stats, fmt.Errorf("trunk children: %w", err)
	}
	branchCDF, err := demography.ExpectedChildrenCountCDF(b.policy.ExpectedChildren)
	if err != nil {
		return nil, stats, fmt.Errorf("branch children: %w", err)
	}

	tree := model.NewTree()
	f := NewFactory(tree, &b.policy, b.rng)

	if err := b.growTrunk(ctx, f, trunkCDF, &stats); err != nil {
		metrics.RecordErrorByComponent("genealogy", "trunk")
		return nil, stats, err
	}
	b.logger.Debug(ctx, "trunk grown",
		logger.Int("generations", len(stats.Trunk)),
		logger.Int("people", len(tree.People)),
	)

	if err := b.growBranches(ctx, f, branchCDF, &stats); err != nil {
		metrics.RecordErrorByComponent("genealogy", "branches")
		return nil, stats, err
	}

	stats.People = len(tree.People)
	stats.Families = len(tree.Families)
	stats.ForcedMales = f.ForcedMales()
	stats.Duration = time.Since(start)

	metrics.RecordPeopleGenerated(stats.People)
	metrics.UpdateTreeSize(stats.People, stats.Families)
	metrics.UpdateTrunkGenerations(len(stats.Trunk))
	metrics.UpdateTargetPopulation(b.policy.TargetPopulation)
	metrics.RecordGenerationDuration(stats.Duration.Seconds())

	b.logger.Info(ctx, "tree generated",
		logger.Int("people", stats.People),
		logger.Int("families", stats.Families),
		logger.Int("passes", stats.Passes),
		logger.Int("forced_males", stats.ForcedMales),
		logger.Duration("took", stats.Duration),
	)
	return tree, stats, nil
}

// growTrunk creates the root and one family per further generation, each
// continued through a random male child.
func (b *Builder) growTrunk(ctx context.Context, f *Factory, children distribution.CDF[int], stats *Stats) error {
	current, err := f.GenerateRoot(Draft{Sex: model.SexMale})
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	stats.Trunk = append(stats.Trunk, current)

	for gen := 1; gen < b.policy.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := children.Sample(b.rng)
		if err != nil {
			return fmt.Errorf("trunk generation %d: %w", gen, err)
		}
		familyID, err := f.GenerateFamilyInclPerson(current, model.RoleFather, n, 1)
		if err != nil {
			return fmt.Errorf("trunk generation %d: %w", gen, err)
		}
		stats.TrunkFamilies++
		metrics.RecordFamilyGenerated(metrics.PhaseTrunk)

		next, ok := f.RandomChild(familyID, model.SexMale)
		if !ok {
			return fmt.Errorf("generation %d family %d: %w", gen, familyID, ErrTrunkBroken)
		}
		current = next
		stats.Trunk = append(stats.Trunk, current)
	}
	return nil
}

// growBranches scans people by index, including those appended during the
// pass, and attaches a spouse family and a parent family wherever one is
// missing. A pass that attaches nothing is followed by a remarriage pass in
// which people present at its start and below the last generation take
// another spouse family. It
// stops as soon as the target is met.
func (b *Builder) growBranches(ctx context.Context, f *Factory, children distribution.CDF[int], stats *Stats) error {
	tree := f.Tree()
	target := b.policy.TargetPopulation
	ceiling := b.policy.Generations - 1

	remarry := false
	for len(tree.People) < target {
		attached, known := 0, len(tree.People)
		for pid := 0; pid < len(tree.People) && len(tree.People) < target; pid++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			level, sex := tree.People[pid].Level, tree.People[pid].Sex

			if level < ceiling && ((remarry && pid < known) || !tree.IsParent(pid)) {
				again := tree.IsParent(pid)
				if err := b.attach(f, children, pid, b.spouseRole(sex)); err != nil {
					return err
				}
				attached++
				stats.SpouseFamilies++
				if again {
					stats.Remarriages++
				}
				metrics.RecordFamilyGenerated(metrics.PhaseSpouse)
				if len(tree.People) >= target {
					break
				}
			}

			if !tree.IsChild(pid) && level > 0 {
				if err := b.attach(f, children, pid, model.RoleChild); err != nil {
					return err
				}
				attached++
				stats.ParentFamilies++
				metrics.RecordFamilyGenerated(metrics.PhaseParents)
			}
		}

		stats.Passes++
		metrics.RecordExpansionPass()
		switch {
		case attached > 0:
			remarry = false
		case !remarry:
			b.logger.Debug(ctx, "every person has a family, remarrying",
				logger.Int("people", len(tree.People)),
				logger.Int("target", target),
			)
			remarry = true
		default:
			metrics.RecordSaturatedBuild()
			return fmt.Errorf("%w: %d of %d people in %d generations",
				ErrSaturated, len(tree.People), target, b.policy.Generations)
		}
	}
	return nil
}

func (b *Builder) attach(f *Factory, children distribution.CDF[int], personID int, role model.Role) error {
	n, err := children.Sample(b.rng)
	if err != nil {
		return fmt.Errorf("children of person %d: %w", personID, err)
	}
	if _, err := f.GenerateFamilyInclPerson(personID, role, n, 0); err != nil {
		return fmt.Errorf("%s family of person %d: %w", role, personID, err)
	}
	return nil
}

// spouseRole maps sex to the parent slot; other sexes flip a coin.
func (b *Builder) spouseRole(sex model.Sex) model.Role {
	switch sex {
	case model.SexMale:
		return model.RoleFather
	case model.SexFemale:
		return model.RoleMother
	}
	if b.rng.Intn(2) == 0 {
		return model.RoleFather
	}
	return model.RoleMother
}
