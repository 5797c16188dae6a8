package genealogy

import (
	"math/rand"

	"github.com/okian/gedgen/pkg/logger"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSeed seeds the random stream. Equal seeds and policies produce equal
// trees.
func WithSeed(seed int64) Option {
	return func(b *Builder) {
		b.seed = seed
		b.rng = nil
	}
}

// WithRand uses rng as the random stream instead of seeding a new one.
func WithRand(rng *rand.Rand) Option {
	return func(b *Builder) {
		if rng != nil {
			b.rng = rng
		}
	}
}
