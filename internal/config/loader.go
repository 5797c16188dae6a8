package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Environment settings.
const (
	EnvPrefix     = "GEDGEN_"
	EnvConfigFile = "GEDGEN_CONFIG"
)

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	file  string
	flags *pflag.FlagSet
}

// WithFile reads the YAML file at path instead of $GEDGEN_CONFIG.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// WithFlags layers the changed flags of fs on top of everything else.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(o *loadOptions) {
		o.flags = fs
	}
}

// Load builds a Config by layering defaults, optional file, env vars and
// flags. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or GEDGEN_CONFIG
//  3. env (prefix GEDGEN_)
//  4. flags explicitly set on the command line
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := loadOptions{file: os.Getenv(EnvConfigFile)}
	for _, opt := range opts {
		opt(&o)
	}

	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if o.file != "" {
		if err := k.Load(file.Provider(o.file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, o.file, err)
		}
	}

	// Environment variables: GEDGEN_OUTPUT, GEDGEN_TARGET_POPULATION, ...
	// Map env keys like GEDGEN_NUM_GENERATIONS -> num_generations (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Flags: only those the user set, with dashes mapped to underscores.
	if o.flags != nil {
		flagProvider := posflag.ProviderWithFlag(o.flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == FlagConfig {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(o.flags, f)
		})
		if err := k.Load(flagProvider, nil); err != nil {
			return nil, fmt.Errorf("%w: flags: %w", ErrLoadConfig, err)
		}
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
