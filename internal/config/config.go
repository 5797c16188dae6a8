// Package config defines generator configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat snake_case; the same names are used in YAML, env and flags.
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of FinalDate.
const DateLayout = "2006-01-02"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// Output is the GEDCOM file to write; "-" writes to stdout.
	Output string `koanf:"output" yaml:"output"`

	// TargetPopulation is the minimum number of people to generate.
	TargetPopulation int `koanf:"target_population" yaml:"target_population"`

	// Generations is the depth of the trunk.
	Generations int `koanf:"num_generations" yaml:"num_generations"`

	// SecondNameChance is the percent chance of a second given name.
	SecondNameChance int `koanf:"second_name_chance" yaml:"second_name_chance"`

	// Seed of the random stream; zero derives one from the clock.
	Seed int64 `koanf:"seed" yaml:"seed"`

	// TrunkWidth is the expected child count of trunk families; zero derives
	// it from the target and the generation count.
	TrunkWidth int `koanf:"trunk_width" yaml:"trunk_width"`

	// ExpectedChildren is the expected child count of sub-branch families.
	ExpectedChildren int `koanf:"expected_children" yaml:"expected_children"`

	// FinalDate anchors birth and change dates, formatted as DateLayout.
	FinalDate string `koanf:"final_date" yaml:"final_date"`

	// GenerationSpan is the number of years between generations.
	GenerationSpan int `koanf:"generation_span_years" yaml:"generation_span_years"`

	BirthEvents bool `koanf:"birth_events" yaml:"birth_events"`
	MaidenNames bool `koanf:"maiden_names" yaml:"maiden_names"`
	UIDTags     bool `koanf:"uid_tags" yaml:"uid_tags"`
	TitleCase   bool `koanf:"title_case" yaml:"title_case"`

	// Submitter is the name on the submitter record.
	Submitter string `koanf:"submitter" yaml:"submitter"`

	// Copyright, when set, is written to the header.
	Copyright string `koanf:"copyright" yaml:"copyright"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file" yaml:"metrics_file"`

	// Name table paths; empty selects the embedded default.
	FirstNamesMale   string `koanf:"firstnames_male" yaml:"firstnames_male"`
	FirstNamesFemale string `koanf:"firstnames_female" yaml:"firstnames_female"`
	LastNamesMale    string `koanf:"lastnames_male" yaml:"lastnames_male"`
	LastNamesFemale  string `koanf:"lastnames_female" yaml:"lastnames_female"`

	// Zero based CSV columns of the name tables.
	GivenNameColumn     int `koanf:"given_name_column" yaml:"given_name_column"`
	GivenWeightColumn   int `koanf:"given_weight_column" yaml:"given_weight_column"`
	SurnameColumn       int `koanf:"surname_column" yaml:"surname_column"`
	SurnameWeightColumn int `koanf:"surname_weight_column" yaml:"surname_weight_column"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Output:              "-",
		TargetPopulation:    1000,
		Generations:         10,
		SecondNameChance:    7,
		ExpectedChildren:    3,
		FinalDate:           "2020-01-01",
		GenerationSpan:      35,
		BirthEvents:         true,
		MaidenNames:         true,
		TitleCase:           true,
		Submitter:           "Submitter",
		GivenNameColumn:     0,
		GivenWeightColumn:   2,
		SurnameColumn:       0,
		SurnameWeightColumn: 1,
	}
}

// FinalTime parses FinalDate.
func (c *Config) FinalTime() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.FinalDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: final_date %q: %w", ErrInvalidConfig, c.FinalDate, err)
	}
	return t, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Output) == "":
		return fmt.Errorf("%w: output must not be empty", ErrInvalidConfig)
	case c.TargetPopulation < 1:
		return fmt.Errorf("%w: target_population must be positive, got %d", ErrInvalidConfig, c.TargetPopulation)
	case c.Generations < 1:
		return fmt.Errorf("%w: num_generations must be positive, got %d", ErrInvalidConfig, c.Generations)
	case c.SecondNameChance < 0 || c.SecondNameChance > 100:
		return fmt.Errorf("%w: second_name_chance must be within 0..100, got %d", ErrInvalidConfig, c.SecondNameChance)
	case c.TrunkWidth < 0:
		return fmt.Errorf("%w: trunk_width must not be negative, got %d", ErrInvalidConfig, c.TrunkWidth)
	case c.ExpectedChildren < 0:
		return fmt.Errorf("%w: expected_children must not be negative, got %d", ErrInvalidConfig, c.ExpectedChildren)
	case c.GenerationSpan < 0:
		return fmt.Errorf("%w: generation_span_years must not be negative, got %d", ErrInvalidConfig, c.GenerationSpan)
	case c.GivenNameColumn < 0 || c.GivenWeightColumn < 0 || c.SurnameColumn < 0 || c.SurnameWeightColumn < 0:
		return fmt.Errorf("%w: table columns must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := c.FinalTime(); err != nil {
		return err
	}
	return nil
}

// ToStdout reports whether output goes to stdout.
func (c *Config) ToStdout() bool {
	return c.Output == "-"
}
