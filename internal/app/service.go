// Package service wires the generator together: it loads the name tables,
// grows a tree, stamps identifiers and writes the GEDCOM file.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/gedgen/internal/adapters/gedcom"
	"github.com/okian/gedgen/internal/adapters/names"
	"github.com/okian/gedgen/internal/config"
	"github.com/okian/gedgen/internal/domain/distribution"
	"github.com/okian/gedgen/internal/domain/genealogy"
	"github.com/okian/gedgen/internal/domain/model"
	"github.com/okian/gedgen/pkg/logger"
	"github.com/okian/gedgen/pkg/metrics"
)

// ProgramName is the display name written to the GEDCOM header.
const ProgramName = "gedgen"

// Result describes a finished run.
type Result struct {
	Seed   int64
	Stats  genealogy.Stats
	Bytes  int64
	Output string
}

// Service runs the generation pipeline for one configuration.
type Service struct {
	cfg     *config.Config
	logger  logger.Logger
	stdout  io.Writer
	version string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStdout replaces os.Stdout as the destination of output "-".
func WithStdout(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.stdout = w
		}
	}
}

// WithVersion sets the program version written to the header.
func WithVersion(v string) Option {
	return func(s *Service) {
		s.version = v
	}
}

// New constructs a Service for cfg.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		logger:  logger.Nop(),
		stdout:  os.Stdout,
		version: "dev",
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes the pipeline once. The run summary is recorded in metrics
// and, when configured, flushed to the metrics textfile even on failure.
func (s *Service) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := s.run(ctx)

	metrics.UpdateLastRun(time.Now().Unix(), res.Seed, res.Bytes, err == nil)
	if s.cfg.MetricsFile != "" {
		if werr := metrics.WriteTextfile(s.cfg.MetricsFile); werr != nil {
			if err == nil {
				return res, werr
			}
			s.logger.Warn(ctx, "metrics textfile not written", logger.Error(werr))
		}
	}
	if err != nil {
		return res, err
	}

	s.logger.Info(ctx, "run finished",
		logger.String("output", res.Output),
		logger.Int64("bytes", res.Bytes),
		logger.Int64("seed", res.Seed),
		logger.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context) (Result, error) {
	res := Result{Output: s.cfg.Output}

	if err := s.cfg.Validate(); err != nil {
		return res, err
	}
	final, err := s.cfg.FinalTime()
	if err != nil {
		return res, err
	}

	loader := names.NewLoader(
		names.WithTitleCase(s.cfg.TitleCase),
		names.WithLogger(s.logger.Named("names")),
	)
	set, err := loader.LoadAll(ctx, s.sources())
	if err != nil {
		return res, fmt.Errorf("load name tables: %w", err)
	}
	s.logger.Info(ctx, "name tables loaded",
		logger.Int("male_given", len(set.FirstNamesMale)),
		logger.Int("female_given", len(set.FirstNamesFemale)),
		logger.Int("male_surnames", len(set.LastNamesMale)),
		logger.Int("female_surnames", len(set.LastNamesFemale)),
	)

	policy, err := s.policy(set, final)
	if err != nil {
		return res, err
	}

	opts := []genealogy.Option{genealogy.WithLogger(s.logger.Named("genealogy"))}
	if s.cfg.Seed != 0 {
		opts = append(opts, genealogy.WithSeed(s.cfg.Seed))
	}
	builder, err := genealogy.NewBuilder(policy, opts...)
	if err != nil {
		return res, err
	}
	res.Seed = builder.Seed()
	s.logger.Info(ctx, "generating tree",
		logger.Int64("seed", res.Seed),
		logger.Int("target_population", policy.TargetPopulation),
		logger.Int("generations", policy.Generations),
	)

	tree, stats, err := builder.Build(ctx)
	if err != nil {
		return res, fmt.Errorf("build tree: %w", err)
	}
	res.Stats = stats

	model.AssignIdentifiers(tree)
	if err := tree.Verify(); err != nil {
		return res, err
	}

	n, err := s.write(ctx, tree, final)
	res.Bytes = n
	if err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) sources() []names.Source {
	c := s.cfg
	return []names.Source{
		{Table: names.FirstNamesMale, Path: c.FirstNamesMale, NameColumn: c.GivenNameColumn, WeightColumn: c.GivenWeightColumn},
		{Table: names.FirstNamesFemale, Path: c.FirstNamesFemale, NameColumn: c.GivenNameColumn, WeightColumn: c.GivenWeightColumn},
		{Table: names.LastNamesMale, Path: c.LastNamesMale, NameColumn: c.SurnameColumn, WeightColumn: c.SurnameWeightColumn},
		{Table: names.LastNamesFemale, Path: c.LastNamesFemale, NameColumn: c.SurnameColumn, WeightColumn: c.SurnameWeightColumn},
	}
}

func (s *Service) policy(set *names.Set, final time.Time) (genealogy.Policy, error) {
	build := func(t names.Table, rows []distribution.Weighted[string]) (distribution.CDF[string], error) {
		cdf, err := distribution.Build(rows)
		if err != nil {
			return nil, fmt.Errorf("%s table: %w", t, err)
		}
		return cdf, nil
	}

	p := genealogy.Policy{
		TargetPopulation: s.cfg.TargetPopulation,
		Generations:      s.cfg.Generations,
		TrunkWidth:       s.cfg.TrunkWidth,
		ExpectedChildren: s.cfg.ExpectedChildren,
		SecondNameChance: s.cfg.SecondNameChance,
		FinalDate:        final,
		GenerationSpan:   s.cfg.GenerationSpan,
		BirthEvents:      s.cfg.BirthEvents,
		MaidenNames:      s.cfg.MaidenNames,
		UIDs:             s.cfg.UIDTags,
	}

	var err error
	if p.FirstNamesMale, err = build(names.FirstNamesMale, set.FirstNamesMale); err != nil {
		return p, err
	}
	if p.FirstNamesFemale, err = build(names.FirstNamesFemale, set.FirstNamesFemale); err != nil {
		return p, err
	}
	if p.LastNamesMale, err = build(names.LastNamesMale, set.LastNamesMale); err != nil {
		return p, err
	}
	if p.LastNamesFemale, err = build(names.LastNamesFemale, set.LastNamesFemale); err != nil {
		return p, err
	}
	return p, nil
}

// write serializes tree to the configured output and returns the number of
// bytes written.
func (s *Service) write(ctx context.Context, tree *model.Tree, final time.Time) (int64, error) {
	opts := []gedcom.Option{
		gedcom.WithProgram(gedcom.DefaultProgram, ProgramName, s.version),
		gedcom.WithSubmitter(s.cfg.Submitter),
		gedcom.WithDate(final),
		gedcom.WithCopyright(s.cfg.Copyright),
	}

	var (
		enc *gedcom.Encoder
		err error
	)
	if s.cfg.ToStdout() {
		enc = gedcom.NewEncoder(s.stdout, opts...)
		err = enc.Encode(tree)
	} else {
		enc, err = gedcom.EncodeFile(s.cfg.Output, tree, opts...)
	}
	if err != nil {
		metrics.RecordErrorByComponent("app", "write_output")
		if enc == nil {
			return 0, err
		}
		return enc.Written(), err
	}
	counts := enc.Counts()
	s.logger.Info(ctx, "gedcom written",
		logger.String("output", s.cfg.Output),
		logger.Int("individuals", counts[gedcom.KindIndividual]),
		logger.Int("families", counts[gedcom.KindFamily]),
		logger.Int64("bytes", enc.Written()),
	)
	return enc.Written(), nil
}
