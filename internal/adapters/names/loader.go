// Package names loads weighted name tables from CSV files, falling back to
// small embedded tables when no file is configured.
package names

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/gedgen/internal/domain/distribution"
	"github.com/okian/gedgen/pkg/logger"
	"github.com/okian/gedgen/pkg/metrics"
)

// Table names one of the four reference tables.
type Table string

// Known tables. Each doubles as the base name of its embedded default.
const (
	FirstNamesMale   Table = "firstnames_male"
	FirstNamesFemale Table = "firstnames_female"
	LastNamesMale    Table = "lastnames_male"
	LastNamesFemale  Table = "lastnames_female"
)

// Source says where a table comes from. An empty Path selects the embedded
// default. Columns are zero based; the first row is a header.
type Source struct {
	Table        Table
	Path         string
	NameColumn   int
	WeightColumn int
}

// Set holds the four loaded tables.
type Set struct {
	FirstNamesMale   []distribution.Weighted[string]
	FirstNamesFemale []distribution.Weighted[string]
	LastNamesMale    []distribution.Weighted[string]
	LastNamesFemale  []distribution.Weighted[string]
}

func (s *Set) slot(t Table) *[]distribution.Weighted[string] {
	switch t {
	case FirstNamesMale:
		return &s.FirstNamesMale
	case FirstNamesFemale:
		return &s.FirstNamesFemale
	case LastNamesMale:
		return &s.LastNamesMale
	case LastNamesFemale:
		return &s.LastNamesFemale
	}
	return nil
}

// Loader reads name tables.
type Loader struct {
	titleCase bool
	logger    logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTitleCase turns "KOWALSKA-NOWAK" into "Kowalska-Nowak" while loading.
func WithTitleCase(enabled bool) Option {
	return func(l *Loader) {
		l.titleCase = enabled
	}
}

// WithLogger sets the logger for the loader.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader returns a loader that title-cases names unless told otherwise.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{titleCase: true}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Nop()
	}
	return l
}

// LoadAll loads every source concurrently. Each result lands in the slot of
// its table, so the set does not depend on which load finishes first.
func (l *Loader) LoadAll(ctx context.Context, sources []Source) (*Set, error) {
	set := &Set{}
	for _, src := range sources {
		if set.slot(src.Table) == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, src.Table)
		}
	}

	results := make([][]distribution.Weighted[string], len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			rows, err := l.Load(gctx, src)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, src := range sources {
		*set.slot(src.Table) = results[i]
	}
	return set, nil
}

// Load reads a single table.
func (l *Loader) Load(ctx context.Context, src Source) ([]distribution.Weighted[string], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	var (
		r    io.ReadCloser
		name string
		err  error
	)
	if src.Path == "" {
		name = "embedded:" + string(src.Table)
		r, err = openDefault(src.Table)
	} else {
		name = src.Path
		r, err = os.Open(src.Path)
	}
	if err != nil {
		metrics.RecordErrorByComponent("names", "open")
		return nil, fmt.Errorf("open %s table: %w", src.Table, err)
	}
	defer r.Close()

	rows, err := Read(r, name, src.NameColumn, src.WeightColumn, l.titleCase)
	if err != nil {
		metrics.RecordErrorByComponent("names", "read")
		return nil, err
	}

	metrics.UpdateNameTableRows(string(src.Table), len(rows))
	metrics.RecordNameTableLoad(string(src.Table), time.Since(start).Seconds())
	l.logger.Debug(ctx, "name table loaded",
		logger.String("table", string(src.Table)),
		logger.String("source", name),
		logger.Int("rows", len(rows)),
	)
	return rows, nil
}

// Read parses a weighted name list from CSV. The first row is skipped as a
// header; name reports file and line in errors.
func Read(r io.Reader, name string, nameColumn, weightColumn int, titleCase bool) ([]distribution.Weighted[string], error) {
	if nameColumn < 0 || weightColumn < 0 {
		return nil, fmt.Errorf("%s: %w: negative column", name, ErrMalformedRow)
	}

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var caser cases.Caser
	if titleCase {
		caser = cases.Title(language.Polish)
	}

	var rows []distribution.Weighted[string]
	for header := true; ; header = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", name, ErrMalformedRow, err)
		}
		if header {
			continue
		}

		line, _ := cr.FieldPos(0)
		if nameColumn >= len(rec) || weightColumn >= len(rec) {
			return nil, fmt.Errorf("%s:%d: %w: %d columns", name, line, ErrMalformedRow, len(rec))
		}
		weight, err := strconv.ParseInt(strings.TrimSpace(rec[weightColumn]), 10, 64)
		if err != nil || weight < 0 {
			return nil, fmt.Errorf("%s:%d: %w: weight %q", name, line, ErrMalformedRow, rec[weightColumn])
		}

		value := strings.TrimSpace(rec[nameColumn])
		if titleCase {
			value = caser.String(value)
		}
		rows = append(rows, distribution.Weighted[string]{Value: value, Weight: weight})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
	}
	return rows, nil
}
