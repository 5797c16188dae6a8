package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	service "github.com/okian/gedgen/internal/app"
	"github.com/okian/gedgen/internal/adapters/names"
	"github.com/okian/gedgen/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func smallConfig() *config.Config {
	cfg := config.New()
	cfg.TargetPopulation = 120
	cfg.Generations = 4
	cfg.Seed = 42
	cfg.UIDTags = true
	return cfg
}

func TestServiceRun(t *testing.T) {
	Convey("Given a service writing to a file", t, func() {
		dir := t.TempDir()
		cfg := smallConfig()
		cfg.Output = filepath.Join(dir, "tree.ged")
		cfg.MetricsFile = filepath.Join(dir, "gedgen.prom")
		cfg.Submitter = "Jan Kowalski"
		cfg.Copyright = "Rodzina Kowalskich"

		svc := service.New(cfg, service.WithVersion("1.2.3"))

		Convey("When the pipeline runs", func() {
			res, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			raw, err := os.ReadFile(cfg.Output)
			So(err, ShouldBeNil)
			out := string(raw)

			Convey("Then the tree reaches the target", func() {
				So(res.Seed, ShouldEqual, int64(42))
				So(res.Stats.People, ShouldBeGreaterThanOrEqualTo, cfg.TargetPopulation)
				So(res.Stats.Trunk, ShouldHaveLength, cfg.Generations)
				So(res.Bytes, ShouldEqual, int64(len(raw)))
			})

			Convey("Then the file is a complete GEDCOM transmission", func() {
				So(out, ShouldStartWith, "0 HEAD\n")
				So(out, ShouldEndWith, "0 TRLR\n")
				So(strings.Count(out, "0 HEAD\n"), ShouldEqual, 1)
				So(strings.Count(out, "0 TRLR\n"), ShouldEqual, 1)
				So(out, ShouldContainSubstring, "1 SOUR GEDGEN\n2 VERS 1.2.3\n2 NAME gedgen\n")
				So(out, ShouldContainSubstring, "1 DATE 01 JAN 2020\n")
				So(out, ShouldContainSubstring, "1 FILE tree.ged\n1 COPR Rodzina Kowalskich\n")
				So(out, ShouldContainSubstring, "0 @SUBM@ SUBM\n1 NAME Jan Kowalski\n")
				So(strings.Count(out, " INDI\n"), ShouldEqual, res.Stats.People)
				So(strings.Count(out, " FAM\n"), ShouldEqual, res.Stats.Families)
				So(strings.Count(out, "1 _UID "), ShouldEqual, res.Stats.People)
			})

			Convey("Then the metrics textfile holds the run summary", func() {
				prom, err := os.ReadFile(cfg.MetricsFile)
				So(err, ShouldBeNil)
				So(string(prom), ShouldContainSubstring, "gedgen_generator_last_run_success 1")
				So(string(prom), ShouldContainSubstring, "gedgen_generator_last_run_seed 42")
			})
		})
	})

	Convey("Given a service writing to stdout", t, func() {
		run := func() string {
			var buf bytes.Buffer
			svc := service.New(smallConfig(), service.WithStdout(&buf))
			_, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			return buf.String()
		}

		Convey("When it runs twice with the same seed", func() {
			first := run()
			second := run()

			Convey("Then both outputs are identical", func() {
				So(first, ShouldNotBeEmpty)
				So(second, ShouldEqual, first)
			})

			Convey("Then the header carries no file name", func() {
				So(first, ShouldNotContainSubstring, "1 FILE")
			})
		})
	})

	Convey("Given three generations and a target of ten", t, func() {
		for seed := int64(1); seed <= 50; seed++ {
			var buf bytes.Buffer
			cfg := config.New()
			cfg.Generations = 3
			cfg.TargetPopulation = 10
			cfg.TrunkWidth = 3
			cfg.Seed = seed

			res, err := service.New(cfg, service.WithStdout(&buf)).Run(context.Background())
			So(err, ShouldBeNil)

			So(res.Stats.Trunk, ShouldHaveLength, 3)
			So(res.Stats.People, ShouldBeGreaterThanOrEqualTo, 10)

			out := buf.String()
			So(strings.Count(out, "0 HEAD\n"), ShouldEqual, 1)
			So(strings.Count(out, "0 TRLR\n"), ShouldEqual, 1)

			lines := strings.Split(out, "\n")
			for i, line := range lines {
				if strings.HasPrefix(line, "1 FAMC @") {
					So(i+1, ShouldBeLessThan, len(lines))
					So(lines[i+1], ShouldStartWith, "2 PEDI ")
				}
			}
		}
	})

	Convey("Given a service with a missing name table", t, func() {
		dir := t.TempDir()
		cfg := smallConfig()
		cfg.Output = filepath.Join(dir, "tree.ged")
		cfg.MetricsFile = filepath.Join(dir, "gedgen.prom")
		cfg.LastNamesFemale = filepath.Join(dir, "missing.csv")

		Convey("When the pipeline runs", func() {
			_, err := service.New(cfg).Run(context.Background())

			Convey("Then the load error is returned", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})

			Convey("Then no output is created", func() {
				_, statErr := os.Stat(cfg.Output)
				So(errors.Is(statErr, os.ErrNotExist), ShouldBeTrue)
			})

			Convey("Then the failure is recorded", func() {
				prom, rerr := os.ReadFile(cfg.MetricsFile)
				So(rerr, ShouldBeNil)
				So(string(prom), ShouldContainSubstring, "gedgen_generator_last_run_success 0")
			})
		})
	})

	Convey("Given a service with an empty name table", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "imiona.csv")
		So(os.WriteFile(path, []byte("IMIĘ PIERWSZE,PŁEĆ,LICZBA WYSTĄPIEŃ\n"), 0o600), ShouldBeNil)

		cfg := smallConfig()
		cfg.FirstNamesFemale = path

		Convey("When the pipeline runs", func() {
			_, err := service.New(cfg, service.WithStdout(&bytes.Buffer{})).Run(context.Background())

			Convey("Then the empty table is reported", func() {
				So(errors.Is(err, names.ErrEmptyTable), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service whose output directory does not exist", t, func() {
		cfg := smallConfig()
		cfg.Output = filepath.Join(t.TempDir(), "missing", "tree.ged")

		Convey("When the pipeline runs", func() {
			_, err := service.New(cfg).Run(context.Background())

			Convey("Then the create error is returned", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})

	Convey("Given an invalid configuration", t, func() {
		cfg := smallConfig()
		cfg.Generations = 0

		Convey("When the pipeline runs", func() {
			_, err := service.New(cfg).Run(context.Background())

			Convey("Then validation fails", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
