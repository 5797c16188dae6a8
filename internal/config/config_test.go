package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/gedgen/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Output, convey.ShouldEqual, "-")
			convey.So(cfg.ToStdout(), convey.ShouldBeTrue)
			convey.So(cfg.TargetPopulation, convey.ShouldEqual, 1000)
			convey.So(cfg.Generations, convey.ShouldEqual, 10)
			convey.So(cfg.SecondNameChance, convey.ShouldEqual, 7)
			convey.So(cfg.ExpectedChildren, convey.ShouldEqual, 3)
			convey.So(cfg.GivenWeightColumn, convey.ShouldEqual, 2)
			convey.So(cfg.SurnameWeightColumn, convey.ShouldEqual, 1)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the final date parses", func() {
			final, err := cfg.FinalTime()
			convey.So(err, convey.ShouldBeNil)
			convey.So(final, convey.ShouldEqual, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a single bad setting", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty output", func(c *config.Config) { c.Output = " " }},
			{"zero population", func(c *config.Config) { c.TargetPopulation = 0 }},
			{"zero generations", func(c *config.Config) { c.Generations = 0 }},
			{"chance above hundred", func(c *config.Config) { c.SecondNameChance = 101 }},
			{"negative trunk width", func(c *config.Config) { c.TrunkWidth = -1 }},
			{"negative expectation", func(c *config.Config) { c.ExpectedChildren = -2 }},
			{"negative span", func(c *config.Config) { c.GenerationSpan = -35 }},
			{"negative column", func(c *config.Config) { c.SurnameColumn = -1 }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"unparseable final day", func(c *config.Config) { c.FinalDate = "01/01/2020" }},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
