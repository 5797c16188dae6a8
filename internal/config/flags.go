package config

import (
	"github.com/spf13/pflag"
)

// FlagConfig names the flag that points at a YAML file. It selects the file
// layer and is not itself a config key.
const FlagConfig = "config"

// RegisterFlags defines one flag per config key on fs, named like the key
// with dashes, defaulting to the values of New().
func RegisterFlags(fs *pflag.FlagSet) {
	d := New()

	fs.StringP(FlagConfig, "c", "", "YAML configuration file (overrides $"+EnvConfigFile+")")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "log format: text or json")
	fs.StringP("output", "o", d.Output, `GEDCOM output file, "-" for stdout`)

	fs.IntP("target-population", "n", d.TargetPopulation, "minimum number of people to generate")
	fs.IntP("num-generations", "g", d.Generations, "number of generations along the trunk")
	fs.Int("second-name-chance", d.SecondNameChance, "percent chance of a second given name")
	fs.Int64P("seed", "s", d.Seed, "random seed, 0 derives one from the clock")
	fs.Int("trunk-width", d.TrunkWidth, "expected children in trunk families, 0 derives it")
	fs.Int("expected-children", d.ExpectedChildren, "expected children in sub-branch families")
	fs.String("final-date", d.FinalDate, "latest date of the tree ("+DateLayout+")")
	fs.Int("generation-span-years", d.GenerationSpan, "years between generations")

	fs.Bool("birth-events", d.BirthEvents, "add dated birth events")
	fs.Bool("maiden-names", d.MaidenNames, "give married mothers a maiden name")
	fs.Bool("uid-tags", d.UIDTags, "add _UID tags")
	fs.Bool("title-case", d.TitleCase, "title-case names read from the tables")
	fs.String("submitter", d.Submitter, "submitter name")
	fs.String("copyright", d.Copyright, "copyright line of the header")
	fs.String("metrics-file", d.MetricsFile, "write Prometheus metrics to this textfile")

	fs.String("firstnames-male", d.FirstNamesMale, "male given names CSV (empty = embedded)")
	fs.String("firstnames-female", d.FirstNamesFemale, "female given names CSV (empty = embedded)")
	fs.String("lastnames-male", d.LastNamesMale, "male surnames CSV (empty = embedded)")
	fs.String("lastnames-female", d.LastNamesFemale, "female surnames CSV (empty = embedded)")
	fs.Int("given-name-column", d.GivenNameColumn, "name column of the given name tables")
	fs.Int("given-weight-column", d.GivenWeightColumn, "weight column of the given name tables")
	fs.Int("surname-column", d.SurnameColumn, "name column of the surname tables")
	fs.Int("surname-weight-column", d.SurnameWeightColumn, "weight column of the surname tables")
}
