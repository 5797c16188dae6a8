package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestCommandLine(t *testing.T) {
	convey.Convey("Given the gedgen command line", t, func() {
		var stdout, stderr bytes.Buffer

		convey.Convey("When printing the version", func() {
			code := run([]string{"version"}, &stdout, &stderr)

			convey.Convey("Then it prints the build version", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stdout.String(), convey.ShouldEqual, "gedgen dev\n")
			})
		})

		convey.Convey("When dumping the configuration with flags set", func() {
			code := run([]string{"config", "--seed", "9", "-n", "50", "--uid-tags"}, &stdout, &stderr)

			convey.Convey("Then the flags show up in the YAML", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "seed: 9\n")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "target_population: 50\n")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "uid_tags: true\n")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "num_generations: 10\n")
			})
		})

		convey.Convey("When generating to stdout", func() {
			code := run([]string{"-n", "40", "-g", "3", "-s", "7"}, &stdout, &stderr)

			convey.Convey("Then GEDCOM goes to stdout and logs to stderr", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stdout.String(), convey.ShouldStartWith, "0 HEAD\n")
				convey.So(stdout.String(), convey.ShouldEndWith, "0 TRLR\n")
				convey.So(stderr.String(), convey.ShouldContainSubstring, "run finished")
				convey.So(stderr.String(), convey.ShouldNotContainSubstring, "0 HEAD")
			})
		})

		convey.Convey("When generating to a file with JSON logs", func() {
			out := filepath.Join(t.TempDir(), "rodzina.ged")
			code := run([]string{"-n", "40", "-g", "3", "-s", "7", "-o", out, "--log-format", "json"}, &stdout, &stderr)

			convey.Convey("Then the file is written", func() {
				convey.So(code, convey.ShouldEqual, 0)
				raw, err := os.ReadFile(out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, "1 FILE rodzina.ged\n")
				convey.So(stdout.Len(), convey.ShouldEqual, 0)
				convey.So(stderr.String(), convey.ShouldContainSubstring, `"msg":"run finished"`)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			code := run([]string{"--num-generations", "0"}, &stdout, &stderr)

			convey.Convey("Then it fails with status 1", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "failed to load config")
				convey.So(stdout.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When an unknown flag is given", func() {
			code := run([]string{"--colour"}, &stdout, &stderr)

			convey.Convey("Then it fails with status 1", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "unknown flag")
			})
		})
	})
}
