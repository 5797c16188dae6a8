package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// value reads the current value of a single counter or gauge.
func value(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})

			Convey("And metrics land on the custom registry with the constant labels", func() {
				manager.peopleGenerated.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_people_generated_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "gedgen")
				So(manager.subsystem, ShouldEqual, "generator")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording generation metrics", func() {
			before := value(globalManager.peopleGenerated)
			RecordPeopleGenerated(10)
			RecordFamilyGenerated(PhaseTrunk)
			RecordFamilyGenerated(PhaseSpouse)
			RecordFamilyGenerated(PhaseSpouse)
			UpdateTreeSize(10, 3)
			UpdateTrunkGenerations(4)

			Convey("Then counters and gauges reflect the values", func() {
				So(value(globalManager.peopleGenerated)-before, ShouldEqual, 10)
				So(value(globalManager.familiesGenerated.WithLabelValues(PhaseSpouse)), ShouldBeGreaterThanOrEqualTo, 2)
				So(value(globalManager.treePeople), ShouldEqual, 10)
				So(value(globalManager.treeFamilies), ShouldEqual, 3)
				So(value(globalManager.trunkGenerations), ShouldEqual, 4)
			})
		})

		Convey("When recording the other metric kinds", func() {
			So(func() {
				RecordForcedMaleChild()
				RecordExpansionPass()
				RecordSaturatedBuild()
				RecordGenerationDuration(0.25)
				UpdateTargetPopulation(1000)
				UpdateNameTableRows("firstnames_male", 12)
				RecordNameTableLoad("firstnames_male", 0.001)
				RecordRecordsWritten("INDI", 10)
				RecordSerializeDuration(0.01)
				RecordErrorByComponent("names", "malformed_row")
				UpdateLastRun(1700000000, 42, 1024, true)
				UpdateLastRun(1700000001, 43, 0, false)
			}, ShouldNotPanic)

			Convey("Then the last run reflects the failure", func() {
				So(value(globalManager.lastRunSuccessState), ShouldEqual, 0)
				So(value(globalManager.lastRunSeed), ShouldEqual, 43)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		UpdateTreeSize(7, 2)
		dir := t.TempDir()

		Convey("When writing them to a textfile", func() {
			path := filepath.Join(dir, "gedgen.prom")
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(strings.Contains(string(data), "gedgen_generator_tree_people 7"), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "gedgen.prom"))

			Convey("Then a write error is returned", func() {
				So(errors.Is(err, ErrWriteFailed), ShouldBeTrue)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordPeopleGenerated(1)
						RecordFamilyGenerated(PhaseParents)
						UpdateTreeSize(j, j/2)
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(value(globalManager.familiesGenerated.WithLabelValues(PhaseParents)), ShouldBeGreaterThanOrEqualTo, 1000)
			})
		})
	})
}
