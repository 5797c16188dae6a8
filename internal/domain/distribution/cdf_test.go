package distribution_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/gedgen/internal/domain/distribution"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a weighted list of names", t, func() {
		values := []distribution.Weighted[string]{
			{Value: "Jan", Weight: 50},
			{Value: "Anna", Weight: 30},
			{Value: "Piotr", Weight: 20},
		}

		Convey("When building a CDF", func() {
			cdf, err := distribution.Build(values)

			Convey("Then it should have one point per value in input order", func() {
				So(err, ShouldBeNil)
				So(cdf, ShouldHaveLength, 3)
				So(cdf.Values(), ShouldResemble, []string{"Jan", "Anna", "Piotr"})
			})

			Convey("And the cumulative shares should follow the weights", func() {
				So(cdf[0].P, ShouldAlmostEqual, 0.5, 1e-9)
				So(cdf[1].P, ShouldAlmostEqual, 0.8, 1e-9)
				So(cdf[2].P, ShouldAlmostEqual, 1.0, 1e-9)
				So(cdf.Share(1), ShouldAlmostEqual, 0.3, 1e-9)
			})
		})

		Convey("When a value has zero weight", func() {
			withZero := []distribution.Weighted[string]{values[0], {Value: "Zofia", Weight: 0}, values[1], values[2]}
			cdf, err := distribution.Build(withZero)

			Convey("Then it keeps its point but can never be drawn", func() {
				So(err, ShouldBeNil)
				So(cdf, ShouldHaveLength, 4)
				So(cdf[1].Value, ShouldEqual, "Zofia")
				So(cdf[1].P, ShouldEqual, cdf[0].P)
				So(cdf.Distinct(), ShouldEqual, 3)

				rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test stream
				for i := 0; i < 2000; i++ {
					v, err := cdf.Sample(rng)
					So(err, ShouldBeNil)
					So(v, ShouldNotEqual, "Zofia")
				}
			})
		})
	})

	Convey("Given malformed weighted lists", t, func() {
		Convey("When the list is empty", func() {
			_, err := distribution.Build[string](nil)
			So(errors.Is(err, distribution.ErrInvalidDistribution), ShouldBeTrue)
		})

		Convey("When every weight is zero", func() {
			_, err := distribution.Build([]distribution.Weighted[string]{{Value: "a"}, {Value: "b"}})
			So(errors.Is(err, distribution.ErrInvalidDistribution), ShouldBeTrue)
		})

		Convey("When a weight is negative", func() {
			_, err := distribution.Build([]distribution.Weighted[string]{{Value: "a", Weight: 3}, {Value: "b", Weight: -1}})
			So(errors.Is(err, distribution.ErrInvalidDistribution), ShouldBeTrue)
		})
	})
}

func TestBuildIsMonotonic(t *testing.T) {
	Convey("Given many random weighted lists", t, func() {
		rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test stream

		Convey("Then every CDF is non-decreasing and ends at one", func() {
			for round := 0; round < 200; round++ {
				n := 1 + rng.Intn(40)
				values := make([]distribution.Weighted[int], n)
				for i := range values {
					values[i] = distribution.Weighted[int]{Value: i, Weight: int64(rng.Intn(1000))}
				}
				values[rng.Intn(n)].Weight++

				cdf, err := distribution.Build(values)
				So(err, ShouldBeNil)
				for i := 1; i < len(cdf); i++ {
					So(cdf[i].P, ShouldBeGreaterThanOrEqualTo, cdf[i-1].P)
				}
				So(math.Abs(cdf.Last()-1.0), ShouldBeLessThan, 1e-9)
			}
		})
	})
}

func TestSample(t *testing.T) {
	Convey("Given a CDF with known weights", t, func() {
		cdf, err := distribution.Build([]distribution.Weighted[string]{
			{Value: "M", Weight: 48},
			{Value: "F", Weight: 48},
			{Value: "X", Weight: 4},
		})
		So(err, ShouldBeNil)

		Convey("When drawing many values with a fixed seed", func() {
			rng := rand.New(rand.NewSource(1234)) //nolint:gosec // deterministic test stream
			const draws = 20000
			counts := map[string]int{}
			for i := 0; i < draws; i++ {
				v, err := cdf.Sample(rng)
				So(err, ShouldBeNil)
				counts[v]++
			}

			Convey("Then frequencies converge to weight over total", func() {
				So(float64(counts["M"])/draws, ShouldAlmostEqual, 0.48, 0.02)
				So(float64(counts["F"])/draws, ShouldAlmostEqual, 0.48, 0.02)
				So(float64(counts["X"])/draws, ShouldAlmostEqual, 0.04, 0.01)
			})
		})

		Convey("When two generators share a seed", func() {
			a := rand.New(rand.NewSource(99)) //nolint:gosec // deterministic test stream
			b := rand.New(rand.NewSource(99)) //nolint:gosec // deterministic test stream

			Convey("Then they draw identical sequences", func() {
				for i := 0; i < 100; i++ {
					va, _ := cdf.Sample(a)
					vb, _ := cdf.Sample(b)
					So(va, ShouldEqual, vb)
				}
			})
		})
	})

	Convey("Given an empty CDF", t, func() {
		var cdf distribution.CDF[string]
		rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic test stream

		Convey("Then sampling reports an empty distribution", func() {
			_, err := cdf.Sample(rng)
			So(errors.Is(err, distribution.ErrEmptyDistribution), ShouldBeTrue)
		})
	})
}

func TestSampleExcluding(t *testing.T) {
	Convey("Given a CDF of surnames", t, func() {
		cdf, err := distribution.Build([]distribution.Weighted[string]{
			{Value: "Nowak", Weight: 60},
			{Value: "Kowalski", Weight: 30},
			{Value: "Wiśniewski", Weight: 10},
		})
		So(err, ShouldBeNil)
		rng := rand.New(rand.NewSource(5)) //nolint:gosec // deterministic test stream

		Convey("When excluding one value", func() {
			Convey("Then it is never returned", func() {
				for i := 0; i < 5000; i++ {
					v, err := cdf.SampleExcluding(rng, "Nowak")
					So(err, ShouldBeNil)
					So(v, ShouldNotEqual, "Nowak")
				}
			})

			Convey("And survivors keep their relative weights", func() {
				small := cdf.Without("Nowak")
				So(small, ShouldHaveLength, 2)
				So(small.Share(0)/small.Share(1), ShouldAlmostEqual, 3.0, 1e-9)
			})
		})

		Convey("When excluding every value", func() {
			_, err := cdf.SampleExcluding(rng, "Nowak", "Kowalski", "Wiśniewski")

			Convey("Then it reports an empty distribution", func() {
				So(errors.Is(err, distribution.ErrEmptyDistribution), ShouldBeTrue)
			})
		})
	})

	Convey("Given a single-entry CDF", t, func() {
		cdf, err := distribution.Build([]distribution.Weighted[string]{{Value: "Nowak", Weight: 1}})
		So(err, ShouldBeNil)
		rng := rand.New(rand.NewSource(5)) //nolint:gosec // deterministic test stream

		Convey("When excluding its only value", func() {
			_, err := cdf.SampleExcluding(rng, "Nowak")

			Convey("Then it fails instead of reusing the value", func() {
				So(errors.Is(err, distribution.ErrEmptyDistribution), ShouldBeTrue)
			})
		})
	})
}

func TestFromShares(t *testing.T) {
	Convey("Given shares that drift from one", t, func() {
		cdf, err := distribution.FromShares([]int{0, 1, 2}, []float64{0.1, 0.2, 0.3000001})

		Convey("Then the last point is exactly one", func() {
			So(err, ShouldBeNil)
			So(cdf.Last(), ShouldEqual, 1.0)
			So(cdf[0].P, ShouldAlmostEqual, 1.0/6, 1e-6)
		})
	})

	Convey("Given mismatched inputs", t, func() {
		_, err := distribution.FromShares([]int{0, 1}, []float64{1})
		So(errors.Is(err, distribution.ErrInvalidDistribution), ShouldBeTrue)
	})
}
