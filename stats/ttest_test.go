package stats

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWelchTTestIdenticalSamples(t *testing.T) {
	Convey("Two identically-distributed samples yield t=0 and p=1", t, func() {
		tStat, df, p := WelchTTest(5.0, 5.0, 1.0, 1.0, 30, 30)
		So(tStat, ShouldEqual, 0)
		So(df, ShouldBeGreaterThan, 0)
		So(p, ShouldAlmostEqual, 1, 1e-9)
	})
}

func TestWelchTTestClearlyDifferentSamples(t *testing.T) {
	Convey("A large, confident mean difference yields a small p-value", t, func() {
		tStat, _, p := WelchTTest(10.0, 0.0, 1.0, 1.0, 100, 100)
		So(math.Abs(tStat), ShouldBeGreaterThan, 4)
		So(p, ShouldBeLessThan, 0.001)
	})
}

func TestWelchTTestZeroVariance(t *testing.T) {
	Convey("Equal constant samples have zero standard error and are reported as indistinguishable", t, func() {
		tStat, _, p := WelchTTest(3.0, 3.0, 0, 0, 10, 10)
		So(tStat, ShouldEqual, 0)
		So(p, ShouldEqual, 1)
	})
}

func TestStudentTCDF(t *testing.T) {
	// studentTCDF is only ever called from WelchTTest with math.Abs(tStat), so
	// it is only specified (and tested) for t >= 0.
	Convey("At t=0 the CDF is exactly one half", t, func() {
		So(studentTCDF(0, 10), ShouldAlmostEqual, 0.5, 1e-9)
	})

	Convey("The CDF is monotonically increasing in t for t >= 0", t, func() {
		So(studentTCDF(1, 10), ShouldBeGreaterThan, studentTCDF(0, 10))
		So(studentTCDF(5, 10), ShouldBeGreaterThan, studentTCDF(1, 10))
		So(studentTCDF(5, 10), ShouldBeLessThan, 1)
	})
}
