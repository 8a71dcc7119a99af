package phgnuct

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestUtilityFn(t *testing.T) {
	Convey("GUBS utility is exp(risk_factor*cost)", t, func() {
		u := NewUtilityFn(-0.1)
		So(u(0), ShouldEqual, 1)
		So(u(10), ShouldAlmostEqual, math.Exp(-1), 1e-9)
	})
}

func TestUCBTerm(t *testing.T) {
	Convey("An unvisited arm scores +Inf", t, func() {
		So(math.IsInf(UCBTerm(0, 0, 5, 1.0), 1), ShouldBeTrue)
	})

	Convey("A visited arm adds the exploration bonus", t, func() {
		got := UCBTerm(0.5, 4, 16, 2.0)
		want := 0.5 + 2.0*math.Sqrt(math.Log(16)/4)
		So(got, ShouldAlmostEqual, want, 1e-9)
	})
}

func TestArgmaxTies(t *testing.T) {
	Convey("Argmax returns the sole maximal index when unambiguous", t, func() {
		rng := rand.New(rand.NewSource(1))
		So(ArgmaxTies([]float64{1, 5, 3}, rng), ShouldEqual, 1)
	})

	Convey("Argmax breaks ties among maximal indices only", t, func() {
		rng := rand.New(rand.NewSource(1))
		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			idx := ArgmaxTies([]float64{5, 1, 5, 5}, rng)
			So(idx, ShouldBeIn, []int{0, 2, 3})
			seen[idx] = true
		}
		// With 200 draws across three tied indices, every one should appear at least once.
		So(len(seen), ShouldEqual, 3)
	})
}
