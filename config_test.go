package phgnuct

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultConfig(t *testing.T) {
	Convey("DefaultConfig mirrors the documented defaults", t, func() {
		cfg := DefaultConfig()
		So(cfg.NRollouts, ShouldEqual, 100)
		So(cfg.Horizon, ShouldEqual, 20)
		So(cfg.Budget, ShouldEqual, 100)
		So(cfg.ExplorationConst, ShouldAlmostEqual, 1.4142135623730951, 1e-12)
		So(cfg.NormalizeExplorationConst, ShouldBeTrue)
		So(cfg.NInit, ShouldEqual, 5)
		So(cfg.RiskFactor, ShouldEqual, -0.1)
		So(cfg.GoalUtility, ShouldEqual, 1)
		So(cfg.ExtractionPolicy, ShouldEqual, Max)
	})
}

func TestQInit(t *testing.T) {
	Convey("QInit sums h_util and h_ptg scaled by goal_utility", t, func() {
		cfg := DefaultConfig()
		cfg.HUtil = ConstantHeuristic(2)
		cfg.HPtg = ConstantHeuristic(3)
		cfg.GoalUtility = 5
		So(cfg.QInit("any"), ShouldEqual, 2+3*5)
	})
}

func TestExtractionPolicyString(t *testing.T) {
	Convey("ExtractionPolicy stringifies to its lowercase name", t, func() {
		So(Max.String(), ShouldEqual, "max")
		So(Robust.String(), ShouldEqual, "robust")
	})
}
