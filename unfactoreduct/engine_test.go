package unfactoreduct

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"phgnuct"
	"phgnuct/factoreduct"
	"phgnuct/fixtures"
)

func testConfig(seed int64) phgnuct.Config {
	cfg := phgnuct.DefaultConfig()
	cfg.NRollouts = 20
	cfg.Horizon = 10
	cfg.Budget = 20
	cfg.Seed = &seed
	return cfg
}

func TestEngineChainDomain(t *testing.T) {
	Convey("A one-step deterministic chain always succeeds in one action", t, func() {
		sim, gtn, err := fixtures.Load("chain")
		So(err, ShouldBeNil)

		engine := NewEngine(sim, testConfig(1))
		result, err := engine.Run(context.Background(), gtn)

		So(err, ShouldBeNil)
		So(result.Outcome, ShouldEqual, phgnuct.Success)
		So(result.CumulativeCost, ShouldEqual, 1)
	})
}

func TestEngineMethodDomain(t *testing.T) {
	Convey("Method decomposition reaches the goal via two actions, at zero extra cost", t, func() {
		sim, gtn, err := fixtures.Load("method")
		So(err, ShouldBeNil)

		cfg := testConfig(2)
		cfg.NRollouts = 50
		engine := NewEngine(sim, cfg)
		result, err := engine.Run(context.Background(), gtn)

		So(err, ShouldBeNil)
		So(result.Outcome, ShouldEqual, phgnuct.Success)
		So(result.CumulativeCost, ShouldEqual, 2)
	})
}

func TestEngineCoinFlipDomain(t *testing.T) {
	Convey("A probabilistic action eventually succeeds within budget", t, func() {
		sim, gtn, err := fixtures.Load("coinflip")
		So(err, ShouldBeNil)

		cfg := testConfig(3)
		cfg.Budget = 200
		engine := NewEngine(sim, cfg)
		result, err := engine.Run(context.Background(), gtn)

		So(err, ShouldBeNil)
		So(result.Outcome, ShouldEqual, phgnuct.Success)
	})
}

func TestEngineMultiGoalDomain(t *testing.T) {
	Convey("Two independent subgoals are both reached at total cost 2", t, func() {
		sim, gtn, err := fixtures.Load("multigoal")
		So(err, ShouldBeNil)

		engine := NewEngine(sim, testConfig(4))
		result, err := engine.Run(context.Background(), gtn)

		So(err, ShouldBeNil)
		So(result.Outcome, ShouldEqual, phgnuct.Success)
		So(result.CumulativeCost, ShouldEqual, 2)
	})
}

func TestFactoredAndUnfactoredAgree(t *testing.T) {
	Convey("Both variants solve the multigoal domain at the same cost", t, func() {
		unfactoredSim, unfactoredGTN, err := fixtures.Load("multigoal")
		So(err, ShouldBeNil)
		factoredSim, factoredGTN, err := fixtures.Load("multigoal")
		So(err, ShouldBeNil)

		cfg := testConfig(5)

		unfactoredResult, err := NewEngine(unfactoredSim, cfg).Run(context.Background(), unfactoredGTN)
		So(err, ShouldBeNil)

		factoredResult, err := factoreduct.NewEngine(factoredSim, cfg).Run(context.Background(), factoredGTN)
		So(err, ShouldBeNil)

		So(unfactoredResult.Outcome, ShouldEqual, phgnuct.Success)
		So(factoredResult.Outcome, ShouldEqual, phgnuct.Success)
		So(unfactoredResult.CumulativeCost, ShouldEqual, factoredResult.CumulativeCost)
	})
}
