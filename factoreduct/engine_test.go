package factoreduct

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"phgnuct"
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

func TestEngineDeterminism(t *testing.T) {
	Convey("The same seed over the same domain reproduces the same outcome and cost", t, func() {
		sim1, gtn1, _ := fixtures.Load("coinflip")
		sim2, gtn2, _ := fixtures.Load("coinflip")

		cfg := testConfig(42)
		cfg.Budget = 200

		r1, err1 := NewEngine(sim1, cfg).Run(context.Background(), gtn1)
		r2, err2 := NewEngine(sim2, cfg).Run(context.Background(), gtn2)

		So(err1, ShouldBeNil)
		So(err2, ShouldBeNil)
		So(r1.Outcome, ShouldEqual, r2.Outcome)
		So(r1.CumulativeCost, ShouldEqual, r2.CumulativeCost)
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
