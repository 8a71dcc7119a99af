package unfactoreduct

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"phgnuct"
	"phgnuct/goalnet"
	"phgnuct/simulator"
)

// Engine runs the unfactored UCT outer loop and its recursive simulate/
// rollout procedure over a single Simulator.
type Engine struct {
	Sim     simulator.Simulator
	Factory *NodeFactory
	Config  phgnuct.Config
	RNG     *rand.Rand
	utility phgnuct.UtilityFn

	Progress chan<- Snapshot
}

// Snapshot is a point-in-time readout of an in-progress run.
type Snapshot struct {
	NumNodes       int
	CumulativeCost int
	LastChoice     string
	Outcome        string
}

// NewEngine builds an engine bound to sim with cfg's hyperparameters.
func NewEngine(sim simulator.Simulator, cfg phgnuct.Config) *Engine {
	var seed int64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Sim:     sim,
		Factory: NewNodeFactory(sim),
		Config:  cfg,
		RNG:     rand.New(rand.NewSource(seed)),
		utility: phgnuct.NewUtilityFn(cfg.RiskFactor),
	}
}

func (e *Engine) emit(cumulativeCost int, lastChoice, outcome string) {
	if e.Progress == nil {
		return
	}
	select {
	case e.Progress <- Snapshot{NumNodes: e.Factory.NumNodes(), CumulativeCost: cumulativeCost, LastChoice: lastChoice, Outcome: outcome}:
	default:
	}
}

// Run executes the outer decision loop (spec.md §4.6) starting from
// initialGTN, which is copied so the caller's network is never mutated.
// In the unfactored variant, release is folded into node keying (§4.3), so
// the outer loop needs no separate eager-release step.
func (e *Engine) Run(ctx context.Context, initialGTN *goalnet.GoalNetwork) (phgnuct.RunResult, error) {
	state := e.Sim.InitialState()
	node := e.Factory.NewNode(state, initialGTN.Copy())
	cumulativeCost := 0

	for {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return phgnuct.RunResult{Outcome: phgnuct.FailureBudget, CumulativeCost: cumulativeCost, NumNodes: e.Factory.NumNodes()}, ctx.Err()
			default:
			}
		}

		if cumulativeCost >= e.Config.Budget {
			e.emit(cumulativeCost, "", phgnuct.FailureBudget.String())
			return phgnuct.RunResult{Outcome: phgnuct.FailureBudget, CumulativeCost: cumulativeCost, NumNodes: e.Factory.NumNodes()}, nil
		}
		if node.IsDeadend(e.Sim) {
			e.emit(cumulativeCost, "", phgnuct.FailureDeadlocked.String())
			return phgnuct.RunResult{Outcome: phgnuct.FailureDeadlocked, CumulativeCost: cumulativeCost, NumNodes: e.Factory.NumNodes()}, nil
		}
		if node.GTN.IsEmpty() {
			e.emit(cumulativeCost, "", phgnuct.Success.String())
			return phgnuct.RunResult{Outcome: phgnuct.Success, CumulativeCost: cumulativeCost, NumNodes: e.Factory.NumNodes()}, nil
		}

		choice, err := e.plan(node, cumulativeCost)
		if err != nil {
			return phgnuct.RunResult{}, err
		}

		if choice.Kind == simulator.MethodChoice {
			newGTN := node.GTN.Copy()
			sub, err := e.Sim.GroundMethod(choice, choice.Target)
			if err != nil {
				return phgnuct.RunResult{}, fmt.Errorf("unfactoreduct: ground method: %w", err)
			}
			if err := newGTN.Decompose(sub, choice.Target); err != nil {
				return phgnuct.RunResult{}, fmt.Errorf("unfactoreduct: decompose: %w", err)
			}
			node = e.Factory.NewNode(node.State, newGTN)
			e.emit(cumulativeCost, choice.Key(), "")
			continue
		}

		next, err := e.Sim.Apply(e.RNG, node.State, choice)
		if err != nil {
			return phgnuct.RunResult{}, fmt.Errorf("unfactoreduct: apply: %w", err)
		}
		cumulativeCost++
		node = e.Factory.NewNode(next, node.GTN.Copy())
		e.emit(cumulativeCost, choice.Key(), "")

		if e.Config.ShowProgress {
			fmt.Printf("unfactored: cost=%d nodes=%d choice=%s\n", cumulativeCost, e.Factory.NumNodes(), choice.Key())
		}
	}
}

// plan runs n_rollouts of simulate starting from node (sharing node's own
// gtn across rollouts is safe: simulate never mutates a node's gtn in
// place, only via copy-then-decompose when creating successor nodes) and
// extracts a final choice per Config.ExtractionPolicy.
func (e *Engine) plan(node *TreeNode, cumulativeCost int) (simulator.Choice, error) {
	if node.GTN.IsEmpty() {
		return simulator.Choice{}, fmt.Errorf("unfactoreduct: plan called on empty gtn")
	}

	for i := 0; i < e.Config.NRollouts; i++ {
		if _, err := e.simulate(node, 0, float64(cumulativeCost)); err != nil {
			return simulator.Choice{}, err
		}
	}

	if e.Config.ExtractionPolicy == phgnuct.Robust {
		return selectRobust(node, e.Sim, e.RNG), nil
	}
	return selectMax(node, e.Sim, e.RNG), nil
}

// simulate mirrors the factored variant's recursion, but reads gtn from the
// node itself and returns a scalar RolloutResult. Per spec.md §9, its
// horizon base case intentionally returns cost=1 (not 0 as in the factored
// variant) — preserved exactly as a documented discrepancy, not "fixed".
func (e *Engine) simulate(node *TreeNode, depth int, cumulativeCost float64) (*RolloutResult, error) {
	if node.GTN.IsEmpty() {
		return &RolloutResult{Cost: 0, HasGoal: true}, nil
	}
	if node.IsDeadend(e.Sim) {
		return &RolloutResult{Cost: float64(e.Config.Horizon - 1 - depth), HasGoal: false}, nil
	}
	if depth == e.Config.Horizon-1 {
		return &RolloutResult{Cost: 1, HasGoal: false}, nil
	}

	var choice simulator.Choice
	var result *RolloutResult
	var err error

	if !node.IsExpanded() {
		node.Expand()
		choice = selectDefault(node, e.Sim, e.RNG)
		nextNode, progErr := e.progress(node, choice)
		if progErr != nil {
			return nil, progErr
		}
		result, err = e.rollout(nextNode, depth+1)
	} else {
		choice = selectUCB(node, e.Sim, e.Config, e.RNG)
		nextNode, progErr := e.progress(node, choice)
		if progErr != nil {
			return nil, progErr
		}
		nextCum := cumulativeCost
		if choice.Kind == simulator.ActionChoice {
			nextCum++
		}
		result, err = e.simulate(nextNode, depth+1, nextCum)
	}
	if err != nil {
		return nil, err
	}

	uCost := choice.Cost()
	node.update(choice, result, cumulativeCost+uCost, e.Config.GoalUtility, e.utility)
	return result.increment(uCost), nil
}

// rollout has the same control flow as simulate but performs no statistics
// update, always uses the default policy, and recurses into rollout. Its
// horizon base case returns cost=0 (differing from simulate's cost=1) — a
// documented open question in spec.md §9, preserved rather than reconciled.
// Its empty-gtn base case returns has_goal=true, matching simulate's.
func (e *Engine) rollout(node *TreeNode, depth int) (*RolloutResult, error) {
	if node.GTN.IsEmpty() {
		return &RolloutResult{Cost: 0, HasGoal: true}, nil
	}
	if node.IsDeadend(e.Sim) {
		return &RolloutResult{Cost: float64(e.Config.Horizon - 1 - depth), HasGoal: false}, nil
	}
	if depth == e.Config.Horizon-1 {
		return &RolloutResult{Cost: 0, HasGoal: false}, nil
	}

	choice := selectDefault(node, e.Sim, e.RNG)
	nextNode, err := e.progress(node, choice)
	if err != nil {
		return nil, err
	}
	result, err := e.rollout(nextNode, depth+1)
	if err != nil {
		return nil, err
	}
	return result.increment(choice.Cost()), nil
}

// progress advances node by choice, producing the (possibly shared, via the
// factory) successor node. Actions transition the world state; methods
// decompose a copy of the node's own gtn. Either way, the node's own gtn is
// never mutated in place.
func (e *Engine) progress(node *TreeNode, choice simulator.Choice) (*TreeNode, error) {
	if choice.Kind == simulator.ActionChoice {
		next, err := e.Sim.Apply(e.RNG, node.State, choice)
		if err != nil {
			return nil, fmt.Errorf("unfactoreduct: apply: %w", err)
		}
		return e.Factory.NewNode(next, node.GTN.Copy()), nil
	}

	newGTN := node.GTN.Copy()
	sub, err := e.Sim.GroundMethod(choice, choice.Target)
	if err != nil {
		return nil, fmt.Errorf("unfactoreduct: ground method: %w", err)
	}
	if err := newGTN.Decompose(sub, choice.Target); err != nil {
		return nil, fmt.Errorf("unfactoreduct: decompose: %w", err)
	}
	return e.Factory.NewNode(node.State, newGTN), nil
}
