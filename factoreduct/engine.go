package factoreduct

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"phgnuct"
	"phgnuct/goalnet"
	"phgnuct/simulator"
)

// Engine runs the factored UCT outer loop and its recursive simulate/rollout
// procedure over a single Simulator.
type Engine struct {
	Sim     simulator.Simulator
	Factory *NodeFactory
	Config  phgnuct.Config
	RNG     *rand.Rand
	utility phgnuct.UtilityFn

	// Progress, if non-nil, receives a best-effort snapshot after each outer
	// loop step. Sends are non-blocking: a slow or absent reader never stalls
	// the run.
	Progress chan<- Snapshot
}

// Snapshot is a point-in-time readout of an in-progress run, used by the
// progress telemetry server.
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
func (e *Engine) Run(ctx context.Context, initialGTN *goalnet.GoalNetwork) (phgnuct.RunResult, error) {
	state := e.Sim.InitialState()
	gtn := initialGTN.Copy()
	cumulativeCost := 0

	node := e.Factory.NewNode(state, gtn)

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

		eagerRelease(e.Sim, state, gtn)
		if gtn.IsEmpty() {
			e.emit(cumulativeCost, "", phgnuct.Success.String())
			return phgnuct.RunResult{Outcome: phgnuct.Success, CumulativeCost: cumulativeCost, NumNodes: e.Factory.NumNodes()}, nil
		}

		choice, err := e.plan(node, gtn, cumulativeCost)
		if err != nil {
			return phgnuct.RunResult{}, err
		}

		if choice.Kind == simulator.MethodChoice {
			sub, err := e.Sim.GroundMethod(choice, choice.Target)
			if err != nil {
				return phgnuct.RunResult{}, fmt.Errorf("factoreduct: ground method: %w", err)
			}
			if err := gtn.Decompose(sub, choice.Target); err != nil {
				return phgnuct.RunResult{}, fmt.Errorf("factoreduct: decompose: %w", err)
			}
			e.emit(cumulativeCost, choice.Key(), "")
			continue
		}

		next, err := e.Sim.Apply(e.RNG, state, choice)
		if err != nil {
			return phgnuct.RunResult{}, fmt.Errorf("factoreduct: apply: %w", err)
		}
		state = next
		cumulativeCost++
		node = e.Factory.NewNode(state, gtn)
		e.emit(cumulativeCost, choice.Key(), "")

		if e.Config.ShowProgress {
			fmt.Printf("factored: cost=%d nodes=%d choice=%s\n", cumulativeCost, e.Factory.NumNodes(), choice.Key())
		}
	}
}

// plan runs n_rollouts of simulate from node and extracts a final choice per
// Config.ExtractionPolicy.
func (e *Engine) plan(node *TreeNode, gtn *goalnet.GoalNetwork, cumulativeCost int) (simulator.Choice, error) {
	if gtn.IsEmpty() {
		return simulator.Choice{}, fmt.Errorf("factoreduct: plan called on empty gtn")
	}

	for i := 0; i < e.Config.NRollouts; i++ {
		if _, err := e.simulate(node, gtn.Copy(), 0, float64(cumulativeCost)); err != nil {
			return simulator.Choice{}, err
		}
	}

	if e.Config.ExtractionPolicy == phgnuct.Robust {
		return selectRobust(node, e.Sim, gtn, e.RNG), nil
	}
	return selectMax(node, e.Sim, gtn, e.RNG), nil
}

// simulate descends through tree nodes by UCB policy (or default policy on
// first expansion), expands a frontier leaf, runs a rollout from there, and
// backs up utilities on the way out. See spec.md §4.6.
func (e *Engine) simulate(node *TreeNode, gtn *goalnet.GoalNetwork, depth int, cumulativeCost float64) (*RolloutResult, error) {
	if gtn.IsEmpty() {
		return emptyRolloutResult(), nil
	}

	for _, v := range gtn.GetUnconstrained() {
		if node.Satisfies(e.Sim, gtn.Subgoal(v)) {
			_ = gtn.Release(v)
			result, err := e.simulate(node, gtn, depth, cumulativeCost)
			if err != nil {
				return nil, err
			}
			result.extend(v, 0, true)
			return result, nil
		}
	}

	if node.IsDeadend(e.Sim) {
		return newRolloutResult(gtn, float64(e.Config.Horizon-1-depth), false), nil
	}
	if depth == e.Config.Horizon-1 {
		return newRolloutResult(gtn, 0, false), nil
	}

	var choice simulator.Choice
	var result *RolloutResult
	var err error

	if !node.IsExpanded() {
		node.Expand()
		choice = selectDefault(node, e.Sim, gtn, e.RNG)
		if choice.Kind == simulator.ActionChoice {
			next, applyErr := e.Sim.Apply(e.RNG, node.State, choice)
			if applyErr != nil {
				return nil, fmt.Errorf("factoreduct: apply: %w", applyErr)
			}
			nextNode := e.Factory.NewNode(next, gtn)
			result, err = e.rollout(nextNode, gtn, depth+1)
		} else {
			sub, groundErr := e.Sim.GroundMethod(choice, choice.Target)
			if groundErr != nil {
				return nil, fmt.Errorf("factoreduct: ground method: %w", groundErr)
			}
			if decErr := gtn.Decompose(sub, choice.Target); decErr != nil {
				return nil, fmt.Errorf("factoreduct: decompose: %w", decErr)
			}
			result, err = e.rollout(node, gtn, depth+1)
		}
	} else {
		choice = selectUCB(node, e.Sim, gtn, e.Config, e.RNG)
		if choice.Kind == simulator.ActionChoice {
			next, applyErr := e.Sim.Apply(e.RNG, node.State, choice)
			if applyErr != nil {
				return nil, fmt.Errorf("factoreduct: apply: %w", applyErr)
			}
			nextNode := e.Factory.NewNode(next, gtn)
			result, err = e.simulate(nextNode, gtn, depth+1, cumulativeCost+1)
		} else {
			sub, groundErr := e.Sim.GroundMethod(choice, choice.Target)
			if groundErr != nil {
				return nil, fmt.Errorf("factoreduct: ground method: %w", groundErr)
			}
			if decErr := gtn.Decompose(sub, choice.Target); decErr != nil {
				return nil, fmt.Errorf("factoreduct: decompose: %w", decErr)
			}
			result, err = e.simulate(node, gtn, depth+1, cumulativeCost)
		}
	}
	if err != nil {
		return nil, err
	}

	uCost := choice.Cost()
	node.update(choice, result, cumulativeCost+uCost, e.Config.GoalUtility, e.utility)
	return result.increment(uCost), nil
}

// rollout has the same control flow as simulate but performs no statistics
// update, always uses the default policy, and recurses into rollout.
func (e *Engine) rollout(node *TreeNode, gtn *goalnet.GoalNetwork, depth int) (*RolloutResult, error) {
	if gtn.IsEmpty() {
		return emptyRolloutResult(), nil
	}

	for _, v := range gtn.GetUnconstrained() {
		if node.Satisfies(e.Sim, gtn.Subgoal(v)) {
			_ = gtn.Release(v)
			result, err := e.rollout(node, gtn, depth)
			if err != nil {
				return nil, err
			}
			result.extend(v, 0, true)
			return result, nil
		}
	}

	if node.IsDeadend(e.Sim) {
		return newRolloutResult(gtn, float64(e.Config.Horizon-1-depth), false), nil
	}
	if depth == e.Config.Horizon-1 {
		return newRolloutResult(gtn, 0, false), nil
	}

	choice := selectDefault(node, e.Sim, gtn, e.RNG)
	if choice.Kind == simulator.ActionChoice {
		next, err := e.Sim.Apply(e.RNG, node.State, choice)
		if err != nil {
			return nil, fmt.Errorf("factoreduct: apply: %w", err)
		}
		nextNode := e.Factory.NewNode(next, gtn)
		result, err := e.rollout(nextNode, gtn, depth+1)
		if err != nil {
			return nil, err
		}
		return result.increment(choice.Cost()), nil
	}

	sub, err := e.Sim.GroundMethod(choice, choice.Target)
	if err != nil {
		return nil, fmt.Errorf("factoreduct: ground method: %w", err)
	}
	if err := gtn.Decompose(sub, choice.Target); err != nil {
		return nil, fmt.Errorf("factoreduct: decompose: %w", err)
	}
	result, err := e.rollout(node, gtn, depth+1)
	if err != nil {
		return nil, err
	}
	return result.increment(choice.Cost()), nil
}
