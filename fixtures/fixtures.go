// Package fixtures provides small, self-contained Simulator implementations
// used by tests and by cmd/uctbench's toy-domain loader. They stand in for
// the child-snack/depot/satellite/transport domains, which remain out of
// scope as anything but illustrative fixtures (spec.md §1).
package fixtures

import (
	"errors"
	"fmt"
	"math/rand"

	"phgnuct/goalnet"
	"phgnuct/simulator"
)

// stringState is the common State implementation for every fixture domain:
// a world state is fully described by a short opaque label.
type stringState struct{ label string }

func (s stringState) Key() string { return s.label }

// State constructs a fixture world state from a label.
func State(label string) simulator.State { return stringState{label: label} }

var errNoMethods = errors.New("fixtures: domain has no methods")

// --- Chain domain: scenario 2, "one-step deterministic plan". ---

// ChainDomain is a two-state chain: a single action "step" moves from
// "start" to "goal", where the sole subgoal is satisfied. "goal" offers a
// no-op "wait" action so it is never a dead-end once the subgoal releases.
type ChainDomain struct{}

func (ChainDomain) InitialState() simulator.State { return State("start") }

func (ChainDomain) ApplicableActions(state simulator.State) []simulator.Choice {
	if state.Key() == "start" {
		return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "step"}}
	}
	return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "wait"}}
}

func (ChainDomain) ApplicableMethods(simulator.State) []simulator.Choice { return nil }

func (ChainDomain) Apply(_ *rand.Rand, state simulator.State, choice simulator.Choice) (simulator.State, error) {
	switch choice.Def {
	case "step":
		return State("goal"), nil
	case "wait":
		return state, nil
	default:
		return nil, fmt.Errorf("fixtures: chain: unknown action %q", choice.Def)
	}
}

func (ChainDomain) Satisfies(state simulator.State, sg goalnet.Subgoal) bool {
	return sg.Expr == "at(goal)" && state.Key() == "goal"
}

func (ChainDomain) IsRelevant(simulator.Choice, *goalnet.GoalNetwork) []goalnet.VertexID { return nil }

func (ChainDomain) GroundMethod(simulator.Choice, goalnet.VertexID) (*goalnet.GoalNetwork, error) {
	return nil, errNoMethods
}

// ChainInitialGTN returns the single-subgoal GTN for ChainDomain.
func ChainInitialGTN() *goalnet.GoalNetwork {
	gtn := goalnet.New()
	gtn.AddVertex(goalnet.Subgoal{Expr: "at(goal)"})
	return gtn
}

// --- Method domain: scenario 3, "method decomposition". ---

// MethodDomain has a single composite subgoal "G" decomposed by method "M"
// into two sequential subgoals at(a) then at(b), reached by actions "do_a"
// and "do_b" respectively.
type MethodDomain struct{}

func (MethodDomain) InitialState() simulator.State { return State("s0") }

func (MethodDomain) ApplicableActions(state simulator.State) []simulator.Choice {
	switch state.Key() {
	case "s0":
		return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "do_a"}}
	case "s1":
		return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "do_b"}}
	default:
		return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "wait"}}
	}
}

func (MethodDomain) ApplicableMethods(state simulator.State) []simulator.Choice {
	if state.Key() == "s0" {
		return []simulator.Choice{{Kind: simulator.MethodChoice, Def: "M"}}
	}
	return nil
}

func (MethodDomain) Apply(_ *rand.Rand, state simulator.State, choice simulator.Choice) (simulator.State, error) {
	switch {
	case state.Key() == "s0" && choice.Def == "do_a":
		return State("s1"), nil
	case state.Key() == "s1" && choice.Def == "do_b":
		return State("s2"), nil
	case choice.Def == "wait":
		return state, nil
	default:
		return nil, fmt.Errorf("fixtures: method: inapplicable %q at %q", choice.Def, state.Key())
	}
}

func (MethodDomain) Satisfies(state simulator.State, sg goalnet.Subgoal) bool {
	switch sg.Expr {
	case "at(a)":
		return state.Key() == "s1" || state.Key() == "s2"
	case "at(b)":
		return state.Key() == "s2"
	default:
		return false
	}
}

func (MethodDomain) IsRelevant(method simulator.Choice, gtn *goalnet.GoalNetwork) []goalnet.VertexID {
	if method.Def != "M" {
		return nil
	}
	var out []goalnet.VertexID
	for _, v := range gtn.Network() {
		if gtn.Subgoal(v).Expr == "G" {
			out = append(out, v)
		}
	}
	return out
}

func (MethodDomain) GroundMethod(method simulator.Choice, target goalnet.VertexID) (*goalnet.GoalNetwork, error) {
	if method.Def != "M" {
		return nil, fmt.Errorf("fixtures: method: unknown method %q", method.Def)
	}
	sub := goalnet.New()
	a := sub.AddVertex(goalnet.Subgoal{Expr: "at(a)"})
	b := sub.AddVertex(goalnet.Subgoal{Expr: "at(b)"})
	sub.AddEdge(a, b)
	return sub, nil
}

// MethodInitialGTN returns the single-composite-subgoal GTN for MethodDomain.
func MethodInitialGTN() *goalnet.GoalNetwork {
	gtn := goalnet.New()
	gtn.AddVertex(goalnet.Subgoal{Expr: "G"})
	return gtn
}

// --- Coin-flip domain: scenario 4, "probabilistic action". ---

// CoinFlipDomain has a single subgoal reachable by a 50/50 action "flip"
// whose failure outcome leaves the state unchanged.
type CoinFlipDomain struct{}

func (CoinFlipDomain) InitialState() simulator.State { return State("start") }

func (CoinFlipDomain) ApplicableActions(state simulator.State) []simulator.Choice {
	if state.Key() == "goal" {
		return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "wait"}}
	}
	return []simulator.Choice{{Kind: simulator.ActionChoice, Def: "flip"}}
}

func (CoinFlipDomain) ApplicableMethods(simulator.State) []simulator.Choice { return nil }

func (CoinFlipDomain) Apply(rng *rand.Rand, state simulator.State, choice simulator.Choice) (simulator.State, error) {
	switch choice.Def {
	case "flip":
		if rng.Float64() < 0.5 {
			return State("goal"), nil
		}
		return state, nil
	case "wait":
		return state, nil
	default:
		return nil, fmt.Errorf("fixtures: coinflip: unknown action %q", choice.Def)
	}
}

func (CoinFlipDomain) Satisfies(state simulator.State, sg goalnet.Subgoal) bool {
	return sg.Expr == "at(goal)" && state.Key() == "goal"
}

func (CoinFlipDomain) IsRelevant(simulator.Choice, *goalnet.GoalNetwork) []goalnet.VertexID {
	return nil
}

func (CoinFlipDomain) GroundMethod(simulator.Choice, goalnet.VertexID) (*goalnet.GoalNetwork, error) {
	return nil, errNoMethods
}

// CoinFlipInitialGTN returns the single-subgoal GTN for CoinFlipDomain.
func CoinFlipInitialGTN() *goalnet.GoalNetwork {
	gtn := goalnet.New()
	gtn.AddVertex(goalnet.Subgoal{Expr: "at(goal)"})
	return gtn
}

// --- Multi-goal domain: scenario 6, factored vs unfactored node counts. ---

// MultiGoalDomain has two independent subgoals, each reached by its own
// single-step action; the two subgoals may be released in either order.
type MultiGoalDomain struct{}

func (MultiGoalDomain) InitialState() simulator.State { return State("s00") }

func (MultiGoalDomain) ApplicableActions(state simulator.State) []simulator.Choice {
	var out []simulator.Choice
	switch state.Key() {
	case "s00":
		out = append(out, simulator.Choice{Kind: simulator.ActionChoice, Def: "reach_x"})
		out = append(out, simulator.Choice{Kind: simulator.ActionChoice, Def: "reach_y"})
	case "s10":
		out = append(out, simulator.Choice{Kind: simulator.ActionChoice, Def: "reach_y"})
	case "s01":
		out = append(out, simulator.Choice{Kind: simulator.ActionChoice, Def: "reach_x"})
	default:
		out = append(out, simulator.Choice{Kind: simulator.ActionChoice, Def: "wait"})
	}
	return out
}

func (MultiGoalDomain) ApplicableMethods(simulator.State) []simulator.Choice { return nil }

func (MultiGoalDomain) Apply(_ *rand.Rand, state simulator.State, choice simulator.Choice) (simulator.State, error) {
	switch {
	case choice.Def == "reach_x" && state.Key() == "s00":
		return State("s10"), nil
	case choice.Def == "reach_y" && state.Key() == "s00":
		return State("s01"), nil
	case choice.Def == "reach_y" && state.Key() == "s10":
		return State("s11"), nil
	case choice.Def == "reach_x" && state.Key() == "s01":
		return State("s11"), nil
	case choice.Def == "wait":
		return state, nil
	default:
		return nil, fmt.Errorf("fixtures: multigoal: inapplicable %q at %q", choice.Def, state.Key())
	}
}

func (MultiGoalDomain) Satisfies(state simulator.State, sg goalnet.Subgoal) bool {
	switch sg.Expr {
	case "x":
		return state.Key() == "s10" || state.Key() == "s11"
	case "y":
		return state.Key() == "s01" || state.Key() == "s11"
	default:
		return false
	}
}

func (MultiGoalDomain) IsRelevant(simulator.Choice, *goalnet.GoalNetwork) []goalnet.VertexID {
	return nil
}

func (MultiGoalDomain) GroundMethod(simulator.Choice, goalnet.VertexID) (*goalnet.GoalNetwork, error) {
	return nil, errNoMethods
}

// MultiGoalInitialGTN returns the two-independent-subgoal GTN for
// MultiGoalDomain.
func MultiGoalInitialGTN() *goalnet.GoalNetwork {
	gtn := goalnet.New()
	gtn.AddVertex(goalnet.Subgoal{Expr: "x"})
	gtn.AddVertex(goalnet.Subgoal{Expr: "y"})
	return gtn
}

// Load resolves a fixture domain by name, returning its Simulator and
// initial GTN, for use by cmd/uctbench's --domain flag.
func Load(name string) (simulator.Simulator, *goalnet.GoalNetwork, error) {
	switch name {
	case "chain":
		return ChainDomain{}, ChainInitialGTN(), nil
	case "method":
		return MethodDomain{}, MethodInitialGTN(), nil
	case "coinflip":
		return CoinFlipDomain{}, CoinFlipInitialGTN(), nil
	case "multigoal":
		return MultiGoalDomain{}, MultiGoalInitialGTN(), nil
	default:
		return nil, nil, fmt.Errorf("fixtures: unknown domain %q", name)
	}
}
