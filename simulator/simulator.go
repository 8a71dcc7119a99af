// Package simulator defines the opaque contract the UCT engine consumes:
// world states, applicable actions/methods, goal satisfaction, and method
// relevance/grounding. Concrete domains (see fixtures) implement this
// interface; the engine never inspects a State beyond its Key.
package simulator

import (
	"fmt"
	"math/rand"
	"strings"

	"phgnuct/goalnet"
)

// State is an opaque, hashable world state. Key must be stable and collide
// for any two semantically-equal states, since it is the node factory's memo
// key.
type State interface {
	Key() string
}

// ChoiceKind distinguishes the two members of the Choice tagged union.
type ChoiceKind int

const (
	ActionChoice ChoiceKind = iota
	MethodChoice
)

func (k ChoiceKind) String() string {
	if k == MethodChoice {
		return "method"
	}
	return "action"
}

// Choice is a tagged union: an action application or a method decomposition.
// For methods, Target names the subgoal vertex in the current GTN that this
// method, once bound, will replace. Equality-hash of Choice (Key) is the
// statistics key used by the tree node's Q/N tables.
type Choice struct {
	Kind   ChoiceKind
	Def    string
	Args   []string
	Target goalnet.VertexID
}

// Key returns the string used to index Q/N tables. Methods are keyed
// including their bound decomposition target, since the same method def may
// be relevant to distinct subgoals at once.
func (c Choice) Key() string {
	var b strings.Builder
	b.WriteString(c.Kind.String())
	b.WriteByte(':')
	b.WriteString(c.Def)
	if len(c.Args) > 0 {
		b.WriteByte('(')
		b.WriteString(strings.Join(c.Args, ","))
		b.WriteByte(')')
	}
	if c.Kind == MethodChoice {
		fmt.Fprintf(&b, "@%d", c.Target)
	}
	return b.String()
}

// Cost is the engine-injected cost function: 1 for any action, 0 for any
// method.
func (c Choice) Cost() float64 {
	if c.Kind == ActionChoice {
		return 1
	}
	return 0
}

// Simulator is the external oracle the engine consumes. Implementations own
// all domain semantics (fluents, predicates, probabilistic outcomes); the
// engine treats State as opaque.
type Simulator interface {
	// InitialState returns the problem's starting state.
	InitialState() State

	// Apply executes an action choice against state, returning the successor
	// state. For probabilistic actions, Apply samples one outcome per call
	// using rng. Only ever called with ActionChoice values the simulator
	// itself reported as applicable.
	Apply(rng *rand.Rand, state State, choice Choice) (State, error)

	// ApplicableActions returns the action choices available from state.
	ApplicableActions(state State) []Choice

	// ApplicableMethods returns the method choices available from state,
	// without a bound Target; IsRelevant binds targets per current GTN.
	ApplicableMethods(state State) []Choice

	// Satisfies reports whether state satisfies the given subgoal.
	Satisfies(state State, sg goalnet.Subgoal) bool

	// IsRelevant returns the subset of gtn's vertices that applying method
	// (upon decomposition) would make progress on. Empty means not relevant.
	IsRelevant(method Choice, gtn *goalnet.GoalNetwork) []goalnet.VertexID

	// GroundMethod grounds method against the bound decomposition target,
	// returning the sub-network to splice in its place.
	GroundMethod(method Choice, target goalnet.VertexID) (*goalnet.GoalNetwork, error)
}
