// Package factoreduct implements the factored UCT variant: tree nodes keyed
// by world state alone, with Q/N statistics indexed per (subgoal, choice) so
// that different goal-network fragments reaching the same state share
// learning.
package factoreduct

import (
	"fmt"
	"strings"

	"phgnuct"
	"phgnuct/goalnet"
	"phgnuct/simulator"
)

// TreeNode holds one world state's applicable-choice caches and its
// per-subgoal Q/N/visits statistics. Every TreeNode in play is owned by a
// NodeFactory; callers only ever hold references obtained from it.
type TreeNode struct {
	State simulator.State

	actions        []simulator.Choice
	methods        []simulator.Choice
	actionsCached  bool
	methodsCached  bool
	expanded       bool

	// Q, N are indexed by subgoal then by choice key (simulator.Choice.Key()).
	Q      map[goalnet.VertexID]map[string]float64
	N      map[goalnet.VertexID]map[string]int
	Visits map[goalnet.VertexID]int
}

func newTreeNode(state simulator.State) *TreeNode {
	return &TreeNode{
		State:  state,
		Q:      map[goalnet.VertexID]map[string]float64{},
		N:      map[goalnet.VertexID]map[string]int{},
		Visits: map[goalnet.VertexID]int{},
	}
}

// IsExpanded reports whether this node has already had its one-shot
// first-expansion rollout.
func (n *TreeNode) IsExpanded() bool { return n.expanded }

// Expand marks the node as expanded. One-shot: unexpanded leaves trigger a
// single rollout before becoming candidates for further descent.
func (n *TreeNode) Expand() { n.expanded = true }

// GetApplicableActions queries the simulator on first call and caches the
// result thereafter.
func (n *TreeNode) GetApplicableActions(sim simulator.Simulator) []simulator.Choice {
	if !n.actionsCached {
		n.actions = sim.ApplicableActions(n.State)
		n.actionsCached = true
	}
	return n.actions
}

// GetApplicableMethods queries the simulator on first call and caches the
// result thereafter.
func (n *TreeNode) GetApplicableMethods(sim simulator.Simulator) []simulator.Choice {
	if !n.methodsCached {
		n.methods = sim.ApplicableMethods(n.State)
		n.methodsCached = true
	}
	return n.methods
}

// IsDeadend reports whether no actions are applicable from this state.
func (n *TreeNode) IsDeadend(sim simulator.Simulator) bool {
	return len(n.GetApplicableActions(sim)) == 0
}

// Satisfies forwards to the simulator.
func (n *TreeNode) Satisfies(sim simulator.Simulator, sg goalnet.Subgoal) bool {
	return sim.Satisfies(n.State, sg)
}

// update applies the factored backup recurrence for every subgoal present in
// result, per spec.md §4.4.
func (n *TreeNode) update(choice simulator.Choice, result *RolloutResult, cumulativeCost, goalUtility float64, utilityFn phgnuct.UtilityFn) {
	key := choice.Key()
	for subgoal, cost := range result.Costs {
		if n.Q[subgoal] == nil {
			n.Q[subgoal] = map[string]float64{}
			n.N[subgoal] = map[string]int{}
		}
		k := 0.0
		if result.HasGoal[subgoal] {
			k = goalUtility
		}
		q := n.Q[subgoal][key]
		nn := n.N[subgoal][key]
		n.Q[subgoal][key] = (float64(nn)*q + utilityFn(cost+cumulativeCost) + k) / float64(nn+1)
		n.N[subgoal][key] = nn + 1
		n.Visits[subgoal]++
	}
}

// String renders a per-subgoal Q/N dump, restored from the original
// planner's debug TreeNode.__str__.
func (n *TreeNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TreeNode(state=%s, expanded=%v)\n", n.State.Key(), n.expanded)
	for subgoal, table := range n.Q {
		fmt.Fprintf(&b, "  subgoal %d: visits=%d\n", subgoal, n.Visits[subgoal])
		for key, q := range table {
			fmt.Fprintf(&b, "    %s: Q=%.4f N=%d\n", key, q, n.N[subgoal][key])
		}
	}
	return b.String()
}

// NodeFactory memoizes TreeNodes by world state so that identical states
// reached via different goal-network fragments share statistics.
type NodeFactory struct {
	simulator simulator.Simulator
	nodes     map[string]*TreeNode
}

// NewNodeFactory returns an empty factory bound to the given simulator.
func NewNodeFactory(sim simulator.Simulator) *NodeFactory {
	return &NodeFactory{simulator: sim, nodes: map[string]*TreeNode{}}
}

// NumNodes returns the count of distinct nodes created so far.
func (f *NodeFactory) NumNodes() int { return len(f.nodes) }

// NewNode performs eager release on gtn (removing every unconstrained
// subgoal the state already satisfies, to a fixed point) and returns the
// unique node for state, creating it on first request. gtn is mutated in
// place per spec.md §4.3.
func (f *NodeFactory) NewNode(state simulator.State, gtn *goalnet.GoalNetwork) *TreeNode {
	eagerRelease(f.simulator, state, gtn)

	key := state.Key()
	if node, ok := f.nodes[key]; ok {
		return node
	}
	node := newTreeNode(state)
	f.nodes[key] = node
	return node
}

// eagerRelease removes unconstrained subgoals the state already satisfies,
// repeating until no more can be released.
func eagerRelease(sim simulator.Simulator, state simulator.State, gtn *goalnet.GoalNetwork) {
	for {
		released := false
		for _, v := range gtn.GetUnconstrained() {
			if sim.Satisfies(state, gtn.Subgoal(v)) {
				_ = gtn.Release(v)
				released = true
			}
		}
		if !released {
			return
		}
	}
}
