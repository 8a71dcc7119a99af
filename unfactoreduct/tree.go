// Package unfactoreduct implements the unfactored UCT variant: tree nodes
// keyed by (state, gtn) together, with Q/N statistics indexed by choice
// alone. Each node owns its own goal network; progressing it (releasing or
// decomposing) always produces a new, independently-keyed node rather than
// mutating the node in place, since the gtn is part of the node's identity.
package unfactoreduct

import (
	"fmt"
	"strings"

	"phgnuct"
	"phgnuct/goalnet"
	"phgnuct/simulator"
)

// TreeNode holds one (state, gtn) pair's applicable-choice caches and its
// flat Q/N/visits statistics.
type TreeNode struct {
	State simulator.State
	GTN   *goalnet.GoalNetwork

	actions       []simulator.Choice
	methods       []simulator.Choice
	actionsCached bool
	methodsCached bool
	expanded      bool

	Q      map[string]float64
	N      map[string]int
	Visits int
}

func newTreeNode(state simulator.State, gtn *goalnet.GoalNetwork) *TreeNode {
	return &TreeNode{
		State: state,
		GTN:   gtn,
		Q:     map[string]float64{},
		N:     map[string]int{},
	}
}

// IsExpanded reports whether this node has already had its one-shot
// first-expansion rollout.
func (n *TreeNode) IsExpanded() bool { return n.expanded }

// Expand marks the node as expanded.
func (n *TreeNode) Expand() { n.expanded = true }

// GetApplicableActions queries the simulator on first call and caches it.
func (n *TreeNode) GetApplicableActions(sim simulator.Simulator) []simulator.Choice {
	if !n.actionsCached {
		n.actions = sim.ApplicableActions(n.State)
		n.actionsCached = true
	}
	return n.actions
}

// GetApplicableMethods queries the simulator on first call and caches it.
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

// update applies the unfactored backup recurrence, a single-scalar version
// of the factored variant's per-subgoal recurrence (spec.md §4.4).
func (n *TreeNode) update(choice simulator.Choice, result *RolloutResult, cumulativeCost, goalUtility float64, utilityFn phgnuct.UtilityFn) {
	key := choice.Key()
	k := 0.0
	if result.HasGoal {
		k = goalUtility
	}
	q := n.Q[key]
	nn := n.N[key]
	n.Q[key] = (float64(nn)*q + utilityFn(result.Cost+cumulativeCost) + k) / float64(nn+1)
	n.N[key] = nn + 1
	n.Visits++
}

// String renders a flat Q/N dump, restored from the original planner's
// debug TreeNode.__str__.
func (n *TreeNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TreeNode(state=%s, gtn=%s, visits=%d)\n", n.State.Key(), n.GTN.Key(), n.Visits)
	for key, q := range n.Q {
		fmt.Fprintf(&b, "  %s: Q=%.4f N=%d\n", key, q, n.N[key])
	}
	return b.String()
}

// NodeFactory memoizes TreeNodes by (state, gtn) so that identical pairs
// reached by different search paths share statistics.
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

// NewNode performs eager release on gtn prior to keying (mutating it in
// place to a fixed point) and returns the unique node for the resulting
// (state, gtn) pair, creating it on first request.
func (f *NodeFactory) NewNode(state simulator.State, gtn *goalnet.GoalNetwork) *TreeNode {
	eagerRelease(f.simulator, state, gtn)

	key := state.Key() + "|" + gtn.Key()
	if node, ok := f.nodes[key]; ok {
		return node
	}
	node := newTreeNode(state, gtn)
	f.nodes[key] = node
	return node
}

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
