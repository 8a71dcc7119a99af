package factoreduct

import "phgnuct/goalnet"

// RolloutResult summarizes a rollout/simulate call from the vantage of each
// subgoal still active in the caller's frame: per subgoal, the accumulated
// cost from that point and whether the subgoal was reached.
type RolloutResult struct {
	Costs   map[goalnet.VertexID]float64
	HasGoal map[goalnet.VertexID]bool
}

// newRolloutResult builds a result assigning the same (cost, hasGoal) pair
// to every vertex currently in gtn — the shape returned by the deadend and
// horizon base cases.
func newRolloutResult(gtn *goalnet.GoalNetwork, cost float64, hasGoal bool) *RolloutResult {
	r := &RolloutResult{
		Costs:   map[goalnet.VertexID]float64{},
		HasGoal: map[goalnet.VertexID]bool{},
	}
	for _, v := range gtn.Network() {
		r.Costs[v] = cost
		r.HasGoal[v] = hasGoal
	}
	return r
}

// emptyRolloutResult is the base case for an already-empty GTN.
func emptyRolloutResult() *RolloutResult {
	return &RolloutResult{Costs: map[goalnet.VertexID]float64{}, HasGoal: map[goalnet.VertexID]bool{}}
}

// increment adds cost to every entry and returns the receiver for chaining.
func (r *RolloutResult) increment(cost float64) *RolloutResult {
	for v := range r.Costs {
		r.Costs[v] += cost
	}
	return r
}

// extend adds a single subgoal entry, used when a just-released subgoal is
// spliced back into its parent frame's result.
func (r *RolloutResult) extend(v goalnet.VertexID, cost float64, hasGoal bool) {
	r.Costs[v] = cost
	r.HasGoal[v] = hasGoal
}
