package unfactoreduct

// RolloutResult is the unfactored variant's simple (cost, reached) pair,
// contrasted with the factored variant's per-subgoal map.
type RolloutResult struct {
	Cost    float64
	HasGoal bool
}

// increment adds cost and returns the receiver for chaining.
func (r *RolloutResult) increment(cost float64) *RolloutResult {
	r.Cost += cost
	return r
}
