package factoreduct

import (
	"math"
	"math/rand"

	"phgnuct"
	"phgnuct/goalnet"
	"phgnuct/simulator"
)

// candidates returns the actions and relevant methods available at node
// given the current gtn, binding each relevant method's decomposition
// target. Irrelevant methods are pruned, per spec.md §4.5.
func candidates(node *TreeNode, sim simulator.Simulator, gtn *goalnet.GoalNetwork) []simulator.Choice {
	out := append([]simulator.Choice{}, node.GetApplicableActions(sim)...)
	for _, m := range node.GetApplicableMethods(sim) {
		for _, target := range sim.IsRelevant(m, gtn) {
			bound := m
			bound.Target = target
			out = append(out, bound)
		}
	}
	return out
}

// qnFor returns the Q and N value for (subgoal, choice), defaulting to
// (0, 0) when absent.
func qnFor(node *TreeNode, subgoal goalnet.VertexID, key string) (q float64, n int) {
	if table, ok := node.Q[subgoal]; ok {
		q = table[key]
		n = node.N[subgoal][key]
	}
	return
}

// selectUCB implements the factored UCB score: a sum over currently
// unconstrained subgoals of per-subgoal UCB terms.
func selectUCB(node *TreeNode, sim simulator.Simulator, gtn *goalnet.GoalNetwork, cfg phgnuct.Config, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim, gtn)
	unconstrained := gtn.GetUnconstrained()

	c := cfg.ExplorationConst
	if cfg.NormalizeExplorationConst {
		c *= maxSumQ(node, unconstrained, cands)
	}

	scores := make([]float64, len(cands))
	for i, choice := range cands {
		key := choice.Key()
		total := 0.0
		for _, g := range unconstrained {
			q, n := qnFor(node, g, key)
			total += phgnuct.UCBTerm(q, n, node.Visits[g], c)
		}
		scores[i] = total
	}
	return cands[phgnuct.ArgmaxTies(scores, rng)]
}

// selectMax implements greedy extraction: the same per-subgoal sum, without
// the exploration term.
func selectMax(node *TreeNode, sim simulator.Simulator, gtn *goalnet.GoalNetwork, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim, gtn)
	unconstrained := gtn.GetUnconstrained()

	scores := make([]float64, len(cands))
	for i, choice := range cands {
		key := choice.Key()
		total := 0.0
		for _, g := range unconstrained {
			q, _ := qnFor(node, g, key)
			total += q
		}
		scores[i] = total
	}
	return cands[phgnuct.ArgmaxTies(scores, rng)]
}

// selectRobust extracts the choice with the greatest total visit count
// across unconstrained subgoals, a more conservative alternative to Max
// restored from the original planner (see SPEC_FULL.md §5).
func selectRobust(node *TreeNode, sim simulator.Simulator, gtn *goalnet.GoalNetwork, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim, gtn)
	unconstrained := gtn.GetUnconstrained()

	scores := make([]float64, len(cands))
	for i, choice := range cands {
		key := choice.Key()
		total := 0
		for _, g := range unconstrained {
			_, n := qnFor(node, g, key)
			total += n
		}
		scores[i] = float64(total)
	}
	return cands[phgnuct.ArgmaxTies(scores, rng)]
}

// selectDefault picks uniformly at random from the candidate set, used
// inside rollouts and for first expansion.
func selectDefault(node *TreeNode, sim simulator.Simulator, gtn *goalnet.GoalNetwork, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim, gtn)
	return cands[rng.Intn(len(cands))]
}

// maxSumQ computes max_u sum_{g in unconstrained} Q[g][u], used to scale the
// exploration constant when normalization is enabled.
func maxSumQ(node *TreeNode, unconstrained []goalnet.VertexID, cands []simulator.Choice) float64 {
	best := math.Inf(-1)
	for _, choice := range cands {
		key := choice.Key()
		total := 0.0
		for _, g := range unconstrained {
			q, _ := qnFor(node, g, key)
			total += q
		}
		if total > best {
			best = total
		}
	}
	if best < 0 || math.IsInf(best, -1) {
		return 0
	}
	return best
}
