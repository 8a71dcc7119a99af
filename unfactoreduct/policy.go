package unfactoreduct

import (
	"math"
	"math/rand"

	"phgnuct"
	"phgnuct/simulator"
)

// candidates returns the actions and relevant methods available at node
// given its own gtn, binding each relevant method's decomposition target.
func candidates(node *TreeNode, sim simulator.Simulator) []simulator.Choice {
	out := append([]simulator.Choice{}, node.GetApplicableActions(sim)...)
	for _, m := range node.GetApplicableMethods(sim) {
		for _, target := range sim.IsRelevant(m, node.GTN) {
			bound := m
			bound.Target = target
			out = append(out, bound)
		}
	}
	return out
}

func selectUCB(node *TreeNode, sim simulator.Simulator, cfg phgnuct.Config, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim)

	c := cfg.ExplorationConst
	if cfg.NormalizeExplorationConst {
		c *= maxQ(node, cands)
	}

	scores := make([]float64, len(cands))
	for i, choice := range cands {
		key := choice.Key()
		scores[i] = phgnuct.UCBTerm(node.Q[key], node.N[key], node.Visits, c)
	}
	return cands[phgnuct.ArgmaxTies(scores, rng)]
}

func selectMax(node *TreeNode, sim simulator.Simulator, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim)
	scores := make([]float64, len(cands))
	for i, choice := range cands {
		scores[i] = node.Q[choice.Key()]
	}
	return cands[phgnuct.ArgmaxTies(scores, rng)]
}

// selectRobust extracts the most-visited choice; see SPEC_FULL.md §5.
func selectRobust(node *TreeNode, sim simulator.Simulator, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim)
	scores := make([]float64, len(cands))
	for i, choice := range cands {
		scores[i] = float64(node.N[choice.Key()])
	}
	return cands[phgnuct.ArgmaxTies(scores, rng)]
}

func selectDefault(node *TreeNode, sim simulator.Simulator, rng *rand.Rand) simulator.Choice {
	cands := candidates(node, sim)
	return cands[rng.Intn(len(cands))]
}

func maxQ(node *TreeNode, cands []simulator.Choice) float64 {
	best := math.Inf(-1)
	for _, choice := range cands {
		if q := node.Q[choice.Key()]; q > best {
			best = q
		}
	}
	if best < 0 || math.IsInf(best, -1) {
		return 0
	}
	return best
}
