package phgnuct

import (
	"math"
	"math/rand"
)

// UtilityFn is the GUBS exponential utility over accumulated cost,
// utility_fn(c) = exp(risk_factor * c). With risk_factor < 0 and c >= 0 this
// stays in (0, 1], so no overflow guard is needed; see spec.md §9.
type UtilityFn func(cost float64) float64

// NewUtilityFn builds the GUBS utility function for the given risk factor.
func NewUtilityFn(riskFactor float64) UtilityFn {
	return func(cost float64) float64 {
		return math.Exp(riskFactor * cost)
	}
}

// UCBTerm computes a single Q + c*sqrt(ln(visits)/n) term, returning +Inf
// for an unvisited arm (n == 0) so it is always preferred by argmax.
func UCBTerm(q float64, n, visits int, c float64) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	return q + c*math.Sqrt(math.Log(float64(visits))/float64(n))
}

// ArgmaxTies returns the index of the maximal element of scores, breaking
// ties uniformly at random via rng. Panics if scores is empty, since the
// caller is expected to have already established the candidate set is
// nonempty (an empty candidate set at a non-deadend node is a programmer
// error, per spec.md §7).
func ArgmaxTies(scores []float64, rng *rand.Rand) int {
	best := math.Inf(-1)
	var ties []int
	for i, s := range scores {
		switch {
		case s > best:
			best = s
			ties = ties[:0]
			ties = append(ties, i)
		case s == best:
			ties = append(ties, i)
		}
	}
	return ties[rng.Intn(len(ties))]
}
