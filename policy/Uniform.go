package policy

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform implements the uniform random policy, which selects every
// action with equal probability in every state
type Uniform struct {
	numActions int
	seed       uint64
	dist       distuv.Categorical
}

// NewUniform returns a new Uniform policy over numActions actions
func NewUniform(numActions int, seed uint64) *Uniform {
	if numActions <= 0 {
		panic("newUniform: policy must have at least one action")
	}

	weights := make([]float64, numActions)
	for i := range weights {
		weights[i] = 1.0 / float64(numActions)
	}
	source := rand.NewSource(seed)

	return &Uniform{numActions, seed, distuv.NewCategorical(weights, source)}
}

// SelectAction selects an action uniformly at random
func (u *Uniform) SelectAction(int) int {
	return int(u.dist.Rand())
}

// Probabilities returns the uniform distribution over actions
func (u *Uniform) Probabilities(int) []float64 {
	prob := make([]float64, u.numActions)
	for i := range prob {
		prob[i] = 1.0 / float64(u.numActions)
	}
	return prob
}

// NumActions returns the number of actions
func (u *Uniform) NumActions() int {
	return u.numActions
}
