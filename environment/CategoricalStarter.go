package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting state indices sampled from a
// categorical distribution over states. A state with weight 0 is never
// used as a starting state.
type CategoricalStarter struct {
	seed uint64
	rand distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter sampling state
// i with probability proportional to weights[i]
func NewCategoricalStarter(weights []float64, seed uint64) CategoricalStarter {
	if len(weights) == 0 {
		panic("newCategoricalStarter: no states to start in")
	}

	total := 0.0
	for i, w := range weights {
		if w < 0 {
			panic(fmt.Sprintf("newCategoricalStarter: negative weight %v "+
				"for state %d", w, i))
		}
		total += w
	}
	if total == 0 {
		panic("newCategoricalStarter: weights sum to zero")
	}

	source := rand.NewSource(seed)
	return CategoricalStarter{seed, distuv.NewCategorical(weights, source)}
}

// NewUniformStarter returns a CategoricalStarter that samples uniformly
// from the state indices in states
func NewUniformStarter(numStates int, states []int, seed uint64) CategoricalStarter {
	weights := make([]float64, numStates)
	for _, s := range states {
		weights[s] = 1.0
	}
	return NewCategoricalStarter(weights, seed)
}

// Start returns a starting state index
func (c CategoricalStarter) Start() int {
	return int(c.rand.Rand())
}

// FixedStarter always starts episodes in the same state
type FixedStarter int

// Start returns the fixed starting state index
func (f FixedStarter) Start() int {
	return int(f)
}
