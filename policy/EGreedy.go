package policy

import (
	"github.com/pkg/errors"
)

// EGreedy implements an ε-greedy policy with respect to a fixed
// preferred action in each state. With probability ε an action is
// selected uniformly at random, otherwise the preferred action is
// selected.
type EGreedy struct {
	*Tabular
	epsilon float64
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random action is selected; preferred[i] is
// the greedy action in state i, or -1 if no action is taken in state i;
// numActions is the number of actions in the environment
func NewEGreedy(preferred []int, numActions int, e float64,
	seed uint64) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, errors.Errorf("newEGreedy: epsilon must be in [0, 1], "+
			"got %v", e)
	}

	table := make([][]float64, len(preferred))
	for s, greedyAction := range preferred {
		if greedyAction == -1 {
			continue
		}
		if greedyAction < 0 || greedyAction >= numActions {
			return nil, errors.Errorf("newEGreedy: preferred action %d in "+
				"state %d out of range [0, %d)", greedyAction, s, numActions)
		}

		// Calculate the ε probability of choosing any action at random
		prob := e / float64(numActions)
		actionProbabilites := make([]float64, numActions)
		for i := range actionProbabilites {
			actionProbabilites[i] = prob
		}

		// Adjust the probability of choosing the greedy action
		actionProbabilites[greedyAction] += 1.0 - e
		table[s] = actionProbabilites
	}

	tabular, err := NewTabular(table, numActions, seed)
	if err != nil {
		return nil, errors.Wrap(err, "newEGreedy")
	}
	return &EGreedy{tabular, e}, nil
}

// Epsilon returns the probability of selecting a random action
func (e *EGreedy) Epsilon() float64 {
	return e.epsilon
}
