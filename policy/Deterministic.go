package policy

import (
	"github.com/pkg/errors"
)

// Deterministic implements a policy which always selects the same
// action in a given state. An action of -1 denotes that the policy
// selects no action in that state.
type Deterministic struct {
	actions    []int
	numActions int
}

// NewDeterministic returns a new Deterministic policy which selects
// action actions[i] in state i
func NewDeterministic(actions []int, numActions int) (*Deterministic,
	error) {
	for s, a := range actions {
		if a < -1 || a >= numActions {
			return nil, errors.Errorf("newDeterministic: action %d in state "+
				"%d out of range [0, %d)", a, s, numActions)
		}
	}

	acts := make([]int, len(actions))
	copy(acts, actions)
	return &Deterministic{acts, numActions}, nil
}

// SelectAction returns the action taken in state
func (d *Deterministic) SelectAction(state int) int {
	mustHaveRow(state >= 0 && state < len(d.actions) &&
		d.actions[state] >= 0, state)
	return d.actions[state]
}

// Probabilities returns the one-hot distribution over actions in state
func (d *Deterministic) Probabilities(state int) []float64 {
	if state < 0 || state >= len(d.actions) || d.actions[state] < 0 {
		return nil
	}

	prob := make([]float64, d.numActions)
	prob[d.actions[state]] = 1.0
	return prob
}

// NumActions returns the number of actions
func (d *Deterministic) NumActions() int {
	return d.numActions
}
