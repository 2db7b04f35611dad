// Package policy implements fixed policies over tabular environments.
//
// Policies map a state index to an action index. Stochastic policies
// sample actions from a categorical distribution driven by a random
// source seeded at construction, so that two policies constructed with
// the same seed select the same sequence of actions.
package policy

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Policy selects actions in states
type Policy interface {
	// SelectAction returns the action to take in the argument state.
	// A Policy must be able to select an action in every state
	// reachable under it.
	SelectAction(state int) int
}

// Distribution is a Policy whose action probabilities are known in
// every state.
type Distribution interface {
	Policy

	// Probabilities returns the probability of selecting each action
	// in state. A nil slice means that the Policy selects no action in
	// state (e.g. state is terminal).
	Probabilities(state int) []float64

	// NumActions returns the number of actions the Policy selects from
	NumActions() int
}

// ErrInvalidDistribution is returned when a policy's action
// probabilities do not form a distribution
var ErrInvalidDistribution = errors.New("invalid action distribution")

// probTolerance is the slack allowed when checking that probabilities
// sum to 1
const probTolerance = 1e-6

// validateRow checks that row is either empty or a valid distribution
// over numActions actions
func validateRow(row []float64, numActions int) error {
	if len(row) == 0 {
		return nil
	}
	if len(row) != numActions {
		return errors.Wrapf(ErrInvalidDistribution, "have %d probabilities "+
			"for %d actions", len(row), numActions)
	}

	sum := 0.0
	for a, p := range row {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return errors.Wrapf(ErrInvalidDistribution, "probability %v of "+
				"action %d not in [0, 1]", p, a)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > probTolerance {
		return errors.Wrapf(ErrInvalidDistribution, "probabilities sum to %v",
			sum)
	}
	return nil
}

// mustHaveRow panics if a policy is asked to act in a state it has no
// action distribution for
func mustHaveRow(ok bool, state int) {
	if !ok {
		panic(fmt.Sprintf("selectAction: no actions available in state %d",
			state))
	}
}
