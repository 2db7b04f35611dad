package tabular

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned when a Config does not describe a valid
// finite MDP
var ErrInvalidConfig = errors.New("invalid MDP configuration")

// probTolerance is the slack allowed when checking that transition
// probabilities sum to 1
const probTolerance = 1e-6

// Config implements a configuration of a finite MDP. States and actions
// are referred to by name; a state's index is its position in States
// and an action's index is its position in Actions. Configurations are
// YAML and JSON serializable.
//
// Transitions maps state -> action -> next state -> probability. A state
// with no outgoing transitions is terminal. An action missing from a
// non-terminal state's transitions is not available in that state.
//
// Rewards maps state -> action -> reward received for taking the action
// in the state. Missing rewards are 0.
type Config struct {
	Discount    float64                                  `yaml:"discount" json:"discount"`
	Start       string                                   `yaml:"start,omitempty" json:"start,omitempty"`
	States      []string                                 `yaml:"states" json:"states"`
	Actions     []string                                 `yaml:"actions" json:"actions"`
	Transitions map[string]map[string]map[string]float64 `yaml:"transitions" json:"transitions"`
	Rewards     map[string]map[string]float64            `yaml:"rewards" json:"rewards"`
}

// Validate ensures that the Config describes a valid finite MDP
func (c Config) Validate() error {
	if c.Discount < 0 || c.Discount > 1 || math.IsNaN(c.Discount) {
		return errors.Wrapf(ErrInvalidConfig, "discount %v not in [0, 1]",
			c.Discount)
	}

	states, err := indices(c.States, "state")
	if err != nil {
		return err
	}
	actions, err := indices(c.Actions, "action")
	if err != nil {
		return err
	}

	nonTerminal := 0
	for state, byAction := range c.Transitions {
		if _, ok := states[state]; !ok {
			return errors.Wrapf(ErrInvalidConfig, "transitions: unknown "+
				"state %q", state)
		}
		if len(byAction) > 0 {
			nonTerminal++
		}

		for action, next := range byAction {
			if _, ok := actions[action]; !ok {
				return errors.Wrapf(ErrInvalidConfig, "transitions: unknown "+
					"action %q in state %q", action, state)
			}
			if err := validateOutcomes(next, states); err != nil {
				return errors.Wrapf(err, "transitions: state %q action %q",
					state, action)
			}
		}
	}
	if nonTerminal == 0 {
		return errors.Wrap(ErrInvalidConfig, "no non-terminal states")
	}

	for state, byAction := range c.Rewards {
		if _, ok := states[state]; !ok {
			return errors.Wrapf(ErrInvalidConfig, "rewards: unknown state %q",
				state)
		}
		for action, r := range byAction {
			if _, ok := actions[action]; !ok {
				return errors.Wrapf(ErrInvalidConfig, "rewards: unknown "+
					"action %q in state %q", action, state)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return errors.Wrapf(ErrInvalidConfig, "rewards: reward %v "+
					"for state %q action %q is not finite", r, state, action)
			}
		}
	}

	if c.Start != "" {
		if _, ok := states[c.Start]; !ok {
			return errors.Wrapf(ErrInvalidConfig, "unknown start state %q",
				c.Start)
		}
		if len(c.Transitions[c.Start]) == 0 {
			return errors.Wrapf(ErrInvalidConfig, "start state %q is "+
				"terminal", c.Start)
		}
	}

	return nil
}

// indices maps each name to its position, ensuring names are unique and
// non-empty
func indices(names []string, kind string) (map[string]int, error) {
	if len(names) == 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "no %ss", kind)
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, errors.Wrapf(ErrInvalidConfig, "%s %d has no name",
				kind, i)
		}
		if _, ok := index[name]; ok {
			return nil, errors.Wrapf(ErrInvalidConfig, "duplicate %s %q",
				kind, name)
		}
		index[name] = i
	}
	return index, nil
}

// validateOutcomes ensures that a next-state distribution is valid
func validateOutcomes(next map[string]float64, states map[string]int) error {
	if len(next) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no next states")
	}

	sum := 0.0
	for state, p := range next {
		if _, ok := states[state]; !ok {
			return errors.Wrapf(ErrInvalidConfig, "unknown next state %q",
				state)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return errors.Wrapf(ErrInvalidConfig, "probability %v of next "+
				"state %q not in [0, 1]", p, state)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > probTolerance {
		return errors.Wrapf(ErrInvalidConfig, "next state probabilities "+
			"sum to %v", sum)
	}
	return nil
}
