package prediction

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/policy"
)

// TD implements one-step temporal difference prediction, TD(0). After
// every step, the value of the state the step was taken from is moved
// towards the one-step bootstrapped target:
//
//	V(s) += α (r + γV(s') - V(s))
//
// The step size α is constant. The discount factor γ is the
// environment's.
type TD struct {
	base
	alpha float64
}

// NewTD returns a new TD(0) evaluator in env with step size alpha
func NewTD(env environment.Environment, alpha float64) (*TD, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, errors.Wrap(err, "newTD")
	}

	b, err := newBase("td(0)", env)
	if err != nil {
		return nil, err
	}

	return &TD{base: b, alpha: alpha}, nil
}

// Evaluate estimates the value of policy p from episodes sampled
// episodes
func (t *TD) Evaluate(p policy.Policy, episodes int) ([]float64, error) {
	return t.evaluate(p, episodes, nil, t.runEpisode)
}

// Alpha returns the step size
func (t *TD) Alpha() float64 {
	return t.alpha
}

// runEpisode samples an episode, updating the value table online
func (t *TD) runEpisode(p policy.Policy) error {
	step, err := t.reset()
	if err != nil {
		return err
	}

	discount := t.env.DiscountFactor()
	for done := false; !done; {
		state := step.State
		action := p.SelectAction(state)

		step, done, err = t.step(action)
		if err != nil {
			return err
		}

		delta := tdError(step.Reward, discount, t.values[step.State],
			t.values[state])
		t.values[state] += float64(t.alpha * delta)
	}

	return nil
}
