// Package prediction implements model-free prediction algorithms which
// estimate the state-value function of a fixed policy in a tabular
// environment from sampled episodes.
//
// Three evaluators are implemented: Monte Carlo, which averages sampled
// returns; TD(0), which bootstraps from the current estimate of the next
// state's value; and TD(λ), which uses eligibility traces to propagate
// each TD error to all recently visited states.
//
// Each evaluator owns its value table. Every call to Evaluate resets the
// table to zero before sampling, so that calls are independent, and
// returns a copy of the table. Evaluators are not safe for concurrent
// use.
package prediction

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/experiment/trackers"
	"github.com/samuelfneumann/gopredict/policy"
	"github.com/samuelfneumann/gopredict/timestep"
)

// ErrInvalidConfig is returned when an evaluator is configured with
// invalid hyperparameters or asked to run a negative number of episodes
var ErrInvalidConfig = errors.New("invalid evaluator configuration")

// Evaluator estimates the state-value function of a policy
type Evaluator interface {
	// Evaluate runs episodes complete episodes under policy p and
	// returns a copy of the estimated value of each state, indexed by
	// state. The estimate is reset to zero before the first episode.
	Evaluate(p policy.Policy, episodes int) ([]float64, error)

	// ValueTable returns a copy of the current value table
	ValueTable() []float64

	// Register adds a Tracker which is sent every TimeStep generated,
	// and the value table at the end of every episode if it is a
	// trackers.EpisodeTracker
	Register(t trackers.Tracker)
}

// base implements the functionality shared by all evaluators: owning
// the value table, driving the environment, and feeding trackers
type base struct {
	name     string
	env      environment.Environment
	values   []float64
	trackers []trackers.Tracker
}

func newBase(name string, env environment.Environment) (base, error) {
	if env == nil {
		return base{}, errors.Wrapf(ErrInvalidConfig, "%s: nil environment",
			name)
	}

	numStates := env.NumStates()
	if numStates <= 0 {
		return base{}, errors.Wrapf(ErrInvalidConfig, "%s: environment "+
			"has %d states", name, numStates)
	}

	discount := env.DiscountFactor()
	if discount < 0 || discount > 1 || math.IsNaN(discount) {
		return base{}, errors.Wrapf(ErrInvalidConfig, "%s: discount factor "+
			"%v not in [0, 1]", name, discount)
	}

	return base{
		name:   name,
		env:    env,
		values: make([]float64, numStates),
	}, nil
}

// ValueTable returns a copy of the current value table
func (b *base) ValueTable() []float64 {
	return append([]float64(nil), b.values...)
}

// Register registers a Tracker with the evaluator
func (b *base) Register(t trackers.Tracker) {
	b.trackers = append(b.trackers, t)
}

// evaluate resets the value table, then runs episodes episodes with
// runEpisode. The reset function resets any other per-call state of the
// evaluator.
func (b *base) evaluate(p policy.Policy, episodes int, reset func(),
	runEpisode func(policy.Policy) error) ([]float64, error) {
	if p == nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: nil policy", b.name)
	}
	if episodes < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: cannot run %d "+
			"episodes", b.name, episodes)
	}

	for i := range b.values {
		b.values[i] = 0
	}
	if reset != nil {
		reset()
	}

	glog.V(1).Infof("%s: evaluating policy for %d episodes over %d states",
		b.name, episodes, len(b.values))

	for i := 0; i < episodes; i++ {
		if err := runEpisode(p); err != nil {
			return nil, errors.Wrapf(err, "%s: episode %d", b.name, i)
		}
		b.endEpisode(i)
	}

	return b.ValueTable(), nil
}

// reset resets the environment, starting a new episode
func (b *base) reset() (timestep.TimeStep, error) {
	step, err := b.env.Reset()
	if err != nil {
		return step, err
	}
	if err := b.checkState(step.State); err != nil {
		return step, err
	}

	b.track(step)
	return step, nil
}

// step takes action in the environment
func (b *base) step(action int) (timestep.TimeStep, bool, error) {
	step, done, err := b.env.Step(action)
	if err != nil {
		return step, done, err
	}
	if err := b.checkState(step.State); err != nil {
		return step, done, err
	}

	b.track(step)
	return step, done, nil
}

// checkState ensures a state index returned by the environment can
// index the value table
func (b *base) checkState(state int) error {
	if state < 0 || state >= len(b.values) {
		return errors.Errorf("environment returned state %d, outside "+
			"[0, %d)", state, len(b.values))
	}
	return nil
}

// track sends a TimeStep to all registered trackers
func (b *base) track(step timestep.TimeStep) {
	for _, t := range b.trackers {
		t.Track(step)
	}
	if step.Last() {
		glog.V(2).Infof("%s: episode finished after %d steps", b.name,
			step.Number)
	}
}

// endEpisode sends the value table to all registered EpisodeTrackers
func (b *base) endEpisode(episode int) {
	for _, t := range b.trackers {
		if et, ok := t.(trackers.EpisodeTracker); ok {
			et.TrackEpisode(episode, b.values)
		}
	}
}

// tdError returns the one-step TD error of a transition from a state
// with value current to a state with value next. Explicit conversions
// keep the rounding of each operation fixed, so that every evaluator
// computes bit-identical errors.
func tdError(reward, discount, next, current float64) float64 {
	target := float64(reward + float64(discount*next))
	return float64(target - current)
}

// validateAlpha ensures a step size is in (0, 1]
func validateAlpha(alpha float64) error {
	if !(alpha > 0 && alpha <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "step size %v not in (0, 1]",
			alpha)
	}
	return nil
}
