package prediction

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/policy"
	"gonum.org/v1/gonum/floats"
)

// TraceType determines how the eligibility trace of a state is
// incremented when the state is visited
type TraceType string

const (
	// Accumulating traces add 1 to the trace on each visit
	Accumulating TraceType = "accumulating"

	// Replacing traces set the trace to 1 on each visit
	Replacing TraceType = "replacing"
)

// Validate ensures the TraceType is known
func (t TraceType) Validate() error {
	switch t {
	case Accumulating, Replacing:
		return nil
	}
	return errors.Wrapf(ErrInvalidConfig, "unknown trace type %q", t)
}

// TDLambda implements backward-view TD(λ) prediction with eligibility
// traces. On each step the TD error δ of the transition is computed as
// in TD(0), the trace of the current state is incremented, and then for
// every state s:
//
//	V(s) += α δ e(s)
//	e(s) *= γλ
//
// Traces are reset to zero at the start of every episode. With λ = 0
// the updates are exactly those of TD(0); with λ = 1 and accumulating
// traces they are an online equivalent of every-visit Monte Carlo.
type TDLambda struct {
	base
	alpha     float64
	lambda    float64
	traceType TraceType
	trace     []float64
}

// NewTDLambda returns a new TD(λ) evaluator in env with step size alpha
// and trace decay lambda. An empty trace type defaults to Accumulating.
func NewTDLambda(env environment.Environment, alpha, lambda float64,
	trace TraceType) (*TDLambda, error) {
	if trace == "" {
		trace = Accumulating
	}
	if err := trace.Validate(); err != nil {
		return nil, errors.Wrap(err, "newTDLambda")
	}
	if err := validateAlpha(alpha); err != nil {
		return nil, errors.Wrap(err, "newTDLambda")
	}
	if lambda < 0 || lambda > 1 || math.IsNaN(lambda) {
		return nil, errors.Wrapf(ErrInvalidConfig, "newTDLambda: lambda %v "+
			"not in [0, 1]", lambda)
	}

	b, err := newBase("td(λ)", env)
	if err != nil {
		return nil, err
	}

	return &TDLambda{
		base:      b,
		alpha:     alpha,
		lambda:    lambda,
		traceType: trace,
		trace:     make([]float64, env.NumStates()),
	}, nil
}

// Evaluate estimates the value of policy p from episodes sampled
// episodes
func (l *TDLambda) Evaluate(p policy.Policy, episodes int) ([]float64,
	error) {
	return l.evaluate(p, episodes, nil, l.runEpisode)
}

// Alpha returns the step size
func (l *TDLambda) Alpha() float64 {
	return l.alpha
}

// Lambda returns the trace decay parameter
func (l *TDLambda) Lambda() float64 {
	return l.lambda
}

// Trace returns the trace type
func (l *TDLambda) Trace() TraceType {
	return l.traceType
}

// runEpisode samples an episode, updating the value table online
func (l *TDLambda) runEpisode(p policy.Policy) error {
	for i := range l.trace {
		l.trace[i] = 0
	}

	step, err := l.reset()
	if err != nil {
		return err
	}

	discount := l.env.DiscountFactor()
	decay := discount * l.lambda
	for done := false; !done; {
		state := step.State
		action := p.SelectAction(state)

		step, done, err = l.step(action)
		if err != nil {
			return err
		}

		delta := tdError(step.Reward, discount, l.values[step.State],
			l.values[state])

		switch l.traceType {
		case Replacing:
			l.trace[state] = 1
		default:
			l.trace[state]++
		}

		// States with zero trace are unchanged by the update
		scale := float64(l.alpha * delta)
		for s, e := range l.trace {
			if e != 0 {
				l.values[s] += float64(scale * e)
			}
		}
		floats.Scale(decay, l.trace)
	}

	return nil
}
