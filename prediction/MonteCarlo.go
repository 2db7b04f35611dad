package prediction

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/policy"
)

// VisitType determines which visits to a state in an episode contribute
// a return to the Monte Carlo estimate of the state's value
type VisitType string

const (
	// FirstVisit averages only the return following the first visit to
	// a state in each episode
	FirstVisit VisitType = "first"

	// EveryVisit averages the returns following every visit to a state
	EveryVisit VisitType = "every"
)

// Validate ensures the VisitType is known
func (v VisitType) Validate() error {
	switch v {
	case FirstVisit, EveryVisit:
		return nil
	}
	return errors.Wrapf(ErrInvalidConfig, "unknown visit type %q", v)
}

// MonteCarlo implements Monte Carlo prediction. The value of each state
// is estimated as the sample mean of the discounted returns observed
// after visiting the state.
//
// Returns are computed by a backward scan over each finished episode,
// and each sampled return G updates the state's value incrementally:
//
//	V(s) += (G - V(s)) / N(s)
//
// where N(s) counts the returns averaged for s so far. By default only
// first visits are used (FirstVisit). States never visited keep a value
// of 0.
type MonteCarlo struct {
	base
	policy policy.Policy
	visit  VisitType
	counts []int

	// Episode buffers, reused between episodes
	states     []int
	rewards    []float64
	firstVisit []int
}

// NewMonteCarlo returns a new MonteCarlo evaluator of policy p in env.
// An empty visit type defaults to FirstVisit.
func NewMonteCarlo(env environment.Environment, p policy.Policy,
	visit VisitType) (*MonteCarlo, error) {
	if visit == "" {
		visit = FirstVisit
	}
	if err := visit.Validate(); err != nil {
		return nil, errors.Wrap(err, "newMonteCarlo")
	}

	b, err := newBase("monte carlo", env)
	if err != nil {
		return nil, err
	}

	firstVisit := make([]int, env.NumStates())
	for i := range firstVisit {
		firstVisit[i] = -1
	}

	return &MonteCarlo{
		base:       b,
		policy:     p,
		visit:      visit,
		counts:     make([]int, env.NumStates()),
		firstVisit: firstVisit,
	}, nil
}

// Run evaluates the policy the MonteCarlo evaluator was constructed
// with for the given number of episodes
func (m *MonteCarlo) Run(episodes int) ([]float64, error) {
	return m.Evaluate(m.policy, episodes)
}

// Evaluate estimates the value of policy p from episodes sampled
// episodes
func (m *MonteCarlo) Evaluate(p policy.Policy, episodes int) ([]float64,
	error) {
	return m.evaluate(p, episodes, m.resetCounts, m.runEpisode)
}

// Counts returns the number of returns averaged into each state's
// value during the last call to Evaluate
func (m *MonteCarlo) Counts() []int {
	return append([]int(nil), m.counts...)
}

// Visit returns the visit type of the evaluator
func (m *MonteCarlo) Visit() VisitType {
	return m.visit
}

func (m *MonteCarlo) resetCounts() {
	for i := range m.counts {
		m.counts[i] = 0
	}
}

// runEpisode samples an episode to completion, then updates the value
// of each visited state with its sampled return
func (m *MonteCarlo) runEpisode(p policy.Policy) error {
	m.states = m.states[:0]
	m.rewards = m.rewards[:0]

	step, err := m.reset()
	if err != nil {
		return err
	}

	for done := false; !done; {
		state := step.State
		action := p.SelectAction(state)

		step, done, err = m.step(action)
		if err != nil {
			return err
		}

		m.states = append(m.states, state)
		m.rewards = append(m.rewards, step.Reward)
	}

	// Record the time of the first visit to each state
	for t, s := range m.states {
		if m.firstVisit[s] < 0 {
			m.firstVisit[s] = t
		}
	}

	discount := m.env.DiscountFactor()
	g := 0.0
	for t := len(m.states) - 1; t >= 0; t-- {
		g = m.rewards[t] + discount*g

		s := m.states[t]
		if m.visit == FirstVisit && m.firstVisit[s] != t {
			continue
		}

		m.counts[s]++
		m.values[s] += (g - m.values[s]) / float64(m.counts[s])
	}

	for _, s := range m.states {
		m.firstVisit[s] = -1
	}
	return nil
}
