package prediction_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment/tabular"
	"github.com/samuelfneumann/gopredict/policy"
	"github.com/samuelfneumann/gopredict/timestep"
	"github.com/stretchr/testify/require"
)

// chainConfig describes a deterministic chain c0 -> c1 -> c2 -> end
// with rewards 1, 2, 3 and discount 0.9. Its true values are
// (5.23, 4.7, 3, 0).
func chainConfig() tabular.Config {
	return tabular.Config{
		Discount: 0.9,
		Start:    "c0",
		States:   []string{"c0", "c1", "c2", "end"},
		Actions:  []string{"go"},
		Transitions: map[string]map[string]map[string]float64{
			"c0": {"go": {"c1": 1.0}},
			"c1": {"go": {"c2": 1.0}},
			"c2": {"go": {"end": 1.0}},
		},
		Rewards: map[string]map[string]float64{
			"c0": {"go": 1},
			"c1": {"go": 2},
			"c2": {"go": 3},
		},
	}
}

var chainValues = []float64{1 + 0.9*(2+0.9*3), 2 + 0.9*3, 3, 0}

// branchConfig describes a state which moves to one of two states with
// equal probability, each of which then ends the episode. Rewards are
// deterministic and the discount is 0.9.
func branchConfig() tabular.Config {
	return tabular.Config{
		Discount: 0.9,
		Start:    "root",
		States:   []string{"root", "left", "right", "end"},
		Actions:  []string{"go"},
		Transitions: map[string]map[string]map[string]float64{
			"root":  {"go": {"left": 0.5, "right": 0.5}},
			"left":  {"go": {"end": 1.0}},
			"right": {"go": {"end": 1.0}},
		},
		Rewards: map[string]map[string]float64{
			"root":  {"go": 1},
			"left":  {"go": 2},
			"right": {"go": 2.1},
		},
	}
}

var branchValues = []float64{1 + 0.9*(2+2.1)/2, 2, 2.1, 0}

func newBranch(t testing.TB, seed uint64) (*tabular.MDP,
	*policy.Deterministic) {
	t.Helper()
	m := newMDP(t, branchConfig(), seed)
	p, err := policy.NewDeterministic([]int{0, 0, 0, -1}, 1)
	require.NoError(t, err)
	return m, p
}

// loopConfig describes a single state which loops back to itself or
// ends the episode with equal probability, earning 1 per step
func loopConfig() tabular.Config {
	return tabular.Config{
		Discount: 1.0,
		Start:    "loop",
		States:   []string{"loop", "end"},
		Actions:  []string{"stay"},
		Transitions: map[string]map[string]map[string]float64{
			"loop": {"stay": {"loop": 0.5, "end": 0.5}},
		},
		Rewards: map[string]map[string]float64{
			"loop": {"stay": 1},
		},
	}
}

// foreverConfig describes a state which can never be left
func foreverConfig() tabular.Config {
	return tabular.Config{
		Discount: 0.5,
		Start:    "stuck",
		States:   []string{"stuck", "unreachable"},
		Actions:  []string{"wait"},
		Transitions: map[string]map[string]map[string]float64{
			"stuck": {"wait": {"stuck": 1.0}},
		},
		Rewards: map[string]map[string]float64{
			"stuck": {"wait": 1},
		},
	}
}

func newMDP(t testing.TB, c tabular.Config, seed uint64) *tabular.MDP {
	t.Helper()
	m, err := tabular.New(c, seed)
	require.NoError(t, err)
	return m
}

func newChain(t testing.TB) (*tabular.MDP, policy.Policy) {
	t.Helper()
	m := newMDP(t, chainConfig(), 1)
	p, err := policy.NewDeterministic([]int{0, 0, 0, -1}, 1)
	require.NoError(t, err)
	return m, p
}

// referenceRun returns the reference MDP and a uniform random policy
// over its actions, both seeded by seed
func referenceRun(t testing.TB, seed uint64) (*tabular.MDP, *policy.Uniform) {
	t.Helper()
	m := newMDP(t, tabular.Reference(), seed)
	return m, policy.NewUniform(m.NumActions(), seed+100)
}

var errBroken = errors.New("broken environment")

// brokenEnv fails on its failAt'th step, or returns an invalid state
// index if failAt is negative
type brokenEnv struct {
	steps  int
	failAt int
}

func (b *brokenEnv) Reset() (timestep.TimeStep, error) {
	b.steps = 0
	return timestep.New(timestep.First, 0, 1, 0, 0), nil
}

func (b *brokenEnv) Step(int) (timestep.TimeStep, bool, error) {
	b.steps++
	if b.failAt < 0 {
		return timestep.New(timestep.Mid, 0, 1, 7, b.steps), false, nil
	}
	if b.steps == b.failAt {
		return timestep.TimeStep{}, false, errBroken
	}
	return timestep.New(timestep.Mid, 1, 1, 1, b.steps), false, nil
}

func (b *brokenEnv) DiscountFactor() float64 { return 1.0 }

func (b *brokenEnv) NumStates() int { return 2 }

type alwaysZero struct{}

func (alwaysZero) SelectAction(int) int { return 0 }
