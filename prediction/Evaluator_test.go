package prediction_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/environment/tabular"
	"github.com/samuelfneumann/gopredict/experiment/trackers"
	"github.com/samuelfneumann/gopredict/policy"
	"github.com/samuelfneumann/gopredict/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evaluators returns one evaluator of each kind in env
func evaluators(t *testing.T, env environment.Environment,
	p policy.Policy) map[string]prediction.Evaluator {
	t.Helper()

	mc, err := prediction.NewMonteCarlo(env, p, prediction.FirstVisit)
	require.NoError(t, err)
	td, err := prediction.NewTD(env, 0.1)
	require.NoError(t, err)
	tdl, err := prediction.NewTDLambda(env, 0.1, 0.9, prediction.Accumulating)
	require.NoError(t, err)

	return map[string]prediction.Evaluator{"mc": mc, "td": td, "td-lambda": tdl}
}

func TestZeroEpisodes(t *testing.T) {
	m, p := referenceRun(t, 1)
	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			v, err := e.Evaluate(p, 0)
			require.NoError(t, err)
			assert.Equal(t, make([]float64, m.NumStates()), v)
		})
	}
}

func TestEvaluateResetsBetweenCalls(t *testing.T) {
	m, p := newChain(t)
	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			first, err := e.Evaluate(p, 25)
			require.NoError(t, err)

			second, err := e.Evaluate(p, 25)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			zero, err := e.Evaluate(p, 0)
			require.NoError(t, err)
			assert.Equal(t, make([]float64, m.NumStates()), zero)
		})
	}
}

func TestReturnedTableIsACopy(t *testing.T) {
	m, p := newChain(t)
	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			v, err := e.Evaluate(p, 10)
			require.NoError(t, err)
			want := append([]float64(nil), v...)

			v[0] = 1000
			assert.Equal(t, want, e.ValueTable())

			table := e.ValueTable()
			table[1] = -1000
			assert.Equal(t, want, e.ValueTable())
		})
	}
}

func TestTerminalValueStaysZero(t *testing.T) {
	m, p := referenceRun(t, 3)
	terminal, ok := m.StateIndex("s3")
	require.True(t, ok)

	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			v, err := e.Evaluate(p, 500)
			require.NoError(t, err)
			assert.Equal(t, 0.0, v[terminal])
		})
	}
}

// TestReferenceSanity runs each evaluator on the reference MDP for 1000
// episodes under the uniform random policy, with the hyperparameters
// used by the reference program.
func TestReferenceSanity(t *testing.T) {
	m, p := referenceRun(t, 42)
	terminal, _ := m.StateIndex("s3")

	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			v, err := e.Evaluate(p, 1000)
			require.NoError(t, err)
			require.Len(t, v, m.NumStates())

			assert.Equal(t, 0.0, v[terminal])
			for s, value := range v {
				assert.False(t, math.IsNaN(value) || math.IsInf(value, 0),
					"state %d has value %v", s, value)
				assert.Greater(t, value, -5.0, "state %d", s)
				assert.Less(t, value, 5.0, "state %d", s)
			}
		})
	}
}

func TestEnvironmentErrorsPropagate(t *testing.T) {
	env := &brokenEnv{failAt: 3}
	for name, e := range evaluators(t, env, alwaysZero{}) {
		t.Run(name, func(t *testing.T) {
			_, err := e.Evaluate(alwaysZero{}, 5)
			require.Error(t, err)
			assert.ErrorIs(t, err, errBroken)
		})
	}
}

func TestInvalidStateIndex(t *testing.T) {
	env := &brokenEnv{failAt: -1}
	for name, e := range evaluators(t, env, alwaysZero{}) {
		t.Run(name, func(t *testing.T) {
			_, err := e.Evaluate(alwaysZero{}, 1)
			assert.Error(t, err)
		})
	}
}

func TestStepLimitBoundsEpisodes(t *testing.T) {
	m := newMDP(t, foreverConfig(), 1)
	env, err := environment.NewStepLimit(m, 10)
	require.NoError(t, err)
	p, err := policy.NewDeterministic([]int{0, -1}, 1)
	require.NoError(t, err)

	for name, e := range evaluators(t, env, p) {
		t.Run(name, func(t *testing.T) {
			lengths := trackers.NewEpisodeLength("")
			e.Register(lengths)

			_, err := e.Evaluate(p, 3)
			require.NoError(t, err)
			assert.Equal(t, []int{10, 10, 10}, lengths.Data())
		})
	}
}

func TestInvalidEpisodes(t *testing.T) {
	m, p := newChain(t)
	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			_, err := e.Evaluate(p, -1)
			assert.ErrorIs(t, err, prediction.ErrInvalidConfig)

			_, err = e.Evaluate(nil, 1)
			assert.ErrorIs(t, err, prediction.ErrInvalidConfig)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	m, p := newChain(t)

	alphas := []float64{0, -0.1, 1.5, math.NaN()}
	for _, alpha := range alphas {
		_, err := prediction.NewTD(m, alpha)
		assert.ErrorIs(t, err, prediction.ErrInvalidConfig, "alpha %v", alpha)

		_, err = prediction.NewTDLambda(m, alpha, 0.5, prediction.Accumulating)
		assert.ErrorIs(t, err, prediction.ErrInvalidConfig, "alpha %v", alpha)
	}

	lambdas := []float64{-0.1, 1.1, math.NaN()}
	for _, lambda := range lambdas {
		_, err := prediction.NewTDLambda(m, 0.1, lambda, prediction.Replacing)
		assert.ErrorIs(t, err, prediction.ErrInvalidConfig, "lambda %v",
			lambda)
	}

	_, err := prediction.NewTDLambda(m, 0.1, 0.5, "dutch")
	assert.ErrorIs(t, err, prediction.ErrInvalidConfig)

	_, err = prediction.NewMonteCarlo(m, p, "sometimes")
	assert.ErrorIs(t, err, prediction.ErrInvalidConfig)

	_, err = prediction.NewTD(nil, 0.1)
	assert.ErrorIs(t, err, prediction.ErrInvalidConfig)

	// Boundaries are valid
	_, err = prediction.NewTD(m, 1)
	assert.NoError(t, err)
	_, err = prediction.NewTDLambda(m, 1, 0, prediction.Accumulating)
	assert.NoError(t, err)
	_, err = prediction.NewTDLambda(m, 1, 1, prediction.Accumulating)
	assert.NoError(t, err)
}

func TestConfigCreate(t *testing.T) {
	m, p := newChain(t)

	tests := []struct {
		config prediction.Config
		valid  bool
	}{
		{prediction.MonteCarloConfig{}, true},
		{prediction.MonteCarloConfig{Visit: prediction.EveryVisit}, true},
		{prediction.MonteCarloConfig{Visit: "never"}, false},
		{prediction.TDConfig{Alpha: 0.5}, true},
		{prediction.TDConfig{Alpha: 0}, false},
		{prediction.TDLambdaConfig{Alpha: 0.5, Lambda: 0.5}, true},
		{prediction.TDLambdaConfig{Alpha: 0.5, Lambda: 2}, false},
		{prediction.TDLambdaConfig{Alpha: 0.5, Lambda: 0.5, Trace: "x"}, false},
	}

	for _, test := range tests {
		err := test.config.Validate()
		e, createErr := test.config.Create(m, p)
		if !test.valid {
			assert.Error(t, err, "%#v", test.config)
			assert.Error(t, createErr, "%#v", test.config)
			continue
		}

		require.NoError(t, err, "%#v", test.config)
		require.NoError(t, createErr, "%#v", test.config)

		switch test.config.Type() {
		case prediction.MonteCarloType:
			assert.IsType(t, &prediction.MonteCarlo{}, e)
		case prediction.TDType:
			assert.IsType(t, &prediction.TD{}, e)
		case prediction.TDLambdaType:
			assert.IsType(t, &prediction.TDLambda{}, e)
		}
	}
}

func TestTrackersReceiveEveryEpisode(t *testing.T) {
	m, p := newChain(t)
	for name, e := range evaluators(t, m, p) {
		t.Run(name, func(t *testing.T) {
			returns := trackers.NewReturn("")
			lengths := trackers.NewEpisodeLength("")
			errs := trackers.NewValueError(chainValues, "")
			e.Register(returns)
			e.Register(lengths)
			e.Register(errs)

			_, err := e.Evaluate(p, 4)
			require.NoError(t, err)

			assert.Equal(t, []float64{6, 6, 6, 6}, returns.Data())
			assert.Equal(t, []int{3, 3, 3, 3}, lengths.Data())
			require.Len(t, errs.Data(), 4)
		})
	}
}

func TestEvaluatorsAreDeterministic(t *testing.T) {
	configs := map[string]prediction.Config{
		"mc":        prediction.MonteCarloConfig{},
		"td":        prediction.TDConfig{Alpha: 0.1},
		"td-lambda": prediction.TDLambdaConfig{Alpha: 0.1, Lambda: 0.9},
	}

	for name, c := range configs {
		t.Run(name, func(t *testing.T) {
			var results [][]float64
			for i := 0; i < 2; i++ {
				m, p := referenceRun(t, 2024)
				e, err := c.Create(m, p)
				require.NoError(t, err)

				v, err := e.Evaluate(p, 300)
				require.NoError(t, err)
				results = append(results, v)
			}
			assert.Equal(t, results[0], results[1])
		})
	}
}

func TestTDConvergesOnBranch(t *testing.T) {
	m, p := newBranch(t, 5)

	truth, err := tabular.Solve(m, p)
	require.NoError(t, err)
	assert.InDeltaSlice(t, branchValues, truth, 1e-12)

	td, err := prediction.NewTD(m, 0.05)
	require.NoError(t, err)

	v, err := td.Evaluate(p, 5_000)
	require.NoError(t, err)
	assert.InDeltaSlice(t, truth, v, 0.05)
}

func BenchmarkTDLambdaReference(b *testing.B) {
	m, p := referenceRun(b, 9)
	tdl, err := prediction.NewTDLambda(m, 0.1, 0.9, prediction.Accumulating)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tdl.Evaluate(p, 100); err != nil {
			b.Fatal(err)
		}
	}
}
