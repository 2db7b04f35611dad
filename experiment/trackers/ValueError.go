package trackers

import (
	"fmt"
	"math"

	ts "github.com/samuelfneumann/gopredict/timestep"
	"gonum.org/v1/gonum/floats"
)

// ValueError tracks the root mean squared error between an evaluator's
// value table and the true state-value function at the end of every
// episode
type ValueError struct {
	truth    []float64
	errors   []float64
	filename string
}

// NewValueError returns a new ValueError Tracker which measures error
// against the true values truth and saves its data to filename
func NewValueError(truth []float64, filename string) *ValueError {
	if len(truth) == 0 {
		panic("newValueError: no true values to compare against")
	}
	return &ValueError{
		truth:    append([]float64(nil), truth...),
		filename: filename,
	}
}

// Track ignores TimeSteps, errors are only measured between episodes
func (v *ValueError) Track(ts.TimeStep) {}

// TrackEpisode records the RMSE of values at the end of an episode
func (v *ValueError) TrackEpisode(episode int, values []float64) {
	if len(values) != len(v.truth) {
		panic(fmt.Sprintf("trackEpisode: value table has %d states, want %d",
			len(values), len(v.truth)))
	}

	dist := floats.Distance(values, v.truth, 2)
	v.errors = append(v.errors, dist/math.Sqrt(float64(len(values))))
}

// Data returns the RMSE recorded after each episode
func (v *ValueError) Data() []float64 {
	return append([]float64(nil), v.errors...)
}

// Save saves the data tracked by the ValueError Tracker to disk.
func (v *ValueError) Save() error {
	return save(v.filename, v.errors)
}
