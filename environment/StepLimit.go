package environment

import (
	"fmt"

	"github.com/samuelfneumann/gopredict/timestep"
)

// StepLimit wraps an Environment and ends episodes once a fixed number
// of steps has been taken. Environments that may never reach a terminal
// state should be wrapped in a StepLimit before being evaluated.
//
// The TimeStep at which the limit is reached has its StepType set to
// timestep.Last, even though the wrapped Environment has not reached a
// terminal state.
type StepLimit struct {
	Environment
	episodeSteps int
}

// NewStepLimit returns a new StepLimit which ends episodes of env after
// episodeSteps steps
func NewStepLimit(env Environment, episodeSteps int) (*StepLimit, error) {
	if episodeSteps <= 0 {
		return nil, fmt.Errorf("newStepLimit: episode step limit must be "+
			"positive, got %d", episodeSteps)
	}
	return &StepLimit{env, episodeSteps}, nil
}

// Step takes one step in the wrapped Environment, ending the episode if
// the step limit has been reached. Errors from the wrapped Environment
// are returned unchanged.
func (s *StepLimit) Step(action int) (timestep.TimeStep, bool, error) {
	step, done, err := s.Environment.Step(action)
	if err != nil {
		return step, done, err
	}

	if !done && s.End(&step) {
		done = true
	}
	return step, done, nil
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last
func (s *StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number >= s.episodeSteps {
		t.StepType = timestep.Last
		return true
	}
	return false
}

// Limit returns the maximum number of steps in an episode
func (s *StepLimit) Limit() int {
	return s.episodeSteps
}
