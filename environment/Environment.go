// Package environment outlines the interfaces and structs needed to
// implement concrete tabular environments
package environment

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/timestep"
)

var (
	// ErrEpisodeOver is returned when Step is called on an environment
	// whose episode has ended, or which has never been reset
	ErrEpisodeOver = errors.New("episode is over, environment must be reset")

	// ErrInvalidAction is returned when an action is not supported in
	// the environment's current state
	ErrInvalidAction = errors.New("invalid action")
)

// Starter implements a distribution of starting states and samples starting
// state indices for environments
type Starter interface {
	Start() int
}

// Environment implements a simulated environment with a finite number of
// enumerable states. States are identified by their dense index in
// [0, NumStates()).
//
// Reset begins a new episode and returns its first TimeStep. Step takes
// an action in the current state and returns the resulting TimeStep
// together with whether the episode has ended.
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action int) (timestep.TimeStep, bool, error)
	DiscountFactor() float64
	NumStates() int
}
