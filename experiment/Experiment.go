// Package experiment implements functionality for running policy
// evaluation experiments.
//
// An experiment evaluates a single policy in a single tabular MDP with
// one or more evaluators. Each evaluator is given a fresh MDP and policy
// created from the experiment's seed, so that the results of each
// evaluator are reproducible and independent of the others. Data
// generated during evaluation is tracked with the Trackers of package
// trackers and can be saved to disk after the experiment has finished.
package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/environment/tabular"
	"github.com/samuelfneumann/gopredict/experiment/trackers"
	"github.com/samuelfneumann/gopredict/prediction"
)

// policySeedOffset separates the seed of the policy from the seed of
// the environment
const policySeedOffset = 1000

// progressWidth is the width of progress bars in characters
const progressWidth = 40

// Result holds the outcome of running a single evaluator in an
// experiment
type Result struct {
	Name string
	Type prediction.Type

	// Settings describes the hyperparameters of the evaluator
	Settings string

	// Values is the estimated state-value function after the final
	// episode
	Values []float64

	// Truth is the exact state-value function of the policy, or nil if
	// it could not be computed
	Truth []float64

	// Errors is the RMSE between the estimated and true state-value
	// functions after each episode, or nil if Truth is nil
	Errors []float64

	// Returns and Lengths are the undiscounted return and the number of
	// steps of each episode
	Returns []float64
	Lengths []int

	trackers []trackers.Tracker
}

// Run runs every evaluator of the experiment c, in the order they are
// configured, and returns their results. Defaults are applied to c
// before it is validated.
func Run(c Config) ([]Result, error) {
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "run")
	}

	results := make([]Result, 0, len(c.Evaluators))
	for _, e := range c.Evaluators {
		result, err := runEvaluator(c, e)
		if err != nil {
			return nil, errors.Wrapf(err, "run: evaluator %q", e.Name)
		}
		results = append(results, result)
	}
	return results, nil
}

// runEvaluator runs a single evaluator of the experiment c
func runEvaluator(c Config, e EvaluatorConfig) (Result, error) {
	m, err := tabular.New(*c.MDP, c.Seed)
	if err != nil {
		return Result{}, err
	}
	p, err := c.Policy.Create(m, c.Seed+policySeedOffset)
	if err != nil {
		return Result{}, err
	}

	var env environment.Environment = m
	if c.MaxSteps > 0 {
		env, err = environment.NewStepLimit(m, c.MaxSteps)
		if err != nil {
			return Result{}, err
		}
	}

	conf, err := e.Config()
	if err != nil {
		return Result{}, err
	}
	evaluator, err := conf.Create(env, p)
	if err != nil {
		return Result{}, err
	}

	returns := trackers.NewReturn(c.Output.filename(e.Name, "return"))
	lengths := trackers.NewEpisodeLength(c.Output.filename(e.Name, "length"))
	evaluator.Register(returns)
	evaluator.Register(lengths)
	result := Result{
		Name:     e.Name,
		Type:     e.Type,
		Settings: settings(evaluator),
		trackers: []trackers.Tracker{returns, lengths},
	}

	// The value error can only be tracked if the policy's state-value
	// function is known
	var valueError *trackers.ValueError
	truth, err := tabular.Solve(m, p)
	if err != nil {
		glog.Warningf("evaluator %q: not tracking value error: %v", e.Name,
			err)
	} else {
		valueError = trackers.NewValueError(truth,
			c.Output.filename(e.Name, "rmse"))
		evaluator.Register(valueError)
		result.trackers = append(result.trackers, valueError)
		result.Truth = truth
	}

	var progress *trackers.Progress
	if c.Progress != nil && c.Episodes > 0 {
		progress = trackers.NewProgress(c.Progress, e.Name, progressWidth,
			c.Episodes)
		evaluator.Register(progress)
	}

	glog.V(1).Infof("evaluator %q: running %d episodes", e.Name, c.Episodes)
	result.Values, err = evaluator.Evaluate(p, c.Episodes)
	if progress != nil {
		progress.Save()
	}
	if err != nil {
		return Result{}, err
	}

	result.Returns = returns.Data()
	result.Lengths = lengths.Data()
	if valueError != nil {
		result.Errors = valueError.Data()
	}
	return result, nil
}

// settings describes the hyperparameters of evaluator
func settings(evaluator prediction.Evaluator) string {
	switch e := evaluator.(type) {
	case *prediction.MonteCarlo:
		return fmt.Sprintf("%s-visit", e.Visit())

	case *prediction.TD:
		return fmt.Sprintf("α=%v", e.Alpha())

	case *prediction.TDLambda:
		return fmt.Sprintf("α=%v λ=%v %s traces", e.Alpha(), e.Lambda(),
			e.Trace())
	}
	return ""
}

// filename returns the file in which the data of kind generated by the
// evaluator name is saved
func (o OutputConfig) filename(name, kind string) string {
	if o.Dir == "" {
		return ""
	}
	return filepath.Join(o.Dir, name+"_"+kind+".bin")
}

// Save saves the data tracked for every result to the directory
// configured when the results were generated
func Save(results []Result) error {
	for _, result := range results {
		for _, t := range result.trackers {
			if err := t.Save(); err != nil {
				return errors.Wrapf(err, "save: evaluator %q", result.Name)
			}
		}
	}
	return nil
}

// PrepareOutput creates the output directory of the Config if needed
func (o OutputConfig) PrepareOutput() error {
	if o.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return errors.Wrap(err, "prepareOutput: could not create output "+
			"directory")
	}
	return nil
}
