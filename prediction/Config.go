package prediction

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/policy"
)

// Type describes a kind of evaluator
type Type string

const (
	MonteCarloType Type = "mc"
	TDType         Type = "td"
	TDLambdaType   Type = "td-lambda"
)

// Config represents a configuration for creating an evaluator
type Config interface {
	// Create creates the evaluator that the config describes. The
	// policy p is the policy bound to evaluators which store one.
	Create(env environment.Environment, p policy.Policy) (Evaluator, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of evaluator created by the Config
	Type() Type
}

// MonteCarloConfig configures a MonteCarlo evaluator
type MonteCarloConfig struct {
	Visit VisitType `yaml:"visit" json:"visit"`
}

// Create creates a MonteCarlo evaluator of p in env
func (c MonteCarloConfig) Create(env environment.Environment,
	p policy.Policy) (Evaluator, error) {
	return NewMonteCarlo(env, p, c.Visit)
}

// Validate ensures the Config is valid
func (c MonteCarloConfig) Validate() error {
	if c.Visit == "" {
		return nil
	}
	return c.Visit.Validate()
}

// Type returns MonteCarloType
func (c MonteCarloConfig) Type() Type {
	return MonteCarloType
}

// TDConfig configures a TD(0) evaluator
type TDConfig struct {
	Alpha float64 `yaml:"alpha" json:"alpha"`
}

// Create creates a TD evaluator in env. The policy is not stored by the
// evaluator.
func (c TDConfig) Create(env environment.Environment,
	_ policy.Policy) (Evaluator, error) {
	return NewTD(env, c.Alpha)
}

// Validate ensures the Config is valid
func (c TDConfig) Validate() error {
	return validateAlpha(c.Alpha)
}

// Type returns TDType
func (c TDConfig) Type() Type {
	return TDType
}

// TDLambdaConfig configures a TD(λ) evaluator
type TDLambdaConfig struct {
	Alpha  float64   `yaml:"alpha" json:"alpha"`
	Lambda float64   `yaml:"lambda" json:"lambda"`
	Trace  TraceType `yaml:"trace" json:"trace"`
}

// Create creates a TDLambda evaluator in env. The policy is not stored
// by the evaluator.
func (c TDLambdaConfig) Create(env environment.Environment,
	_ policy.Policy) (Evaluator, error) {
	return NewTDLambda(env, c.Alpha, c.Lambda, c.Trace)
}

// Validate ensures the Config is valid
func (c TDLambdaConfig) Validate() error {
	if err := validateAlpha(c.Alpha); err != nil {
		return err
	}
	if !(c.Lambda >= 0 && c.Lambda <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "lambda %v not in [0, 1]",
			c.Lambda)
	}
	if c.Trace == "" {
		return nil
	}
	return c.Trace.Validate()
}

// Type returns TDLambdaType
func (c TDLambdaConfig) Type() Type {
	return TDLambdaType
}
