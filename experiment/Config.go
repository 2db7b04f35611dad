package experiment

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/environment/tabular"
	"github.com/samuelfneumann/gopredict/policy"
	"github.com/samuelfneumann/gopredict/prediction"
	"gopkg.in/yaml.v3"
)

// DefaultEpisodes is the number of episodes run by each evaluator in
// DefaultConfig and in loaded configs without an episodes key
const DefaultEpisodes = 1000

// ErrInvalidConfig is returned when an experiment Config is invalid
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// Config represents a configuration of an experiment: a single MDP, a
// single policy to evaluate, and the evaluators which estimate its
// state-value function.
type Config struct {
	Seed       uint64            `yaml:"seed"`
	Episodes   int               `yaml:"episodes"`
	MaxSteps   int               `yaml:"max_steps,omitempty"`
	MDP        *tabular.Config   `yaml:"mdp,omitempty"`
	Policy     PolicyConfig      `yaml:"policy"`
	Evaluators []EvaluatorConfig `yaml:"evaluators"`
	Output     OutputConfig      `yaml:"output,omitempty"`

	// Progress, if set, receives a progress bar for each evaluator
	Progress io.Writer `yaml:"-"`
}

// OutputConfig determines where the data of an experiment is saved.
// Tracker data is saved in Dir, a chart of the value error of each
// evaluator is saved to Chart, and an image of the final state values
// is saved to Image. Empty fields disable saving.
type OutputConfig struct {
	Dir   string `yaml:"dir,omitempty"`
	Chart string `yaml:"chart,omitempty"`
	Image string `yaml:"image,omitempty"`
}

// DefaultConfig returns the default experiment: the uniform random
// policy on the reference MDP, evaluated by Monte Carlo, TD(0) with
// α = 0.1, and TD(λ) with α = 0.1 and λ = 0.9.
func DefaultConfig() Config {
	c := Config{Episodes: DefaultEpisodes}
	c.SetDefaults()
	return c
}

// Load reads a YAML experiment Config from path. Unknown fields are an
// error. Defaults are applied to the Config before it is validated, and
// an absent episodes key means DefaultEpisodes.
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "load: could not open config")
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)

	c := Config{Episodes: DefaultEpisodes}
	if err := dec.Decode(&c); err != nil {
		return Config{}, errors.Wrapf(err, "load: could not decode %v", path)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "load: %v", path)
	}
	return c, nil
}

// SetDefaults fills in the unset fields of the Config. Episodes is
// never changed, since running 0 episodes is valid.
func (c *Config) SetDefaults() {
	if c.MDP == nil {
		ref := tabular.Reference()
		c.MDP = &ref
	}
	if c.Policy.Type == "" {
		c.Policy.Type = UniformPolicy
	}
	if len(c.Evaluators) == 0 {
		c.Evaluators = []EvaluatorConfig{
			{Type: prediction.MonteCarloType},
			{Type: prediction.TDType, Alpha: 0.1},
			{Type: prediction.TDLambdaType, Alpha: 0.1, Lambda: 0.9},
		}
	}
	for i := range c.Evaluators {
		if c.Evaluators[i].Name == "" {
			c.Evaluators[i].Name = string(c.Evaluators[i].Type)
		}
	}
}

// Validate ensures the Config is valid
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return errors.Wrapf(ErrInvalidConfig, "cannot run %d episodes",
			c.Episodes)
	}
	if c.MaxSteps < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative step limit %d",
			c.MaxSteps)
	}
	if c.MDP == nil {
		return errors.Wrap(ErrInvalidConfig, "no MDP")
	}
	if err := c.MDP.Validate(); err != nil {
		return err
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}

	if len(c.Evaluators) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no evaluators")
	}
	names := make(map[string]bool, len(c.Evaluators))
	for _, e := range c.Evaluators {
		if names[e.Name] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate evaluator "+
				"name %q", e.Name)
		}
		names[e.Name] = true

		conf, err := e.Config()
		if err != nil {
			return err
		}
		if err := conf.Validate(); err != nil {
			return errors.Wrapf(err, "evaluator %q", e.Name)
		}
	}
	return nil
}

// EvaluatorConfig configures a single evaluator of an experiment. Only
// the fields used by Type are read.
type EvaluatorConfig struct {
	Name   string               `yaml:"name,omitempty"`
	Type   prediction.Type      `yaml:"type"`
	Alpha  float64              `yaml:"alpha,omitempty"`
	Lambda float64              `yaml:"lambda,omitempty"`
	Visit  prediction.VisitType `yaml:"visit,omitempty"`
	Trace  prediction.TraceType `yaml:"trace,omitempty"`
}

// Config returns the prediction.Config described by the EvaluatorConfig
func (e EvaluatorConfig) Config() (prediction.Config, error) {
	switch e.Type {
	case prediction.MonteCarloType:
		return prediction.MonteCarloConfig{Visit: e.Visit}, nil

	case prediction.TDType:
		return prediction.TDConfig{Alpha: e.Alpha}, nil

	case prediction.TDLambdaType:
		return prediction.TDLambdaConfig{
			Alpha:  e.Alpha,
			Lambda: e.Lambda,
			Trace:  e.Trace,
		}, nil
	}

	return nil, errors.Wrapf(ErrInvalidConfig, "unknown evaluator type %q",
		e.Type)
}

// PolicyType describes a kind of policy
type PolicyType string

const (
	UniformPolicy       PolicyType = "uniform"
	TabularPolicy       PolicyType = "tabular"
	DeterministicPolicy PolicyType = "deterministic"
	EGreedyPolicy       PolicyType = "egreedy"
)

// PolicyConfig configures the policy evaluated in an experiment. States
// and actions are referred to by name.
//
// A uniform policy selects uniformly between the actions available in
// each state. A tabular policy uses the action probabilities in
// Probabilities (state -> action -> probability). Deterministic and
// ε-greedy policies prefer the action Actions[state], and ε-greedy
// policies select a random action with probability Epsilon. States
// missing from Probabilities or Actions have no action selected in them.
type PolicyConfig struct {
	Type          PolicyType                    `yaml:"type"`
	Probabilities map[string]map[string]float64 `yaml:"probabilities,omitempty"`
	Actions       map[string]string             `yaml:"actions,omitempty"`
	Epsilon       float64                       `yaml:"epsilon,omitempty"`
}

// Validate checks the parts of the PolicyConfig which do not depend on
// the MDP
func (p PolicyConfig) Validate() error {
	switch p.Type {
	case UniformPolicy, TabularPolicy, DeterministicPolicy:
		return nil

	case EGreedyPolicy:
		if p.Epsilon < 0 || p.Epsilon > 1 {
			return errors.Wrapf(ErrInvalidConfig, "epsilon %v not in [0, 1]",
				p.Epsilon)
		}
		return nil
	}

	return errors.Wrapf(ErrInvalidConfig, "unknown policy type %q", p.Type)
}

// Create creates the policy described by the PolicyConfig over the
// states and actions of m
func (p PolicyConfig) Create(m *tabular.MDP, seed uint64) (
	policy.Distribution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p.Type {
	case UniformPolicy:
		return uniform(m, seed)

	case TabularPolicy:
		table := make([][]float64, m.NumStates())
		for state, byAction := range p.Probabilities {
			s, ok := m.StateIndex(state)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidConfig, "policy: unknown "+
					"state %q", state)
			}

			table[s] = make([]float64, m.NumActions())
			for action, prob := range byAction {
				a, ok := m.ActionIndex(action)
				if !ok {
					return nil, errors.Wrapf(ErrInvalidConfig, "policy: "+
						"unknown action %q", action)
				}
				table[s][a] = prob
			}
		}
		return policy.NewTabular(table, m.NumActions(), seed)

	case DeterministicPolicy, EGreedyPolicy:
		actions := make([]int, m.NumStates())
		for s := range actions {
			actions[s] = -1
		}
		for state, action := range p.Actions {
			s, ok := m.StateIndex(state)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidConfig, "policy: unknown "+
					"state %q", state)
			}
			a, ok := m.ActionIndex(action)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidConfig, "policy: unknown "+
					"action %q", action)
			}
			actions[s] = a
		}

		if p.Type == DeterministicPolicy {
			return policy.NewDeterministic(actions, m.NumActions())
		}
		return policy.NewEGreedy(actions, m.NumActions(), p.Epsilon, seed)
	}

	panic(fmt.Sprintf("create: unhandled policy type %v", p.Type))
}

// uniform returns the uniform random policy over the actions available
// in each state of m
func uniform(m *tabular.MDP, seed uint64) (policy.Distribution, error) {
	allAvailable := true
	table := make([][]float64, m.NumStates())
	for s := range table {
		if m.Terminal(s) {
			continue
		}

		available := m.Actions(s)
		if len(available) != m.NumActions() {
			allAvailable = false
		}
		table[s] = make([]float64, m.NumActions())
		for _, a := range available {
			table[s][a] = 1.0 / float64(len(available))
		}
	}

	if allAvailable {
		return policy.NewUniform(m.NumActions(), seed), nil
	}
	return policy.NewTabular(table, m.NumActions(), seed)
}
