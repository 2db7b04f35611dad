// Package tabular implements finite Markov Decision Processes whose
// states and actions can be fully enumerated.
//
// An MDP is described by a Config, which names each state and action
// and gives the transition probabilities and rewards of every
// state-action pair. The MDP samples transitions from these tables, and
// its dynamics can be used to compute the exact value function of a
// policy with Solve.
package tabular

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gopredict/environment"
	"github.com/samuelfneumann/gopredict/timestep"
	"gonum.org/v1/gonum/stat/distuv"
)

// outcomes stores the possible next states of a state-action pair
type outcomes struct {
	next []int
	prob []float64
	dist distuv.Categorical
}

// MDP implements a finite Markov Decision Process which is sampled
// from to produce transitions. MDP satisfies environment.Environment.
type MDP struct {
	environment.Starter
	states      []string
	actions     []string
	stateIndex  map[string]int
	actionIndex map[string]int

	// transitions[s][a] is nil if action a is unavailable in state s
	transitions [][]*outcomes
	rewards     [][]float64
	terminal    []bool
	discount    float64

	currentStep timestep.TimeStep
	running     bool
}

// New creates a new MDP described by the Config c. All randomness in
// the MDP, including sampling starting states, is seeded by seed.
func New(c Config, seed uint64) (*MDP, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}

	m := &MDP{
		states:      append([]string(nil), c.States...),
		actions:     append([]string(nil), c.Actions...),
		stateIndex:  make(map[string]int, len(c.States)),
		actionIndex: make(map[string]int, len(c.Actions)),
		transitions: make([][]*outcomes, len(c.States)),
		rewards:     make([][]float64, len(c.States)),
		terminal:    make([]bool, len(c.States)),
		discount:    c.Discount,
	}
	for i, s := range m.states {
		m.stateIndex[s] = i
	}
	for i, a := range m.actions {
		m.actionIndex[a] = i
	}

	// Build the transition tables in index order so that sampling does
	// not depend on map iteration order
	source := rand.NewSource(seed)
	var nonTerminal []int
	for s, state := range m.states {
		m.transitions[s] = make([]*outcomes, len(m.actions))
		m.rewards[s] = make([]float64, len(m.actions))

		byAction := c.Transitions[state]
		m.terminal[s] = len(byAction) == 0
		if !m.terminal[s] {
			nonTerminal = append(nonTerminal, s)
		}

		for a, action := range m.actions {
			m.rewards[s][a] = c.Rewards[state][action]

			next, ok := byAction[action]
			if !ok {
				continue
			}

			o := &outcomes{}
			for ns, nextState := range m.states {
				if p, ok := next[nextState]; ok && p > 0 {
					o.next = append(o.next, ns)
					o.prob = append(o.prob, p)
				}
			}
			o.dist = distuv.NewCategorical(o.prob, source)
			m.transitions[s][a] = o
		}
	}

	if c.Start != "" {
		m.Starter = environment.FixedStarter(m.stateIndex[c.Start])
	} else {
		m.Starter = environment.NewUniformStarter(len(m.states), nonTerminal,
			seed+1)
	}

	glog.V(1).Infof("tabular: created MDP with %d states (%d terminal) "+
		"and %d actions", len(m.states), len(m.states)-len(nonTerminal),
		len(m.actions))

	return m, nil
}

// Reset resets the MDP to a starting state, beginning a new episode
func (m *MDP) Reset() (timestep.TimeStep, error) {
	state := m.Start()
	if state < 0 || state >= len(m.states) || m.terminal[state] {
		return timestep.TimeStep{}, errors.Errorf("reset: invalid starting "+
			"state %d", state)
	}

	m.currentStep = timestep.New(timestep.First, 0, m.discount, state, 0)
	m.running = true
	return m.currentStep, nil
}

// Step takes action in the current state, sampling the next state from
// the transition probabilities of the current state-action pair. Step
// returns the next TimeStep and whether the episode has ended, which
// happens when a terminal state is entered.
func (m *MDP) Step(action int) (timestep.TimeStep, bool, error) {
	if !m.running {
		return m.currentStep, true, environment.ErrEpisodeOver
	}

	state := m.currentStep.State
	if action < 0 || action >= len(m.actions) ||
		m.transitions[state][action] == nil {
		return m.currentStep, false, errors.Wrapf(environment.ErrInvalidAction,
			"step: action %d in state %s", action, m.states[state])
	}

	o := m.transitions[state][action]
	next := o.next[int(o.dist.Rand())]
	reward := m.rewards[state][action]

	stepType := timestep.Mid
	if m.terminal[next] {
		stepType = timestep.Last
		m.running = false
	}

	number := m.currentStep.Number + 1
	m.currentStep = timestep.New(stepType, reward, m.discount, next, number)

	return m.currentStep, stepType == timestep.Last, nil
}

// DiscountFactor returns the discount factor of the MDP
func (m *MDP) DiscountFactor() float64 {
	return m.discount
}

// NumStates returns the number of states in the MDP
func (m *MDP) NumStates() int {
	return len(m.states)
}

// NumActions returns the number of actions in the MDP
func (m *MDP) NumActions() int {
	return len(m.actions)
}

// Terminal returns whether state is terminal
func (m *MDP) Terminal(state int) bool {
	return m.terminal[state]
}

// Actions returns the indices of the actions available in state
func (m *MDP) Actions(state int) []int {
	var available []int
	for a, o := range m.transitions[state] {
		if o != nil {
			available = append(available, a)
		}
	}
	return available
}

// Transition returns the possible next states of taking action in
// state, along with their probabilities. If action is unavailable in
// state, Transition returns nil slices.
func (m *MDP) Transition(state, action int) (next []int, prob []float64) {
	o := m.transitions[state][action]
	if o == nil {
		return nil, nil
	}
	return append([]int(nil), o.next...), append([]float64(nil), o.prob...)
}

// Reward returns the reward for taking action in state
func (m *MDP) Reward(state, action int) float64 {
	return m.rewards[state][action]
}

// StateIndex returns the index of the state with the argument name
func (m *MDP) StateIndex(name string) (int, bool) {
	i, ok := m.stateIndex[name]
	return i, ok
}

// StateName returns the name of the state at index i
func (m *MDP) StateName(i int) string {
	return m.states[i]
}

// ActionIndex returns the index of the action with the argument name
func (m *MDP) ActionIndex(name string) (int, bool) {
	i, ok := m.actionIndex[name]
	return i, ok
}

// ActionName returns the name of the action at index i
func (m *MDP) ActionName(i int) string {
	return m.actions[i]
}

// States returns the names of all states, ordered by index
func (m *MDP) States() []string {
	return append([]string(nil), m.states...)
}

func (m *MDP) String() string {
	str := "MDP | States: %d  |  Actions: %d  |  Discount: %.2f  |  At: %v"
	return fmt.Sprintf(str, len(m.states), len(m.actions), m.discount,
		m.states[m.currentStep.State])
}
