package policy

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Tabular implements a stochastic policy which stores an explicit
// action distribution for each state.
//
// Rows of the table with no entries denote states in which the policy
// selects no action, such as terminal states.
type Tabular struct {
	numActions int
	seed       uint64
	table      [][]float64
	dists      []*distuv.Categorical
}

// NewTabular returns a new Tabular policy. Row i of table holds the
// probability of each of the numActions actions in state i.
func NewTabular(table [][]float64, numActions int, seed uint64) (*Tabular,
	error) {
	if numActions <= 0 {
		return nil, errors.Errorf("newTabular: policy must have at least "+
			"one action, got %d", numActions)
	}

	source := rand.NewSource(seed)
	rows := make([][]float64, len(table))
	dists := make([]*distuv.Categorical, len(table))

	for s, row := range table {
		if err := validateRow(row, numActions); err != nil {
			return nil, errors.Wrapf(err, "newTabular: state %d", s)
		}
		if len(row) == 0 {
			continue
		}

		rows[s] = make([]float64, numActions)
		copy(rows[s], row)

		dist := distuv.NewCategorical(rows[s], source)
		dists[s] = &dist
	}

	return &Tabular{numActions, seed, rows, dists}, nil
}

// SelectAction samples an action from the distribution over actions in
// state
func (t *Tabular) SelectAction(state int) int {
	mustHaveRow(state >= 0 && state < len(t.dists) && t.dists[state] != nil,
		state)
	return int(t.dists[state].Rand())
}

// Probabilities returns the distribution over actions in state
func (t *Tabular) Probabilities(state int) []float64 {
	if state < 0 || state >= len(t.table) || t.table[state] == nil {
		return nil
	}

	prob := make([]float64, t.numActions)
	copy(prob, t.table[state])
	return prob
}

// NumActions returns the number of actions
func (t *Tabular) NumActions() int {
	return t.numActions
}
