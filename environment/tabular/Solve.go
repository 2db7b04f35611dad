package tabular

import (
	"github.com/pkg/errors"

	"github.com/samuelfneumann/gopredict/policy"
	"gonum.org/v1/gonum/mat"
)

// Solve computes the exact state-value function of policy p in the MDP
// m by solving the Bellman equation
//
//	V = r_π + γ P_π V
//
// over the non-terminal states of m. Terminal states have value 0.
// Solve returns an error if p assigns probability to an action that is
// unavailable in some state, or if the linear system is singular, which
// happens when γ = 1 and episodes do not terminate with probability 1
// under p.
func Solve(m *MDP, p policy.Distribution) ([]float64, error) {
	if p.NumActions() != m.NumActions() {
		return nil, errors.Errorf("solve: policy has %d actions, MDP has %d",
			p.NumActions(), m.NumActions())
	}

	// Index the non-terminal states, which are the unknowns of the
	// linear system
	index := make([]int, m.NumStates())
	var nonTerminal []int
	for s := range index {
		index[s] = -1
		if !m.Terminal(s) {
			index[s] = len(nonTerminal)
			nonTerminal = append(nonTerminal, s)
		}
	}
	n := len(nonTerminal)

	// Construct A = I - γP_π and b = r_π
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, 1.0)
	}

	for i, s := range nonTerminal {
		probs := p.Probabilities(s)
		if probs == nil {
			return nil, errors.Errorf("solve: policy selects no action in "+
				"non-terminal state %s", m.StateName(s))
		}

		for action, pa := range probs {
			if pa == 0 {
				continue
			}

			next, prob := m.Transition(s, action)
			if next == nil {
				return nil, errors.Errorf("solve: policy selects unavailable "+
					"action %s in state %s", m.ActionName(action),
					m.StateName(s))
			}

			b.SetVec(i, b.AtVec(i)+pa*m.Reward(s, action))
			for k, ns := range next {
				j := index[ns]
				if j < 0 {
					continue
				}
				a.Set(i, j, a.At(i, j)-m.DiscountFactor()*pa*prob[k])
			}
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return nil, errors.Wrap(err, "solve: could not solve Bellman "+
			"equation")
	}

	values := make([]float64, m.NumStates())
	for i, s := range nonTerminal {
		values[s] = x.AtVec(i)
	}
	return values, nil
}
