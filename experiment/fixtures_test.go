package experiment_test

import (
	"testing"

	"github.com/samuelfneumann/gopredict/environment/tabular"
	"github.com/stretchr/testify/require"
)

func newReference(t *testing.T) *tabular.MDP {
	t.Helper()
	m, err := tabular.New(tabular.Reference(), 1)
	require.NoError(t, err)
	return m
}
