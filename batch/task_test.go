// SPDX-License-Identifier: MIT

package batch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/bwmdecode/batch"
)

func TestPermutationSource(t *testing.T) {
	set := regressionSet(1, 20)
	p := batch.Permutation{Seed: 3}

	recorded, err := p.Targets(context.Background(), batch.Task{PseudoID: batch.RealSession, Set: set})
	require.NoError(t, err)
	assert.Equal(t, set.Targets, recorded)
	recorded[0][0] = 1e9
	assert.NotEqual(t, 1e9, set.Targets[0][0], "copies, not aliases")

	a, err := p.Targets(context.Background(), batch.Task{PseudoID: 4, Set: set})
	require.NoError(t, err)
	b, err := p.Targets(context.Background(), batch.Task{PseudoID: 4, Set: set})
	require.NoError(t, err)
	c, err := p.Targets(context.Background(), batch.Task{PseudoID: 5, Set: set})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.ElementsMatch(t, set.Targets, a)

	_, err = p.Targets(context.Background(), batch.Task{PseudoID: 0})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	task := batch.Task{Session: "eid", Region: "MOs", PseudoID: 12}
	assert.Equal(t, "eid/MOs/12", task.Key())

	o := batch.Outcome{RunID: "r", Session: "eid", Region: "MOs", PseudoID: -1}
	assert.Equal(t, "r/eid/MOs/-1", o.Key())
}
