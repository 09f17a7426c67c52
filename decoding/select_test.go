// SPDX-License-Identifier: MIT

package decoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/bwmdecode/decoding"
	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/failure"
	"github.com/katalvlaran/bwmdecode/folds"
)

func innerSearch(kind estimator.Kind, grid ...float64) decoding.InnerSearch {
	return decoding.InnerSearch{
		Spec:    estimator.DefaultSpec(kind),
		Grid:    grid,
		Folds:   4,
		Shuffle: true,
		Seed:    11,
	}
}

func TestSelectHyperparamEmptyGrid(t *testing.T) {
	_, _, err := decoding.SelectHyperparam(nil, nil, innerSearch(estimator.Ridge))
	assert.ErrorIs(t, err, decoding.ErrEmptyGrid)
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestSelectHyperparamPrefersWeakPenalty(t *testing.T) {
	set := regressionSet(1, 60, 3, 0.1)
	best, scores, err := decoding.SelectHyperparam(set, folds.Range(60), innerSearch(estimator.Ridge, 1e5, 0.01))
	require.NoError(t, err)
	assert.Equal(t, 0.01, best)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[1], scores[0])
}

func TestSelectHyperparamTiesGoFirst(t *testing.T) {
	// linear ignores its hyperparameter: every grid value scores the same.
	set := regressionSet(2, 40, 2, 0.5)
	best, scores, err := decoding.SelectHyperparam(set, folds.Range(40), innerSearch(estimator.Linear, 7, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 7.0, best)
	assert.Equal(t, scores[0], scores[1])
	assert.Equal(t, scores[0], scores[2])
}

func TestSelectHyperparamSingleton(t *testing.T) {
	// A single-class target cannot be fit by logistic; the shortcut never fits.
	set := classSet(3, 20, 20, 1)
	best, scores, err := decoding.SelectHyperparam(set, folds.Range(20), innerSearch(estimator.Logistic, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, best)
	assert.Nil(t, scores)

	// Searching a grid whose values coincide selects the same value.
	set = regressionSet(4, 30, 2, 0.3)
	one, _, err := decoding.SelectHyperparam(set, folds.Range(30), innerSearch(estimator.Ridge, 2))
	require.NoError(t, err)
	two, _, err := decoding.SelectHyperparam(set, folds.Range(30), innerSearch(estimator.Ridge, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, one, two)
}

func TestSelectHyperparamSubset(t *testing.T) {
	set := regressionSet(5, 50, 2, 0.2)
	trials := []int{1, 3, 5, 7, 9, 11, 13, 15, 17, 19, 21, 23}
	_, scores, err := decoding.SelectHyperparam(set, trials, innerSearch(estimator.Ridge, 0.1, 10))
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	_, _, err = decoding.SelectHyperparam(set, []int{0, 1, 2}, innerSearch(estimator.Ridge, 0.1, 10))
	assert.ErrorIs(t, err, folds.ErrTooFewTrials)

	_, _, err = decoding.SelectHyperparam(set, []int{0, 99}, innerSearch(estimator.Ridge, 0.1, 10))
	assert.ErrorIs(t, err, failure.ErrDataShape)
}

func TestSelectHyperparamClassifier(t *testing.T) {
	set := classSet(6, 60, 30, 2)
	s := innerSearch(estimator.Logistic, 1e-6, 1)
	best, scores, err := decoding.SelectHyperparam(set, folds.Range(60), s)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Contains(t, []float64{1e-6, 1}, best)
	for _, sc := range scores {
		assert.GreaterOrEqual(t, sc, 0.0)
		assert.LessOrEqual(t, sc, 1.0)
	}
}
