// SPDX-License-Identifier: MIT

package estimator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/metrics"
)

func trialFit(t *testing.T, spec estimator.Spec, param float64, c estimator.Centering, X *mat.Dense, y []float64) *estimator.TrialRegressor {
	t.Helper()
	tr, err := estimator.NewTrialRegressor(spec, param, c)
	require.NoError(t, err)
	require.NoError(t, tr.Fit(X, y, nil))
	return tr
}

func TestTrialRegressorOffsets(t *testing.T) {
	X, y := linearData(10, 25, []float64{1, -1}, 4, 0.5)
	tr := trialFit(t, estimator.DefaultSpec(estimator.Ridge), 1,
		estimator.Centering{Input: true, Output: true}, X, y)

	off := tr.InputOffset()
	require.Len(t, off, 2)
	assert.InDelta(t, stat.Mean(mat.Col(nil, 0, X), nil), off[0], 1e-12)
	assert.InDelta(t, stat.Mean(mat.Col(nil, 1, X), nil), off[1], 1e-12)
	assert.InDelta(t, stat.Mean(y, nil), tr.OutputOffset(), 1e-12)

	plain := trialFit(t, estimator.DefaultSpec(estimator.Ridge), 1, estimator.Centering{}, X, y)
	assert.Nil(t, plain.InputOffset())
	assert.Equal(t, 0.0, plain.OutputOffset())
}

// Centering data that is already centered changes nothing.
func TestTrialRegressorCenteringIdempotent(t *testing.T) {
	X, y := linearData(11, 30, []float64{0.5, 2, -1}, 0, 0.3)
	r, c := X.Dims()
	for j := 0; j < c; j++ {
		m := stat.Mean(mat.Col(nil, j, X), nil)
		for i := 0; i < r; i++ {
			X.Set(i, j, X.At(i, j)-m)
		}
	}
	ym := stat.Mean(y, nil)
	for i := range y {
		y[i] -= ym
	}

	spec := estimator.DefaultSpec(estimator.Ridge)
	centered := trialFit(t, spec, 2, estimator.Centering{Input: true, Output: true}, X, y)
	raw := trialFit(t, spec, 2, estimator.Centering{}, X, y)

	assert.InDeltaSlice(t, raw.Coef()[0], centered.Coef()[0], 1e-10)

	Xt, _ := linearData(12, 5, []float64{1, 1, 1}, 0, 0)
	a, err := centered.Predict(Xt)
	require.NoError(t, err)
	b, err := raw.Predict(Xt)
	require.NoError(t, err)
	assert.InDeltaSlice(t, b, a, 1e-10)
}

func TestTrialRegressorOutputCenteringNoIntercept(t *testing.T) {
	// Without an intercept, output centering is what lets the model fit an offset.
	X, y := linearData(13, 40, []float64{1}, 10, 0)
	spec := estimator.DefaultSpec(estimator.Ridge)
	spec.FitIntercept = false

	tr := trialFit(t, spec, 0, estimator.Centering{Input: true, Output: true}, X, y)
	score, err := tr.Score(X, y, metrics.RSquared)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Nil(t, tr.Intercept())
}

func TestTrialRegressorRefitReplacesState(t *testing.T) {
	X1, y1 := linearData(14, 20, []float64{1}, 5, 0.1)
	X2, y2 := linearData(15, 20, []float64{-3}, -5, 0.1)
	tr := trialFit(t, estimator.DefaultSpec(estimator.Ridge), 0.1, estimator.Centering{Output: true}, X1, y1)
	require.NoError(t, tr.Fit(X2, y2, nil))
	assert.InDelta(t, stat.Mean(y2, nil), tr.OutputOffset(), 1e-12)
	assert.Less(t, tr.Coef()[0][0], 0.0)
}

func TestTrialRegressorErrors(t *testing.T) {
	_, err := estimator.NewTrialRegressor(estimator.DefaultSpec(estimator.Logistic), 1, estimator.Centering{Output: true})
	assert.ErrorIs(t, err, estimator.ErrOutputCentering)

	_, err = estimator.NewTrialRegressor(estimator.DefaultSpec(estimator.Ridge), -2, estimator.Centering{})
	assert.ErrorIs(t, err, estimator.ErrBadParam)

	tr, err := estimator.NewTrialRegressor(estimator.DefaultSpec(estimator.Ridge), 1, estimator.Centering{Input: true})
	require.NoError(t, err)
	_, err = tr.Predict(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, estimator.ErrNotFitted)
	assert.Equal(t, 1.0, tr.Param())

	X, y := linearData(16, 10, []float64{1}, 0, 0.1)
	require.NoError(t, tr.Fit(X, y, nil))
	_, err = tr.PredictProba(X)
	assert.ErrorIs(t, err, estimator.ErrNotClassifier)
	assert.Nil(t, tr.Classes())

	_, err = tr.Predict(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, estimator.ErrShape)
}

func TestTrialRegressorClassifier(t *testing.T) {
	X, y := clusters(17, [][2]float64{{-2, 1}, {2, 1}}, 25, 0.5)
	tr := trialFit(t, estimator.DefaultSpec(estimator.Logistic), 1, estimator.Centering{Input: true}, X, y)

	acc, err := tr.Score(X, y, metrics.Balanced)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
	assert.Equal(t, []float64{0, 1}, tr.Classes())

	proba, err := tr.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, 2, c)
}

func TestTrialRegressorInternalSearchParam(t *testing.T) {
	X, y := linearData(18, 30, []float64{1, 0.5}, 0, 1)
	spec := estimator.DefaultSpec(estimator.RidgeCV)
	spec.Grid = []float64{0.5, 5, 50}

	tr := trialFit(t, spec, 0, estimator.Centering{Input: true}, X, y)
	assert.Contains(t, spec.Grid, tr.Param())
	assert.True(t, tr.Report().Converged)
}
