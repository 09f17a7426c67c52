// SPDX-License-Identifier: MIT

package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/bwmdecode/metrics"
)

// Centering selects which sides of the regression are de-meaned by the
// training rows before fitting.
type Centering struct {
	Input  bool `json:"input" yaml:"input"`
	Output bool `json:"output" yaml:"output"`
}

// TrialRegressor wraps one Model with optional input/output centering. The
// offsets are learned from the rows passed to Fit and reused unchanged at
// prediction time, so held-out rows never influence them.
type TrialRegressor struct {
	spec      Spec
	param     float64
	centering Centering

	model  Model
	report Report
	xOff   []float64 // nil without input centering
	yOff   float64
	nFeat  int
}

// NewTrialRegressor returns an unfitted regressor for spec and hyperparameter
// value param. Output centering with a classifier kind is ErrOutputCentering.
func NewTrialRegressor(spec Spec, param float64, centering Centering) (*TrialRegressor, error) {
	if centering.Output && spec.Kind.Classifier() {
		return nil, ErrOutputCentering
	}
	// Validates spec and param once up front.
	if _, err := New(spec, param); err != nil {
		return nil, err
	}
	return &TrialRegressor{spec: spec, param: param, centering: centering}, nil
}

// Fit centers X and y by their own means (as configured), fits a fresh model
// and checks the learned coefficients. Refitting discards all previous state.
func (t *TrialRegressor) Fit(X *mat.Dense, y, w []float64) error {
	if err := checkXY(X, y, w); err != nil {
		return err
	}
	model, err := New(t.spec, t.param)
	if err != nil {
		return err
	}
	t.model, t.xOff, t.yOff, t.report = nil, nil, 0, Report{}

	r, c := X.Dims()
	xFit := X
	if t.centering.Input {
		xOff := make([]float64, c)
		col := make([]float64, r)
		for j := range xOff {
			mat.Col(col, j, X)
			xOff[j] = stat.Mean(col, nil)
		}
		xFit = centerRows(X, xOff)
		t.xOff = xOff
	}
	yFit := y
	if t.centering.Output {
		t.yOff = stat.Mean(y, nil)
		yFit = make([]float64, r)
		for i, v := range y {
			yFit[i] = v - t.yOff
		}
	}

	rep, err := model.Fit(xFit, yFit, w)
	if err != nil {
		return fmt.Errorf("fit %s %s=%v: %w", t.spec.Kind, t.spec.Kind.Param(), t.param, err)
	}
	for _, row := range model.Coef() {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("fit %s %s=%v: %w", t.spec.Kind, t.spec.Kind.Param(), t.param, ErrNonFinite)
			}
		}
	}
	for _, v := range model.Intercept() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("fit %s %s=%v: %w", t.spec.Kind, t.spec.Kind.Param(), t.param, ErrNonFinite)
		}
	}

	t.model, t.report, t.nFeat = model, rep, c
	return nil
}

// prepare applies the training input offsets to X.
func (t *TrialRegressor) prepare(X mat.Matrix) (mat.Matrix, error) {
	if t.model == nil {
		return nil, ErrNotFitted
	}
	_, c := X.Dims()
	if c != t.nFeat {
		return nil, fmt.Errorf("fit with %d features, predict with %d: %w", t.nFeat, c, ErrShape)
	}
	if r, _ := X.Dims(); t.xOff == nil || r == 0 {
		return X, nil
	}
	return centerRows(X, t.xOff), nil
}

// Predict returns one estimate per row of X, with the output offset added
// back. Classifiers return labels.
func (t *TrialRegressor) Predict(X mat.Matrix) ([]float64, error) {
	xp, err := t.prepare(X)
	if err != nil {
		return nil, err
	}
	if r, _ := xp.Dims(); r == 0 {
		return []float64{}, nil
	}
	pred, err := t.model.Predict(xp)
	if err != nil {
		return nil, err
	}
	if t.yOff != 0 {
		for i := range pred {
			pred[i] += t.yOff
		}
	}
	return pred, nil
}

// PredictProba returns rows × classes probabilities for classifier kinds.
func (t *TrialRegressor) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	cl, ok := t.model.(Classifier)
	if t.model != nil && !ok {
		return nil, ErrNotClassifier
	}
	xp, err := t.prepare(X)
	if err != nil {
		return nil, err
	}
	return cl.PredictProba(xp)
}

// Classes returns the labels seen during Fit, or nil for regression kinds.
func (t *TrialRegressor) Classes() []float64 {
	if cl, ok := t.model.(Classifier); ok {
		return cl.Classes()
	}
	return nil
}

// Score predicts X and scores the result against y with s.
func (t *TrialRegressor) Score(X mat.Matrix, y []float64, s metrics.Scorer) (float64, error) {
	pred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}
	return s.Score(y, pred)
}

// Coef returns the fitted coefficients (one row per output) in the centered
// input space.
func (t *TrialRegressor) Coef() [][]float64 {
	if t.model == nil {
		return nil
	}
	return t.model.Coef()
}

// Intercept returns the fitted intercepts, nil without an intercept.
func (t *TrialRegressor) Intercept() []float64 {
	if t.model == nil {
		return nil
	}
	return t.model.Intercept()
}

// Param returns the hyperparameter value the last Fit used. For SearchInternal
// kinds this is the value the estimator selected.
func (t *TrialRegressor) Param() float64 {
	if t.model == nil {
		return t.param
	}
	return t.report.Param
}

// Report returns the solver report of the last Fit.
func (t *TrialRegressor) Report() Report { return t.report }

// Warnings returns the solver warnings of the last Fit.
func (t *TrialRegressor) Warnings() []string {
	return append([]string(nil), t.report.Warnings...)
}

// InputOffset returns the per-column training means subtracted from X, or
// nil without input centering.
func (t *TrialRegressor) InputOffset() []float64 {
	return append([]float64(nil), t.xOff...)
}

// OutputOffset returns the training target mean subtracted from y (0 without
// output centering).
func (t *TrialRegressor) OutputOffset() float64 { return t.yOff }

// centerRows returns X with offsets subtracted column-wise, as a new matrix.
func centerRows(X mat.Matrix, offsets []float64) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j)-offsets[j])
		}
	}
	return out
}
