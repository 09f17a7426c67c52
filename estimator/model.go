// SPDX-License-Identifier: MIT

package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a single estimator instance. A Model is fit at most once by the
// decoding engine; refitting replaces all learned state.
type Model interface {
	// Fit learns coefficients from X (rows × features), y and optional
	// per-row weights w (nil means uniform).
	Fit(X *mat.Dense, y, w []float64) (Report, error)

	// Predict returns one value per row: the regression estimate, or the
	// predicted class label for classifiers.
	Predict(X mat.Matrix) ([]float64, error)

	// Coef returns the coefficients, one row per output.
	Coef() [][]float64

	// Intercept returns one intercept per output, or nil when the model was
	// fit without one.
	Intercept() []float64
}

// Classifier is a Model over discrete labels.
type Classifier interface {
	Model

	// PredictProba returns rows × classes probabilities, columns in Classes
	// order.
	PredictProba(X mat.Matrix) (*mat.Dense, error)

	// Classes returns the sorted labels seen during Fit.
	Classes() []float64
}

// Report describes one Fit.
type Report struct {
	// Param is the hyperparameter value actually used (the selected one for
	// SearchInternal kinds).
	Param float64

	// Iterations used by iterative solvers (0 for direct solvers).
	Iterations int

	// Converged is false when an iterative solver stopped on its limit.
	Converged bool

	// Warnings collects non-fatal solver diagnostics.
	Warnings []string
}

// New returns an unfitted Model for spec with hyperparameter value param.
// SearchInternal kinds ignore param and search spec.Grid instead.
func New(spec Spec, param float64) (Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Kind.Search() == SearchExternal {
		if err := spec.Kind.CheckParam(param); err != nil {
			return nil, err
		}
	}

	switch spec.Kind {
	case Ridge:
		return &ridge{alpha: param, linearState: linearState{fitIntercept: spec.FitIntercept}}, nil
	case Linear:
		return &linear{linearState: linearState{fitIntercept: spec.FitIntercept}, param: param}, nil
	case Lasso:
		return &lasso{
			linearState: linearState{fitIntercept: spec.FitIntercept},
			alpha:       param,
			maxIter:     spec.MaxIter,
			tol:         spec.Tol,
		}, nil
	case Logistic:
		return &logistic{c: param, fitIntercept: spec.FitIntercept, maxIter: spec.MaxIter, tol: spec.Tol}, nil
	case RidgeCV:
		return &ridgeCV{
			linearState: linearState{fitIntercept: spec.FitIntercept},
			grid:        append([]float64(nil), spec.Grid...),
		}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// checkXY validates fit inputs: at least one row and column, y and w aligned
// with the rows, weights finite and > 0.
func checkXY(X *mat.Dense, y, w []float64) error {
	if X == nil {
		return fmt.Errorf("nil design: %w", ErrShape)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("empty design %dx%d: %w", r, c, ErrShape)
	}
	if len(y) != r {
		return fmt.Errorf("%d rows but %d targets: %w", r, len(y), ErrShape)
	}
	if w != nil {
		if len(w) != r {
			return fmt.Errorf("%d rows but %d weights: %w", r, len(w), ErrShape)
		}
		for _, v := range w {
			if !(v > 0) || math.IsInf(v, 0) {
				return fmt.Errorf("weight %v: %w", v, ErrShape)
			}
		}
	}
	return nil
}

// design is the weighted, optionally centered least-squares system shared by
// the linear-Gaussian estimators:
//
//	xw[i,:] = √w_i (x_i − x̄_w),  yw[i] = √w_i (y_i − ȳ_w)
//
// Minimizing ‖yw − xw·β‖² (+ penalty) then gives the intercept
// b = ȳ_w − x̄_w·β. Without an intercept the offsets are zero.
type design struct {
	xw   *mat.Dense
	yw   []float64
	sw   []float64 // √w (ones when unweighted)
	wsum float64
	xOff []float64
	yOff float64
}

func newDesign(X *mat.Dense, y, w []float64, fitIntercept bool) *design {
	r, c := X.Dims()
	d := &design{
		xw:   mat.NewDense(r, c, nil),
		yw:   make([]float64, r),
		sw:   make([]float64, r),
		xOff: make([]float64, c),
	}

	var i, j int
	for i = 0; i < r; i++ {
		d.sw[i] = 1
		if w != nil {
			d.sw[i] = math.Sqrt(w[i])
			d.wsum += w[i]
		}
	}
	if w == nil {
		d.wsum = float64(r)
	}

	if fitIntercept {
		col := make([]float64, r)
		for j = 0; j < c; j++ {
			mat.Col(col, j, X)
			d.xOff[j] = stat.Mean(col, w)
		}
		d.yOff = stat.Mean(y, w)
	}

	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			d.xw.Set(i, j, d.sw[i]*(X.At(i, j)-d.xOff[j]))
		}
		d.yw[i] = d.sw[i] * (y[i] - d.yOff)
	}
	return d
}

// intercept returns ȳ_w − x̄_w·β.
func (d *design) intercept(beta []float64) float64 {
	b := d.yOff
	for j, v := range beta {
		b -= d.xOff[j] * v
	}
	return b
}

// linearPredict returns X·β + b.
func linearPredict(X mat.Matrix, beta []float64, b float64) ([]float64, error) {
	r, c := X.Dims()
	if c != len(beta) {
		return nil, fmt.Errorf("fit with %d features, predict with %d: %w", len(beta), c, ErrShape)
	}
	out := make([]float64, r)
	if r == 0 {
		return out, nil
	}
	var v mat.VecDense
	v.MulVec(X, mat.NewVecDense(c, beta))
	for i := range out {
		out[i] = v.AtVec(i) + b
	}
	return out, nil
}

// linearState holds single-output coefficients.
type linearState struct {
	fitted       bool
	fitIntercept bool
	beta         []float64
	b            float64
}

func (s *linearState) Predict(X mat.Matrix) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	return linearPredict(X, s.beta, s.b)
}

func (s *linearState) Coef() [][]float64 {
	if !s.fitted {
		return nil
	}
	return [][]float64{append([]float64(nil), s.beta...)}
}

func (s *linearState) Intercept() []float64 {
	if !s.fitted || !s.fitIntercept {
		return nil
	}
	return []float64{s.b}
}

func (s *linearState) set(d *design, beta []float64) {
	s.beta = beta
	s.b = 0
	if s.fitIntercept {
		s.b = d.intercept(beta)
	}
	s.fitted = true
}
