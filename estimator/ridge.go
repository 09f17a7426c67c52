// SPDX-License-Identifier: MIT

package estimator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ridge minimizes Σ w(y − Xβ − b)² + α‖β‖²; the intercept is not penalized.
type ridge struct {
	linearState
	alpha float64
}

func (r *ridge) Fit(X *mat.Dense, y, w []float64) (Report, error) {
	if err := checkXY(X, y, w); err != nil {
		return Report{}, err
	}
	d := newDesign(X, y, w, r.fitIntercept)

	beta, warnings, err := solveRidge(d.xw, d.yw, r.alpha)
	if err != nil {
		return Report{}, err
	}

	r.set(d, beta)
	return Report{Param: r.alpha, Converged: true, Warnings: warnings}, nil
}

// solveRidge solves (xwᵀxw + αI)β = xwᵀyw by Cholesky.
// An ill-conditioned but factorizable system yields a warning; a failed
// factorization (α = 0 with collinear columns) yields ErrSingular.
//
// Complexity: O(n·p² + p³).
func solveRidge(xw *mat.Dense, yw []float64, alpha float64) ([]float64, []string, error) {
	n, p := xw.Dims()

	var gram mat.SymDense
	gram.SymOuterK(1, xw.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+alpha)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, nil, fmt.Errorf("ridge alpha=%v: %w", alpha, ErrSingular)
	}

	var rhs mat.VecDense
	rhs.MulVec(xw.T(), mat.NewVecDense(n, yw))

	var (
		beta     mat.VecDense
		warnings []string
	)
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, nil, fmt.Errorf("ridge alpha=%v: %v: %w", alpha, err, ErrSingular)
		}
		warnings = append(warnings, fmt.Sprintf("ridge: ill-conditioned normal equations (cond=%.3g)", float64(cond)))
	}

	return mat.Col(nil, 0, &beta), warnings, nil
}

// linear is (weighted) ordinary least squares. The minimum-norm solution is
// taken through a thin SVD, so rank-deficient designs are solved rather than
// rejected; the rank deficiency is reported as a warning.
type linear struct {
	linearState
	param float64 // reported only
}

func (l *linear) Fit(X *mat.Dense, y, w []float64) (Report, error) {
	if err := checkXY(X, y, w); err != nil {
		return Report{}, err
	}
	d := newDesign(X, y, w, l.fitIntercept)

	beta, warnings, err := solveLeastSquares(d.xw, d.yw)
	if err != nil {
		return Report{}, err
	}

	l.set(d, beta)
	return Report{Param: l.param, Converged: true, Warnings: warnings}, nil
}

// solveLeastSquares returns β = V_r Σ_r⁻¹ U_rᵀ yw, where r counts singular
// values above eps·max(n,p)·σ_max.
//
// Complexity: O(n·p·min(n,p)).
func solveLeastSquares(xw *mat.Dense, yw []float64) ([]float64, []string, error) {
	n, p := xw.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(xw, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("least squares: SVD failed: %w", ErrSingular)
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	rcond := 2.220446049250313e-16 * float64(max(n, p))
	rank := 0
	for _, sv := range s {
		if sv > rcond*s[0] {
			rank++
		}
	}

	beta := make([]float64, p)
	var warnings []string
	if rank < min(n, p) {
		warnings = append(warnings, fmt.Sprintf("linear: rank-deficient design (rank %d of %d); minimum-norm solution", rank, min(n, p)))
	}

	var (
		k, i, j int
		proj    float64
	)
	for k = 0; k < rank; k++ {
		proj = 0
		for i = 0; i < n; i++ {
			proj += u.At(i, k) * yw[i]
		}
		proj /= s[k]
		for j = 0; j < p; j++ {
			beta[j] += v.At(j, k) * proj
		}
	}

	for _, b := range beta {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, nil, ErrNonFinite
		}
	}
	return beta, warnings, nil
}
