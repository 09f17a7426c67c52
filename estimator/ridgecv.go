// SPDX-License-Identifier: MIT

package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ridgeCV is ridge regression that selects its own alpha from grid by exact
// leave-one-out error. With xw = U·diag(s)·Vᵀ the fit for every alpha comes
// from one SVD:
//
//	β(α)  = V · diag(s/(s²+α)) · Uᵀ·yw
//	h_ii  = Σ_k U_ik² · s_k²/(s_k²+α)  (+ w_i/Σw with an intercept)
//	e_i   = r_i / (1 − h_ii)
//
// The alpha with the smallest Σ e_i² wins; ties go to the earliest grid entry.
type ridgeCV struct {
	linearState
	grid []float64

	errs []float64 // LOO error per grid entry, from the last Fit
}

func (r *ridgeCV) Fit(X *mat.Dense, y, w []float64) (Report, error) {
	if err := checkXY(X, y, w); err != nil {
		return Report{}, err
	}
	d := newDesign(X, y, w, r.fitIntercept)
	n, p := d.xw.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(d.xw, mat.SVDThin); !ok {
		return Report{}, fmt.Errorf("ridgecv: SVD failed: %w", ErrSingular)
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// uty[k] = U[:,k]ᵀ·yw
	uty := make([]float64, len(s))
	var (
		i, k int
	)
	for k = range s {
		for i = 0; i < n; i++ {
			uty[k] += u.At(i, k) * d.yw[i]
		}
	}

	r.errs = make([]float64, len(r.grid))
	best := -1
	shrink := make([]float64, len(s))
	for g, alpha := range r.grid {
		for k, sv := range s {
			shrink[k] = filterFactor(sv, alpha)
		}
		var loo float64
		for i = 0; i < n; i++ {
			var fit, h float64
			for k = range s {
				uik := u.At(i, k)
				fit += uik * shrink[k] * uty[k]
				h += uik * uik * shrink[k]
			}
			if r.fitIntercept {
				h += d.sw[i] * d.sw[i] / d.wsum
			}
			e := (d.yw[i] - fit) / (1 - h)
			loo += e * e
		}
		r.errs[g] = loo
		if math.IsNaN(loo) || math.IsInf(loo, 0) {
			continue
		}
		if best < 0 || loo < r.errs[best] {
			best = g
		}
	}
	if best < 0 {
		return Report{}, fmt.Errorf("ridgecv: no alpha in %v gives a finite leave-one-out error: %w", r.grid, ErrSingular)
	}

	alpha := r.grid[best]
	beta := make([]float64, p)
	for k, sv := range s {
		if sv == 0 {
			continue
		}
		coef := sv / (sv*sv + alpha) * uty[k]
		for j := 0; j < p; j++ {
			beta[j] += v.At(j, k) * coef
		}
	}
	for _, b := range beta {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return Report{}, ErrNonFinite
		}
	}

	r.set(d, beta)
	return Report{Param: alpha, Converged: true}, nil
}

// LOOErrors returns the leave-one-out sum of squared errors per grid entry
// from the last Fit.
func (r *ridgeCV) LOOErrors() []float64 { return append([]float64(nil), r.errs...) }

// filterFactor returns s²/(s²+α), defined as 0 for a zero singular value.
func filterFactor(s, alpha float64) float64 {
	s2 := s * s
	if s2 == 0 {
		return 0
	}
	return s2 / (s2 + alpha)
}
