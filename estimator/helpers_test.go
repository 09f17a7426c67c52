// SPDX-License-Identifier: MIT

package estimator_test

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// linearData returns X (n×len(beta)) with standard normal entries and
// y = X·beta + b + noise·N(0,1).
func linearData(seed int64, n int, beta []float64, b, noise float64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	p := len(beta)
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = b
		for j := 0; j < p; j++ {
			v := rng.NormFloat64()
			X.Set(i, j, v)
			y[i] += beta[j] * v
		}
		y[i] += noise * rng.NormFloat64()
	}
	return X, y
}

// clusters returns len(centers)·per rows drawn around each 2-D center with
// spread sd; labels are the center indices.
func clusters(seed int64, centers [][2]float64, per int, sd float64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	n := len(centers) * per
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for k, c := range centers {
		for r := 0; r < per; r++ {
			i := k*per + r
			X.Set(i, 0, c[0]+sd*rng.NormFloat64())
			X.Set(i, 1, c[1]+sd*rng.NormFloat64())
			y[i] = float64(k)
		}
	}
	return X, y
}

func rowsOf(X *mat.Dense, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for r, i := range idx {
		out.SetRow(r, X.RawRowView(i))
	}
	return out
}
