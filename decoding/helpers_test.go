// SPDX-License-Identifier: MIT

package decoding_test

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/bwmdecode/decoding"
)

// regressionSet returns n single-bin trials with `units` standard normal
// features and y = 2·x0 − x1 + noise·N(0,1).
func regressionSet(seed int64, n, units int, noise float64) *decoding.TrialSet {
	rng := rand.New(rand.NewSource(seed))
	set := &decoding.TrialSet{}
	for i := 0; i < n; i++ {
		row := make([]float64, units)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		y := 2*row[0] - row[1] + noise*rng.NormFloat64()
		set.Features = append(set.Features, mat.NewDense(1, units, row))
		set.Targets = append(set.Targets, []float64{y})
	}
	return set
}

// multiBinSet returns n trials of `bins` bins each, y = x0 + x1 per bin.
func multiBinSet(seed int64, n, bins, units int) *decoding.TrialSet {
	rng := rand.New(rand.NewSource(seed))
	set := &decoding.TrialSet{}
	for i := 0; i < n; i++ {
		x := mat.NewDense(bins, units, nil)
		y := make([]float64, bins)
		for b := 0; b < bins; b++ {
			for j := 0; j < units; j++ {
				x.Set(b, j, rng.NormFloat64())
			}
			y[b] = x.At(b, 0) + x.At(b, 1) + 0.1*rng.NormFloat64()
		}
		set.Features = append(set.Features, x)
		set.Targets = append(set.Targets, y)
	}
	return set
}

// classSet returns n single-bin trials in two classes; the first nNeg have
// label 0 and are centered at −sep on unit 0, the rest label 1 at +sep.
func classSet(seed int64, n, nNeg int, sep float64) *decoding.TrialSet {
	rng := rand.New(rand.NewSource(seed))
	set := &decoding.TrialSet{}
	for i := 0; i < n; i++ {
		label, c := 1.0, sep
		if i < nNeg {
			label, c = 0, -sep
		}
		row := []float64{c + rng.NormFloat64(), rng.NormFloat64()}
		set.Features = append(set.Features, mat.NewDense(1, 2, row))
		set.Targets = append(set.Targets, []float64{label})
	}
	return set
}

func ridgeConfig() decoding.Config {
	cfg := decoding.DefaultConfig()
	cfg.Grid.Values = []float64{0.1, 1, 10}
	return cfg
}
