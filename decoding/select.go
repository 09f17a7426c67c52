// SPDX-License-Identifier: MIT

package decoding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/folds"
	"github.com/katalvlaran/bwmdecode/metrics"
)

// InnerSearch configures SelectHyperparam.
type InnerSearch struct {
	Spec      estimator.Spec
	Grid      []float64
	Folds     int
	Shuffle   bool
	Seed      int64
	Centering estimator.Centering
	Weighting Weighting

	// Scorer defaults to metrics.For(Spec.Kind.Classifier()) when zero.
	Scorer metrics.Scorer
}

// SelectHyperparam returns the grid value with the highest mean inner-test
// score over s.Folds inner folds of trials, and the mean score per grid value.
// Inner folds split trial indices, never bins of one trial.
//
// Ties go to the earliest grid value. A one-value grid is returned without
// fitting and with nil scores. An empty grid is ErrEmptyGrid.
func SelectHyperparam(set *TrialSet, trials []int, s InnerSearch) (float64, []float64, error) {
	if len(s.Grid) == 0 {
		return 0, nil, ErrEmptyGrid
	}
	bins, units, err := set.Shape()
	if err != nil {
		return 0, nil, err
	}
	for _, t := range trials {
		if t < 0 || t >= set.Len() {
			return 0, nil, fmt.Errorf("trial index %d of %d: %w", t, set.Len(), ErrTargetCount)
		}
	}
	return selectHyperparam(set, trials, bins, units, s)
}

func selectHyperparam(set *TrialSet, trials []int, bins, units int, s InnerSearch) (float64, []float64, error) {
	if len(s.Grid) == 0 {
		return 0, nil, ErrEmptyGrid
	}
	if len(s.Grid) == 1 {
		return s.Grid[0], nil, nil
	}
	if s.Scorer.Name() == "" {
		s.Scorer = metrics.For(s.Spec.Kind.Classifier())
	}

	splits, err := folds.KFold(len(trials), s.Folds, s.Shuffle, s.Seed)
	if err != nil {
		return 0, nil, fmt.Errorf("inner folds over %d trials: %w", len(trials), err)
	}

	sums := make([]float64, len(s.Grid))
	for f, sp := range splits {
		sp = sp.Remap(trials)
		xTrain, yTrain := set.flatten(sp.Train, bins, units)
		xTest, yTest := set.flatten(sp.Test, bins, units)

		var yOff float64
		if s.Centering.Output {
			yOff = stat.Mean(yTrain, nil)
		}
		w, err := s.Weighting.Compute(yTrain, yOff)
		if err != nil {
			return 0, nil, fmt.Errorf("inner fold %d weights: %w", f, err)
		}

		for g, v := range s.Grid {
			tr, err := estimator.NewTrialRegressor(s.Spec, v, s.Centering)
			if err != nil {
				return 0, nil, err
			}
			if err = tr.Fit(xTrain, yTrain, w); err != nil {
				return 0, nil, fmt.Errorf("inner fold %d: %w", f, err)
			}
			score, err := tr.Score(xTest, yTest, s.Scorer)
			if err != nil {
				return 0, nil, fmt.Errorf("inner fold %d: %w", f, err)
			}
			sums[g] += score
		}
	}

	means := make([]float64, len(sums))
	for g, v := range sums {
		means[g] = v / float64(len(splits))
	}
	return s.Grid[argmax(means)], means, nil
}

// argmax returns the index of the first maximum, skipping NaN. An all-NaN
// slice yields 0.
func argmax(xs []float64) int {
	best := -1
	for i, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		if best < 0 || v > xs[best] {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
