// SPDX-License-Identifier: MIT

package decoding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TrialSet holds per-trial neural features and targets.
//
// Features[i] is bins×units for trial i. Targets[i] holds one value per bin:
// length 1 for a single-bin target, or the trial's bin count for a multi-bin
// target. Bin and unit counts are uniform across trials.
type TrialSet struct {
	Features []*mat.Dense
	Targets  [][]float64
}

// NewSingleBin builds a single-bin TrialSet from a trials×units matrix and one
// target per trial. Rows are copied.
func NewSingleBin(X mat.Matrix, y []float64) (*TrialSet, error) {
	r, c := X.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("%d rows but %d targets: %w", r, len(y), ErrTargetCount)
	}
	set := &TrialSet{
		Features: make([]*mat.Dense, r),
		Targets:  make([][]float64, r),
	}
	for i := 0; i < r; i++ {
		set.Features[i] = mat.NewDense(1, c, mat.Row(nil, i, X))
		set.Targets[i] = []float64{y[i]}
	}
	return set, nil
}

// Len returns the number of trials.
func (s *TrialSet) Len() int { return len(s.Features) }

// Shape checks the set and returns its uniform bin and unit counts.
//
// Errors: ErrNoTrials, ErrTargetCount, ErrBinMismatch, ErrUnitMismatch,
// ErrNonFinite (all DataShapeError).
func (s *TrialSet) Shape() (bins, units int, err error) {
	if s == nil || len(s.Features) == 0 {
		return 0, 0, ErrNoTrials
	}
	if len(s.Targets) != len(s.Features) {
		return 0, 0, fmt.Errorf("%d trials, %d targets: %w", len(s.Features), len(s.Targets), ErrTargetCount)
	}

	for i, x := range s.Features {
		if x == nil || x.IsEmpty() {
			return 0, 0, fmt.Errorf("trial %d has no bins: %w", i, ErrBinMismatch)
		}
		r, c := x.Dims()
		if i == 0 {
			bins, units = r, c
		}
		if r != bins {
			return 0, 0, fmt.Errorf("trial %d has %d bins, trial 0 has %d: %w", i, r, bins, ErrBinMismatch)
		}
		if c != units {
			return 0, 0, fmt.Errorf("trial %d has %d units, trial 0 has %d: %w", i, c, units, ErrUnitMismatch)
		}
		if len(s.Targets[i]) != r {
			return 0, 0, fmt.Errorf("trial %d has %d bins but %d target values: %w", i, r, len(s.Targets[i]), ErrBinMismatch)
		}
		for b := 0; b < r; b++ {
			for _, v := range x.RawRowView(b) {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return 0, 0, fmt.Errorf("trial %d bin %d features: %w", i, b, ErrNonFinite)
				}
			}
		}
		for _, v := range s.Targets[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, fmt.Errorf("trial %d target: %w", i, ErrNonFinite)
			}
		}
	}
	return bins, units, nil
}

// flatten stacks the bins of trials idx into a row-per-bin design matrix and
// target vector, in idx order. The set must have passed Shape.
func (s *TrialSet) flatten(idx []int, bins, units int) (*mat.Dense, []float64) {
	X := mat.NewDense(len(idx)*bins, units, nil)
	y := make([]float64, 0, len(idx)*bins)
	row := 0
	for _, t := range idx {
		for b := 0; b < bins; b++ {
			X.SetRow(row, s.Features[t].RawRowView(b))
			row++
		}
		y = append(y, s.Targets[t]...)
	}
	return X, y
}

// target returns a deep copy of the targets.
func (s *TrialSet) target() [][]float64 {
	out := make([][]float64, len(s.Targets))
	for i, t := range s.Targets {
		out[i] = append([]float64(nil), t...)
	}
	return out
}

// regressors returns a deep copy of the features as trial × bin × unit.
func (s *TrialSet) regressors() [][][]float64 {
	out := make([][][]float64, len(s.Features))
	for i, x := range s.Features {
		r, _ := x.Dims()
		out[i] = make([][]float64, r)
		for b := 0; b < r; b++ {
			out[i][b] = mat.Row(nil, b, x)
		}
	}
	return out
}
