// SPDX-License-Identifier: MIT

package metrics

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/bwmdecode/failure"
)

var (
	// ErrLengthMismatch is returned when yTrue and yPred differ in length.
	ErrLengthMismatch = fmt.Errorf("metrics: yTrue and yPred lengths differ: %w", failure.ErrDataShape)

	// ErrEmpty is returned when there is nothing to score.
	ErrEmpty = fmt.Errorf("metrics: empty input: %w", failure.ErrDataShape)
)

// Scorer is a named scoring function. Higher is better for every Scorer.
type Scorer struct {
	name string
	fn   func(yTrue, yPred []float64) (float64, error)
}

// Predefined scorers.
var (
	RSquared = Scorer{name: "r2", fn: R2}
	Balanced = Scorer{name: "balanced_accuracy", fn: BalancedAccuracy}
)

// For returns Balanced for classification targets and RSquared otherwise.
func For(classification bool) Scorer {
	if classification {
		return Balanced
	}
	return RSquared
}

// Name returns the metric name used in results and logs.
func (s Scorer) Name() string { return s.name }

// Score evaluates yPred against yTrue.
func (s Scorer) Score(yTrue, yPred []float64) (float64, error) {
	if s.fn == nil {
		return 0, fmt.Errorf("metrics: zero Scorer: %w", failure.ErrConfiguration)
	}
	return s.fn(yTrue, yPred)
}

func checkPair(yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) {
		return ErrLengthMismatch
	}
	if len(yTrue) == 0 {
		return ErrEmpty
	}
	return nil
}

// R2 returns the coefficient of determination 1 - SSres/SStot.
// A constant yTrue yields 1 for a perfect prediction and 0 otherwise, which
// keeps the score finite.
//
// Complexity: O(n).
func R2(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}

	mean := stat.Mean(yTrue, nil)
	var ssRes, ssTot, d float64
	for i := range yTrue {
		d = yTrue[i] - yPred[i]
		ssRes += d * d
		d = yTrue[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}

	return stat.RSquaredFrom(yPred, yTrue, nil), nil
}

// Accuracy returns the fraction of exact label matches.
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	var hit int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue)), nil
}

// BalancedAccuracy returns the mean per-class recall over the classes present
// in yTrue. Predicted labels absent from yTrue only lower the recall of the
// true classes they were confused with.
//
// Complexity: O(n log c) for c distinct classes.
func BalancedAccuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}

	total := make(map[float64]int)
	hit := make(map[float64]int)
	for i, y := range yTrue {
		total[y]++
		if yPred[i] == y {
			hit[y]++
		}
	}

	// Sum in sorted class order so the floating-point result is reproducible.
	classes := make([]float64, 0, len(total))
	for c := range total {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	var sum float64
	for _, c := range classes {
		sum += float64(hit[c]) / float64(total[c])
	}
	return sum / float64(len(classes)), nil
}

// Classes returns the sorted distinct values of y.
func Classes(y []float64) []float64 {
	out := slices.Clone(y)
	slices.Sort(out)
	return slices.Compact(out)
}
