// Package metrics implements the scoring functions used by the decoder.
//
// A decode run uses exactly one Scorer for inner selection, outer evaluation
// and the pooled score: RSquared for regression targets, BalancedAccuracy for
// classification targets. Accuracy and R2 are also exposed because the run
// result reports them alongside the primary score.
package metrics
