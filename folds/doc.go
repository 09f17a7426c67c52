// Package folds produces deterministic train/test partitions of trial indices.
//
// Two modes are provided:
//
//   - KFold: K (train, test) pairs whose test sets partition {0,…,n-1}.
//     Fold sizes follow the usual convention: every fold holds n/k trials and
//     the first n%k folds hold one extra.
//   - TrainTestSplit: a single held-out split with round(n·p) test trials.
//     Unshuffled, the test set is the trailing block so temporal contiguity of
//     sequential sessions is preserved.
//
// Determinism:
//
//	Shuffling uses RNG, a SplitMix64 stream keyed only by the seed. All
//	arithmetic is on uint64, so the same seed and n give the same permutation on
//	every platform, Go release and (re-implemented) language.
//
// Every returned index slice is sorted ascending and owned by the caller.
package folds
