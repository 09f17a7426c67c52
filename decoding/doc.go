// Package decoding implements nested cross-validated decoding: given per-trial
// neural features and a behavioural target, it selects a regularization
// hyperparameter on inner folds, refits on each outer training partition and
// scores held-out trials.
//
// A run is fully described by a Config value; there is no package-level
// state. Randomness comes only from Config.Seed: outer folds use it directly,
// the inner folds of outer fold f use folds.DeriveSeed(Seed, f+1).
//
//	cfg := decoding.DefaultConfig()
//	cfg.Grid.Values = []float64{0.1, 1, 10}
//	eng, err := decoding.New(cfg)
//	...
//	res, err := eng.Decode(set)
//	fmt.Println(res.ScoresTestFull)
//
// Pooled scores (Result.ScoresTestFull) are computed once over all held-out
// predictions, never averaged across folds. Result.ScoresTest keeps the
// per-fold values.
//
// Errors are *StageError values wrapping one of the failure kinds:
// configuration problems are reported by New (and again by Decode) before
// data is read, data shape problems while checking the TrialSet, numerical
// problems from the estimator, and coverage violations after the outer loop.
package decoding
