// Package bwmdecode decodes task variables from binned neural population
// activity with nested cross-validation.
//
// The module is organised bottom-up:
//
//	failure    error kinds shared by every package
//	folds      seeded K-fold and train/test partitioning
//	weighting  balanced sample weights (discrete, KDE, histogram)
//	metrics    R², accuracy and balanced accuracy scorers
//	estimator  ridge, lasso, linear, logistic and ridgecv with input/output centering
//	decoding   inner hyperparameter search and the outer-fold engine
//	batch      sessions × pseudo sessions on a bounded worker pool
//	store      badger-backed persistence of batch outcomes
//	config     YAML run files and session inputs
//
// The bwmdecode command (cmd/bwmdecode) wires them together.
//
// Quick start:
//
//	cfg := decoding.DefaultConfig()
//	cfg.Grid.Values = []float64{0.1, 1, 10}
//	eng, err := decoding.New(cfg)
//	if err != nil { ... }
//	res, err := eng.Decode(set)
//	fmt.Println(res.RSquaredTestFull)
package bwmdecode
