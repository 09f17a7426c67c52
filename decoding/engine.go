// SPDX-License-Identifier: MIT

package decoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/folds"
	"github.com/katalvlaran/bwmdecode/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Per-fold progress is logged at Debug,
// run summaries at Info. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine runs nested cross-validated decoding for one validated Config.
// An Engine holds no mutable state: Decode may be called from several
// goroutines on distinct TrialSets.
type Engine struct {
	cfg       Config
	spec      estimator.Spec
	search    estimator.Search
	scorer    metrics.Scorer
	centering estimator.Centering
	weights   Weighting
	logger    *slog.Logger
}

// New validates cfg and returns an Engine. Configuration errors are reported
// here, before any data exists.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageErr(StageInit, -1, err)
	}
	if cfg.Grid.Name == "" {
		cfg.Grid.Name = cfg.Estimator.Param()
	}
	cfg.Grid.Values = append([]float64(nil), cfg.Grid.Values...)

	e := &Engine{
		cfg:       cfg,
		spec:      cfg.Spec(),
		search:    cfg.Estimator.Search(),
		scorer:    metrics.For(cfg.Estimator.Classifier()),
		centering: cfg.Centering(),
		weights:   cfg.Weighting(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Decode runs the full nested cross-validation over set. Any failure aborts
// the call and no partial Result is returned; errors are *StageError values
// wrapping a failure kind.
//
// Implementation:
//   - Stage INIT: check the set, compute outer partitions, check that every
//     outer training partition can hold the inner folds.
//   - Stage OUTER_LOOP: per outer fold, INNER_SEARCH (skipped for
//     self-validating estimators and singleton grids), REFIT on all outer
//     training rows with freshly computed weights, EVALUATE on both
//     partitions; held-out predictions go to a trial-indexed buffer.
//   - Stage AGGREGATE: in K-fold mode every trial must be held out exactly
//     once; pooled scores are computed on the concatenated held-out
//     predictions in trial order.
func (e *Engine) Decode(set *TrialSet) (*Result, error) {
	start := time.Now()

	// Stage INIT.
	if err := e.cfg.Validate(); err != nil {
		return nil, stageErr(StageInit, -1, err)
	}
	bins, units, err := set.Shape()
	if err != nil {
		return nil, stageErr(StageInit, -1, err)
	}
	n := set.Len()
	outer, err := e.outerSplits(n)
	if err != nil {
		return nil, stageErr(StageInit, -1, err)
	}
	needInner := e.search == estimator.SearchExternal && len(e.cfg.Grid.Values) > 1
	for f, sp := range outer {
		if len(sp.Test) == 0 || len(sp.Train) == 0 {
			return nil, stageErr(StageInit, f, ErrEmptyPartition)
		}
		if needInner && len(sp.Train) < e.cfg.NInnerFolds {
			return nil, stageErr(StageInit, f, fmt.Errorf("%d training trials, %d inner folds: %w",
				len(sp.Train), e.cfg.NInnerFolds, ErrInnerFeasibility))
		}
	}

	classification := e.cfg.Estimator.Classifier()
	var classes []float64
	if classification {
		_, all := set.flatten(folds.Range(n), bins, units)
		classes = metrics.Classes(all)
	}
	// Fixed per run from config and data shape only.
	probabilities := classification && bins == 1 && len(classes) == 2

	e.logger.Debug("decode started",
		slog.String("estimator", e.cfg.Estimator.String()),
		slog.Int("trials", n),
		slog.Int("bins", bins),
		slog.Int("units", units),
		slog.Int("outer_folds", len(outer)),
		slog.Int64("seed", e.cfg.Seed),
	)

	// Stage OUTER_LOOP.
	labels := make([][]float64, n) // nil until the trial is held out
	saved := make([][]float64, n)
	writes := make([]int, n)
	res := &Result{
		Estimator:     e.cfg.Estimator,
		GridName:      e.cfg.Grid.Name,
		Scorer:        e.scorer.Name(),
		Seed:          e.cfg.Seed,
		NFolds:        len(outer),
		Probabilities: probabilities,
		Classes:       classes,
		ScoresTrain:   make([]float64, 0, len(outer)),
		ScoresTest:    make([]float64, 0, len(outer)),
		Folds:         make([]FoldResult, 0, len(outer)),
	}
	for f, sp := range outer {
		fr, foldLabels, err := e.runFold(set, f, sp, bins, units, probabilities)
		if err != nil {
			return nil, err
		}
		for k, t := range sp.Test {
			labels[t] = foldLabels[k]
			saved[t] = fr.Predictions[k]
			writes[t]++
		}
		res.ScoresTrain = append(res.ScoresTrain, fr.TrainScore)
		res.ScoresTest = append(res.ScoresTest, fr.TestScore)
		res.Folds = append(res.Folds, fr)
	}

	// Stage AGGREGATE.
	if e.cfg.OuterCV {
		for t, c := range writes {
			if c != 1 {
				return nil, stageErr(StageAggregate, -1, fmt.Errorf("trial %d held out %d times: %w", t, c, ErrCoverage))
			}
		}
	}
	var yTrue, yPred []float64
	for t := 0; t < n; t++ {
		if labels[t] == nil {
			continue
		}
		yTrue = append(yTrue, set.Targets[t]...)
		yPred = append(yPred, labels[t]...)
	}
	if res.ScoresTestFull, err = e.scorer.Score(yTrue, yPred); err != nil {
		return nil, stageErr(StageAggregate, -1, err)
	}
	if res.RSquaredTestFull, err = metrics.R2(yTrue, yPred); err != nil {
		return nil, stageErr(StageAggregate, -1, err)
	}
	if classification {
		acc, err := metrics.Accuracy(yTrue, yPred)
		if err != nil {
			return nil, stageErr(StageAggregate, -1, err)
		}
		bacc, err := metrics.BalancedAccuracy(yTrue, yPred)
		if err != nil {
			return nil, stageErr(StageAggregate, -1, err)
		}
		res.AccTestFull, res.BalancedAccTestFull = &acc, &bacc
	}
	if e.cfg.SavePredictions {
		res.Predictions = saved
	}
	if e.cfg.SaveBinned {
		res.Regressors = set.regressors()
	}
	res.Target = set.target()

	e.logger.Debug("decode done",
		slog.String("estimator", e.cfg.Estimator.String()),
		slog.String("scorer", res.Scorer),
		slog.Float64("scores_test_full", res.ScoresTestFull),
		slog.Int("warnings", len(res.Warnings())),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (e *Engine) outerSplits(n int) ([]folds.Split, error) {
	if e.cfg.OuterCV {
		return folds.KFold(n, e.cfg.NOuterFolds, e.cfg.Shuffle, e.cfg.Seed)
	}
	sp, err := folds.TrainTestSplit(n, e.cfg.TestProp, e.cfg.Shuffle, e.cfg.Seed)
	if errors.Is(err, folds.ErrEmptyPartition) {
		// test_prop was valid; the trial count is what empties a side.
		return nil, fmt.Errorf("%d trials, test_prop=%v: %w", n, e.cfg.TestProp, ErrEmptyPartition)
	}
	if err != nil {
		return nil, err
	}
	return []folds.Split{sp}, nil
}

// runFold runs INNER_SEARCH, REFIT and EVALUATE for outer fold f. It returns
// the fold record and the per-test-trial labels used for pooled scoring.
func (e *Engine) runFold(set *TrialSet, f int, sp folds.Split, bins, units int, probabilities bool) (FoldResult, [][]float64, error) {
	// Stage INNER_SEARCH.
	var (
		param float64
		inner []float64
		err   error
	)
	if e.search == estimator.SearchExternal {
		param, inner, err = selectHyperparam(set, sp.Train, bins, units, InnerSearch{
			Spec:      e.spec,
			Grid:      e.cfg.Grid.Values,
			Folds:     e.cfg.NInnerFolds,
			Shuffle:   e.cfg.Shuffle,
			Seed:      folds.DeriveSeed(e.cfg.Seed, uint64(f)+1),
			Centering: e.centering,
			Weighting: e.weights,
			Scorer:    e.scorer,
		})
		if err != nil {
			return FoldResult{}, nil, stageErr(StageInnerSearch, f, err)
		}
	}

	// Stage REFIT.
	xTrain, yTrain := set.flatten(sp.Train, bins, units)
	var yOff float64
	if e.centering.Output {
		yOff = stat.Mean(yTrain, nil)
	}
	w, err := e.weights.Compute(yTrain, yOff)
	if err != nil {
		return FoldResult{}, nil, stageErr(StageRefit, f, err)
	}
	tr, err := estimator.NewTrialRegressor(e.spec, param, e.centering)
	if err != nil {
		return FoldResult{}, nil, stageErr(StageRefit, f, err)
	}
	if err = tr.Fit(xTrain, yTrain, w); err != nil {
		return FoldResult{}, nil, stageErr(StageRefit, f, err)
	}

	// Stage EVALUATE.
	trainScore, err := tr.Score(xTrain, yTrain, e.scorer)
	if err != nil {
		return FoldResult{}, nil, stageErr(StageEvaluate, f, err)
	}
	xTest, yTest := set.flatten(sp.Test, bins, units)
	pred, err := tr.Predict(xTest)
	if err != nil {
		return FoldResult{}, nil, stageErr(StageEvaluate, f, err)
	}
	testScore, err := e.scorer.Score(yTest, pred)
	if err != nil {
		return FoldResult{}, nil, stageErr(StageEvaluate, f, err)
	}
	var proba *mat.Dense
	if probabilities {
		if proba, err = tr.PredictProba(xTest); err != nil {
			return FoldResult{}, nil, stageErr(StageEvaluate, f, err)
		}
	}

	labels := make([][]float64, len(sp.Test))
	saved := make([][]float64, len(sp.Test))
	for k := range sp.Test {
		labels[k] = append([]float64(nil), pred[k*bins:(k+1)*bins]...)
		if proba != nil {
			saved[k] = []float64{proba.At(k, 0)}
		} else {
			saved[k] = append([]float64(nil), labels[k]...)
		}
	}

	fr := FoldResult{
		Fold:         f,
		Train:        append([]int(nil), sp.Train...),
		Test:         append([]int(nil), sp.Test...),
		Coef:         tr.Coef(),
		Intercept:    tr.Intercept(),
		InputOffset:  tr.InputOffset(),
		OutputOffset: tr.OutputOffset(),
		Param:        tr.Param(),
		InnerScores:  inner,
		TrainScore:   trainScore,
		TestScore:    testScore,
		Predictions:  saved,
		Warnings:     tr.Warnings(),
	}
	for _, msg := range fr.Warnings {
		e.logger.Warn("solver warning", slog.Int("fold", f), slog.String("warning", msg))
	}
	e.logger.Debug("outer fold done",
		slog.Int("fold", f),
		slog.String("param", e.cfg.Grid.Name),
		slog.Float64("value", fr.Param),
		slog.Float64("score_train", trainScore),
		slog.Float64("score_test", testScore),
	)
	return fr, labels, nil
}
