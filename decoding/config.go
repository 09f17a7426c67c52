// SPDX-License-Identifier: MIT

package decoding

import (
	"fmt"
	"math"

	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/weighting"
)

// Grid is a single-axis hyperparameter grid, scanned in order.
type Grid struct {
	// Name is the hyperparameter: "alpha", or "C" for logistic. Empty means
	// the estimator's own parameter name.
	Name   string    `json:"name" yaml:"name"`
	Values []float64 `json:"values" yaml:"values"`
}

// WeightSource selects the target vector balanced weights are computed from.
type WeightSource string

const (
	// WeightRaw computes weights from the training target as given.
	WeightRaw WeightSource = "raw"

	// WeightCentered computes weights from the training target after output
	// centering (identical to WeightRaw when normalize_output is off).
	WeightCentered WeightSource = "centered"
)

// Config is the complete, explicit configuration of one decode run.
type Config struct {
	Estimator estimator.Kind `json:"estimator" yaml:"estimator"`
	Grid      Grid           `json:"hyperparam_grid" yaml:"hyperparam_grid"`

	NOuterFolds int   `json:"n_outer_folds" yaml:"n_outer_folds"`
	NInnerFolds int   `json:"n_inner_folds" yaml:"n_inner_folds"`
	Shuffle     bool  `json:"shuffle" yaml:"shuffle"`
	Seed        int64 `json:"seed" yaml:"seed"`

	// OuterCV selects K-fold outer cross-validation; false uses a single
	// train/test split with TestProp held out.
	OuterCV  bool    `json:"outer_cv" yaml:"outer_cv"`
	TestProp float64 `json:"test_prop" yaml:"test_prop"`

	BalancedWeight   bool                 `json:"balanced_weight" yaml:"balanced_weight"`
	ContinuousTarget bool                 `json:"continuous_target" yaml:"continuous_target"`
	Bandwidth        float64              `json:"bandwidth" yaml:"bandwidth"`
	WeightingMethod  weighting.Method     `json:"weighting_method" yaml:"weighting_method"`
	WeightSource     WeightSource         `json:"weight_source" yaml:"weight_source"`
	Reference        *weighting.Reference `json:"reference,omitempty" yaml:"reference,omitempty"`

	NormalizeInput  bool `json:"normalize_input" yaml:"normalize_input"`
	NormalizeOutput bool `json:"normalize_output" yaml:"normalize_output"`

	SaveBinned      bool `json:"save_binned" yaml:"save_binned"`
	SavePredictions bool `json:"save_predictions" yaml:"save_predictions"`

	FitIntercept bool    `json:"fit_intercept" yaml:"fit_intercept"`
	MaxIter      int     `json:"max_iter" yaml:"max_iter"`
	Tol          float64 `json:"tol" yaml:"tol"`
}

// DefaultConfig returns a 5×5 shuffled K-fold ridge configuration with an
// intercept, seed 0 and prediction saving on. The grid is left empty and must
// be set by the caller.
func DefaultConfig() Config {
	return Config{
		Estimator:       estimator.Ridge,
		Grid:            Grid{Name: estimator.Ridge.Param()},
		NOuterFolds:     5,
		NInnerFolds:     5,
		Shuffle:         true,
		OuterCV:         true,
		TestProp:        0.2,
		Bandwidth:       weighting.DefaultBandwidth,
		WeightingMethod: weighting.MethodKDE,
		WeightSource:    WeightRaw,
		SavePredictions: true,
		FitIntercept:    true,
		MaxIter:         estimator.DefaultMaxIter,
		Tol:             estimator.DefaultTol,
	}
}

// Validate checks every option. It never looks at data.
//
// Stage 1: grid (non-empty, name, values).
// Stage 2: partitioning (fold counts or test_prop).
// Stage 3: weighting and centering against the estimator kind.
// Stage 4: solver settings.
func (c Config) Validate() error {
	// Stage 1 (Grid).
	if len(c.Grid.Values) == 0 {
		return ErrEmptyGrid
	}
	if c.Grid.Name != "" && c.Grid.Name != c.Estimator.Param() {
		return fmt.Errorf("grid %q for %s (want %q): %w", c.Grid.Name, c.Estimator, c.Estimator.Param(), ErrGridName)
	}
	for _, v := range c.Grid.Values {
		if err := c.Estimator.CheckParam(v); err != nil {
			return err
		}
	}

	// Stage 2 (Partitioning).
	if c.OuterCV && c.NOuterFolds < 2 {
		return fmt.Errorf("n_outer_folds=%d: %w", c.NOuterFolds, ErrFoldCount)
	}
	if !c.OuterCV && !(c.TestProp > 0 && c.TestProp < 1) {
		return fmt.Errorf("test_prop=%v: %w", c.TestProp, ErrTestProp)
	}
	if c.Estimator.Search() == estimator.SearchExternal && c.NInnerFolds < 2 {
		return fmt.Errorf("n_inner_folds=%d: %w", c.NInnerFolds, ErrFoldCount)
	}

	// Stage 3 (Weighting, centering).
	if c.Estimator.Classifier() {
		if c.BalancedWeight && c.ContinuousTarget {
			return ErrContinuousClassifier
		}
		if c.NormalizeOutput {
			return estimator.ErrOutputCentering
		}
	}
	switch c.WeightSource {
	case "", WeightRaw, WeightCentered:
	default:
		return fmt.Errorf("weight_source=%q: %w", c.WeightSource, ErrWeightSource)
	}
	if c.BalancedWeight && c.ContinuousTarget {
		switch c.WeightingMethod {
		case weighting.MethodKDE:
			if !(c.Bandwidth > 0) || math.IsInf(c.Bandwidth, 0) {
				return fmt.Errorf("bandwidth=%v: %w", c.Bandwidth, weighting.ErrBandwidth)
			}
		case weighting.MethodHistogram:
			if c.Reference == nil {
				return weighting.ErrNeedsReference
			}
		default:
			return weighting.ErrUnknownMethod
		}
	}
	if err := c.Reference.Validate(); err != nil {
		return err
	}

	// Stage 4 (Solver).
	return c.Spec().Validate()
}

// Spec returns the estimator spec implied by c.
func (c Config) Spec() estimator.Spec {
	s := estimator.Spec{
		Kind:         c.Estimator,
		FitIntercept: c.FitIntercept,
		MaxIter:      c.MaxIter,
		Tol:          c.Tol,
	}
	if c.Estimator.Search() == estimator.SearchInternal {
		s.Grid = append([]float64(nil), c.Grid.Values...)
	}
	return s
}

// Centering returns the centering flags implied by c.
func (c Config) Centering() estimator.Centering {
	return estimator.Centering{Input: c.NormalizeInput, Output: c.NormalizeOutput}
}

// Weighting returns the sample-weighting policy implied by c.
func (c Config) Weighting() Weighting {
	src := c.WeightSource
	if src == "" {
		src = WeightRaw
	}
	return Weighting{
		Enabled: c.BalancedWeight,
		Source:  src,
		Options: weighting.Options{
			Continuous: c.ContinuousTarget,
			Bandwidth:  c.Bandwidth,
			Method:     c.WeightingMethod,
			Reference:  c.Reference,
		},
	}
}

// Weighting is a per-row sample-weight policy.
type Weighting struct {
	Enabled bool
	Source  WeightSource
	Options weighting.Options
}

// Compute returns weights for the training target y, or nil when disabled.
// yOffset is the output-centering offset already learned from y; it is
// subtracted first when Source is WeightCentered.
func (w Weighting) Compute(y []float64, yOffset float64) ([]float64, error) {
	if !w.Enabled {
		return nil, nil
	}
	if w.Source == WeightCentered && yOffset != 0 {
		centered := make([]float64, len(y))
		for i, v := range y {
			centered[i] = v - yOffset
		}
		y = centered
	}
	return weighting.Balanced(y, w.Options)
}
