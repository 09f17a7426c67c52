// SPDX-License-Identifier: MIT

package decoding

import (
	"fmt"

	"github.com/katalvlaran/bwmdecode/failure"
)

// Configuration errors, returned by Config.Validate before any data is read.
var (
	// ErrEmptyGrid indicates a hyperparameter grid with no values.
	ErrEmptyGrid = fmt.Errorf("decoding: empty hyperparameter grid: %w", failure.ErrConfiguration)

	// ErrGridName indicates a grid keyed by a name the estimator does not accept.
	ErrGridName = fmt.Errorf("decoding: grid name does not match estimator hyperparameter: %w", failure.ErrConfiguration)

	// ErrFoldCount indicates n_outer_folds or n_inner_folds below 2.
	ErrFoldCount = fmt.Errorf("decoding: fold counts must be >= 2: %w", failure.ErrConfiguration)

	// ErrTestProp indicates test_prop outside (0, 1) in single-split mode.
	ErrTestProp = fmt.Errorf("decoding: test_prop must be in (0, 1): %w", failure.ErrConfiguration)

	// ErrContinuousClassifier indicates continuous-target balancing combined
	// with a classifier.
	ErrContinuousClassifier = fmt.Errorf("decoding: continuous target weighting with a classifier: %w", failure.ErrConfiguration)

	// ErrWeightSource indicates an unknown weight_source value.
	ErrWeightSource = fmt.Errorf("decoding: weight_source must be raw or centered: %w", failure.ErrConfiguration)

	// ErrInnerFeasibility indicates an outer training partition smaller than
	// n_inner_folds.
	ErrInnerFeasibility = fmt.Errorf("decoding: outer training partition too small for inner folds: %w", failure.ErrConfiguration)
)

// Data shape errors, returned while checking or flattening a TrialSet.
var (
	// ErrNoTrials indicates an empty TrialSet.
	ErrNoTrials = fmt.Errorf("decoding: no trials: %w", failure.ErrDataShape)

	// ErrTargetCount indicates len(Targets) != len(Features).
	ErrTargetCount = fmt.Errorf("decoding: target count differs from trial count: %w", failure.ErrDataShape)

	// ErrBinMismatch indicates trials with different bin counts, or a target
	// whose length differs from its trial's bin count.
	ErrBinMismatch = fmt.Errorf("decoding: inconsistent bin count: %w", failure.ErrDataShape)

	// ErrUnitMismatch indicates trials with different unit counts.
	ErrUnitMismatch = fmt.Errorf("decoding: inconsistent unit count: %w", failure.ErrDataShape)

	// ErrNonFinite indicates NaN or ±Inf in features or targets.
	ErrNonFinite = fmt.Errorf("decoding: non-finite value in trial set: %w", failure.ErrDataShape)

	// ErrEmptyPartition indicates an outer test or train partition with no trials.
	ErrEmptyPartition = fmt.Errorf("decoding: empty outer partition: %w", failure.ErrDataShape)
)

// ErrCoverage indicates a trial predicted zero or several times in K-fold mode.
var ErrCoverage = fmt.Errorf("decoding: held-out coverage violated: %w", failure.ErrCoverage)
