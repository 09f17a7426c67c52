// SPDX-License-Identifier: MIT

package estimator

import (
	"fmt"

	"github.com/katalvlaran/bwmdecode/failure"
)

var (
	// ErrUnknownKind is returned by ParseKind for an unsupported estimator name.
	ErrUnknownKind = fmt.Errorf("estimator: unknown estimator: %w", failure.ErrConfiguration)

	// ErrBadParam is returned for a negative or non-finite hyperparameter, or a
	// non-positive C.
	ErrBadParam = fmt.Errorf("estimator: invalid hyperparameter value: %w", failure.ErrConfiguration)

	// ErrBadSpec is returned for invalid solver settings (MaxIter, Tol, Grid).
	ErrBadSpec = fmt.Errorf("estimator: invalid estimator spec: %w", failure.ErrConfiguration)

	// ErrOutputCentering is returned when output centering is requested for a
	// classifier (labels cannot be de-meaned).
	ErrOutputCentering = fmt.Errorf("estimator: output centering is undefined for classifiers: %w", failure.ErrConfiguration)

	// ErrShape is returned when X, y and weights disagree in length, or when
	// X at predict time has a different column count than at fit time.
	ErrShape = fmt.Errorf("estimator: inconsistent shapes: %w", failure.ErrDataShape)

	// ErrSingleClass is returned when a classifier is fit on one class only.
	ErrSingleClass = fmt.Errorf("estimator: classifier needs at least two classes: %w", failure.ErrDataShape)

	// ErrNotFitted is returned by Predict/Score before a successful Fit.
	ErrNotFitted = fmt.Errorf("estimator: model is not fitted: %w", failure.ErrConfiguration)

	// ErrNotClassifier is returned by PredictProba on a regression model.
	ErrNotClassifier = fmt.Errorf("estimator: probabilities need a classifier: %w", failure.ErrConfiguration)

	// ErrSingular is returned when the normal equations cannot be factorized.
	ErrSingular = fmt.Errorf("estimator: singular system: %w", failure.ErrNumerical)

	// ErrNonFinite is returned when fitting produced NaN or ±Inf coefficients.
	ErrNonFinite = fmt.Errorf("estimator: non-finite coefficients: %w", failure.ErrNumerical)
)
