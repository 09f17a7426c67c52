// SPDX-License-Identifier: MIT

package folds

import (
	"fmt"

	"github.com/katalvlaran/bwmdecode/failure"
)

// Sentinel errors. Each wraps failure.ErrConfiguration.
var (
	// ErrTooFewFolds is returned when k < 2 in K-fold mode.
	ErrTooFewFolds = fmt.Errorf("folds: fold count must be >= 2: %w", failure.ErrConfiguration)

	// ErrTooFewTrials is returned when n < k (some fold would be empty).
	ErrTooFewTrials = fmt.Errorf("folds: fewer trials than folds: %w", failure.ErrConfiguration)

	// ErrBadProportion is returned when the held-out proportion is outside (0,1).
	ErrBadProportion = fmt.Errorf("folds: test proportion must be in (0,1): %w", failure.ErrConfiguration)

	// ErrEmptyPartition is returned when round(n·p) leaves the train or test
	// side of a single split empty.
	ErrEmptyPartition = fmt.Errorf("folds: split leaves an empty partition: %w", failure.ErrConfiguration)
)
