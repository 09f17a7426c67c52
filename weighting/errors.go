// SPDX-License-Identifier: MIT

package weighting

import (
	"fmt"

	"github.com/katalvlaran/bwmdecode/failure"
)

var (
	// ErrEmptyTarget is returned for a zero-length target vector.
	ErrEmptyTarget = fmt.Errorf("weighting: empty target: %w", failure.ErrConfiguration)

	// ErrBandwidth is returned when the KDE bandwidth is not a finite value > 0.
	ErrBandwidth = fmt.Errorf("weighting: bandwidth must be finite and > 0: %w", failure.ErrConfiguration)

	// ErrTooFewDistinct is returned when continuous weighting is requested for a
	// target with fewer than two distinct values (density undefined).
	ErrTooFewDistinct = fmt.Errorf("weighting: continuous target needs >= 2 distinct values: %w", failure.ErrConfiguration)

	// ErrBadReference is returned for a malformed reference histogram.
	ErrBadReference = fmt.Errorf("weighting: malformed reference distribution: %w", failure.ErrConfiguration)

	// ErrOutsideReference is returned when a target value falls outside the
	// reference support or into a bin with zero reference density.
	ErrOutsideReference = fmt.Errorf("weighting: target outside reference support: %w", failure.ErrConfiguration)

	// ErrNeedsReference is returned when MethodHistogram is used without a
	// Reference.
	ErrNeedsReference = fmt.Errorf("weighting: histogram method requires a reference: %w", failure.ErrConfiguration)

	// ErrUnknownMethod is returned by ParseMethod for an unsupported name.
	ErrUnknownMethod = fmt.Errorf("weighting: unknown weighting method: %w", failure.ErrConfiguration)

	// ErrNonFinite is returned when the target contains NaN or ±Inf.
	ErrNonFinite = fmt.Errorf("weighting: non-finite target value: %w", failure.ErrDataShape)
)
