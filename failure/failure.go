// SPDX-License-Identifier: MIT

// Package failure defines the error taxonomy shared by every decoding package.
//
// There are exactly four kinds. Each package declares its own, more specific
// sentinels that wrap one of these kinds, so callers can match either level:
//
//	errors.Is(err, failure.ErrConfiguration) // any invalid option
//	errors.Is(err, folds.ErrTooFewFolds)     // the precise cause
//
// Kinds:
//   - ErrConfiguration: invalid grid, fold counts, proportions or options.
//     Raised before any fitting begins; always fatal to the invocation.
//   - ErrDataShape: inconsistent bin/unit counts, target length mismatch or an
//     empty outer test set. Raised while flattening trials.
//   - ErrNumerical: a solver produced non-finite coefficients or hit a
//     factorization it cannot handle. Plain non-convergence is NOT an error;
//     it is reported as a warning on the fold result.
//   - ErrCoverage: a trial index was held out zero times or more than once in
//     K-fold mode. Signals an engine bug.
package failure

import "errors"

var (
	// ErrConfiguration marks invalid configuration detected before fitting.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataShape marks inconsistent trial, bin, unit or target shapes.
	ErrDataShape = errors.New("data shape error")

	// ErrNumerical marks unrecoverable solver output (non-finite coefficients,
	// failed factorization).
	ErrNumerical = errors.New("numerical error")

	// ErrCoverage marks a violated outer-fold coverage invariant.
	ErrCoverage = errors.New("coverage error")
)

// Kind returns the taxonomy sentinel err belongs to, or nil when err does not
// wrap any of them.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConfiguration):
		return ErrConfiguration
	case errors.Is(err, ErrDataShape):
		return ErrDataShape
	case errors.Is(err, ErrNumerical):
		return ErrNumerical
	case errors.Is(err, ErrCoverage):
		return ErrCoverage
	default:
		return nil
	}
}
