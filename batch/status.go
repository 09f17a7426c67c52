// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"errors"

	"github.com/katalvlaran/bwmdecode/failure"
)

// Status classifies an Outcome; it is also the status label of the task
// counter.
type Status string

const (
	StatusOK            Status = "ok"
	StatusConfiguration Status = "configuration"
	StatusDataShape     Status = "data_shape"
	StatusNumerical     Status = "numerical"
	StatusCoverage      Status = "coverage"
	StatusCanceled      Status = "canceled"
	StatusPanic         Status = "panic"
	StatusOther         Status = "other"
)

// statusOf maps an error to its Status.
func statusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	switch failure.Kind(err) {
	case failure.ErrConfiguration:
		return StatusConfiguration
	case failure.ErrDataShape:
		return StatusDataShape
	case failure.ErrNumerical:
		return StatusNumerical
	case failure.ErrCoverage:
		return StatusCoverage
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StatusCanceled
	}
	return StatusOther
}
