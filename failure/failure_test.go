// SPDX-License-Identifier: MIT

package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/bwmdecode/failure"
)

func TestKind_ResolvesWrappedSentinels(t *testing.T) {
	specific := fmt.Errorf("folds: fold count must be >= 2: %w", failure.ErrConfiguration)
	wrapped := fmt.Errorf("outer fold 3: %w", specific)

	assert.Equal(t, failure.ErrConfiguration, failure.Kind(specific))
	assert.Equal(t, failure.ErrConfiguration, failure.Kind(wrapped))
	assert.ErrorIs(t, wrapped, specific)

	assert.Equal(t, failure.ErrDataShape, failure.Kind(fmt.Errorf("x: %w", failure.ErrDataShape)))
	assert.Equal(t, failure.ErrNumerical, failure.Kind(fmt.Errorf("x: %w", failure.ErrNumerical)))
	assert.Equal(t, failure.ErrCoverage, failure.Kind(fmt.Errorf("x: %w", failure.ErrCoverage)))
}

func TestKind_Unclassified(t *testing.T) {
	assert.Nil(t, failure.Kind(nil))
	assert.Nil(t, failure.Kind(errors.New("disk full")))
}
