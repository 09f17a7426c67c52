// SPDX-License-Identifier: MIT

package estimator

import (
	"fmt"
	"math"
	"strings"
)

// Kind enumerates the supported estimators.
type Kind int

const (
	Ridge Kind = iota
	Lasso
	Linear
	Logistic
	RidgeCV
)

var kindNames = [...]string{
	Ridge:    "ridge",
	Lasso:    "lasso",
	Linear:   "linear",
	Logistic: "logistic",
	RidgeCV:  "ridgecv",
}

// ParseKind maps a config name (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// String returns the config spelling of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Param returns the name of the regularization hyperparameter.
func (k Kind) Param() string {
	if k == Logistic {
		return "C"
	}
	return "alpha"
}

// Classifier reports whether k predicts discrete labels.
func (k Kind) Classifier() bool { return k == Logistic }

// Search tells who runs the hyperparameter search for an estimator kind.
type Search int

const (
	// SearchExternal: the caller runs the inner cross-validation loop.
	SearchExternal Search = iota

	// SearchInternal: the estimator selects its hyperparameter during Fit.
	SearchInternal
)

// Search resolves the dispatch tag of k.
func (k Kind) Search() Search {
	if k == RidgeCV {
		return SearchInternal
	}
	return SearchExternal
}

// Solver defaults.
const (
	DefaultMaxIter = 20000
	DefaultTol     = 1e-4
)

// Spec fixes everything about an estimator except its hyperparameter value.
type Spec struct {
	Kind         Kind
	FitIntercept bool
	MaxIter      int     // iterative solvers (lasso, logistic)
	Tol          float64 // iterative solvers (lasso, logistic)

	// Grid is the candidate alpha list searched by SearchInternal kinds.
	Grid []float64
}

// DefaultSpec returns a Spec for k with an intercept and default solver limits.
func DefaultSpec(k Kind) Spec {
	return Spec{
		Kind:         k,
		FitIntercept: true,
		MaxIter:      DefaultMaxIter,
		Tol:          DefaultTol,
	}
}

// Validate checks solver settings, and the internal grid for SearchInternal
// kinds.
func (s Spec) Validate() error {
	if s.Kind < 0 || int(s.Kind) >= len(kindNames) {
		return ErrUnknownKind
	}
	if s.MaxIter <= 0 {
		return fmt.Errorf("max_iter=%d: %w", s.MaxIter, ErrBadSpec)
	}
	if !(s.Tol > 0) || math.IsInf(s.Tol, 0) {
		return fmt.Errorf("tol=%v: %w", s.Tol, ErrBadSpec)
	}
	if s.Kind.Search() == SearchInternal {
		if len(s.Grid) == 0 {
			return fmt.Errorf("empty internal grid: %w", ErrBadSpec)
		}
		for _, a := range s.Grid {
			if err := s.Kind.CheckParam(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckParam validates a hyperparameter value for k: alpha must be finite and
// >= 0, C finite and > 0.
func (k Kind) CheckParam(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s=%v: %w", k.Param(), v, ErrBadParam)
	}
	if k == Logistic && v == 0 {
		return fmt.Errorf("C=0: %w", ErrBadParam)
	}
	return nil
}
