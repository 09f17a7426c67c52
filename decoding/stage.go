// SPDX-License-Identifier: MIT

package decoding

import "fmt"

// Stage is a state of one Decode call:
//
//	INIT → OUTER_LOOP → (INNER_SEARCH → REFIT → EVALUATE)* → AGGREGATE → DONE
type Stage int

const (
	StageInit Stage = iota
	StageOuterLoop
	StageInnerSearch
	StageRefit
	StageEvaluate
	StageAggregate
	StageDone
)

var stageNames = [...]string{
	StageInit:        "INIT",
	StageOuterLoop:   "OUTER_LOOP",
	StageInnerSearch: "INNER_SEARCH",
	StageRefit:       "REFIT",
	StageEvaluate:    "EVALUATE",
	StageAggregate:   "AGGREGATE",
	StageDone:        "DONE",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageError records where a Decode call failed. Fold is -1 outside the
// outer loop.
type StageError struct {
	Stage Stage
	Fold  int
	Err   error
}

func (e *StageError) Error() string {
	if e.Fold < 0 {
		return fmt.Sprintf("decoding: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("decoding: %s (outer fold %d): %v", e.Stage, e.Fold, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(s Stage, fold int, err error) error {
	return &StageError{Stage: s, Fold: fold, Err: err}
}
