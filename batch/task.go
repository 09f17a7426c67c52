// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/bwmdecode/decoding"
	"github.com/katalvlaran/bwmdecode/folds"
)

// RealSession is the pseudo id of the recorded session.
const RealSession = -1

// Task is one decode invocation.
type Task struct {
	Session  string `json:"session"`
	Subject  string `json:"subject,omitempty"`
	Region   string `json:"region"`
	PseudoID int    `json:"pseudo_id"`

	// Set is the recorded trial set. Targets are replaced by the Runner's
	// TargetSource when one is configured.
	Set *decoding.TrialSet `json:"-"`
}

// Key returns "<session>/<region>/<pseudo_id>".
func (t Task) Key() string {
	return t.Session + "/" + t.Region + "/" + strconv.Itoa(t.PseudoID)
}

// Outcome is the record of one finished (or skipped) Task.
type Outcome struct {
	RunID    string           `json:"run_id"`
	Session  string           `json:"session"`
	Subject  string           `json:"subject,omitempty"`
	Region   string           `json:"region"`
	PseudoID int              `json:"pseudo_id"`
	Units    int              `json:"n_units"`
	Result   *decoding.Result `json:"result,omitempty"`

	// Error and Status describe a failed task; Status is "ok" otherwise.
	Error  string `json:"error,omitempty"`
	Status Status `json:"status"`

	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// Key returns "<run>/<session>/<region>/<pseudo_id>".
func (o Outcome) Key() string {
	return o.RunID + "/" + o.Session + "/" + o.Region + "/" + strconv.Itoa(o.PseudoID)
}

// OK reports whether the task produced a Result.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// TargetSource supplies the target of a task: the recorded target for
// RealSession, a surrogate for pseudo ids >= 0. The returned slices must have
// one entry per trial of task.Set.
type TargetSource interface {
	Targets(ctx context.Context, task Task) ([][]float64, error)
}

// TargetFunc adapts a function to TargetSource.
type TargetFunc func(ctx context.Context, task Task) ([][]float64, error)

// Targets calls f.
func (f TargetFunc) Targets(ctx context.Context, task Task) ([][]float64, error) {
	return f(ctx, task)
}

// Permutation is a TargetSource that shuffles whole trials' targets. The
// permutation for pseudo id k is drawn from folds.DeriveSeed(Seed, k), so it
// is reproducible and independent across ids.
type Permutation struct {
	Seed int64
}

// Targets returns the recorded targets for RealSession and a trial-level
// permutation of them otherwise.
func (p Permutation) Targets(_ context.Context, task Task) ([][]float64, error) {
	if task.Set == nil {
		return nil, fmt.Errorf("batch: task %s has no trial set: %w", task.Key(), decoding.ErrNoTrials)
	}
	src := task.Set.Targets
	out := make([][]float64, len(src))
	if task.PseudoID == RealSession {
		for i, t := range src {
			out[i] = append([]float64(nil), t...)
		}
		return out, nil
	}
	perm := folds.NewRNG(folds.DeriveSeed(p.Seed, uint64(task.PseudoID))).Perm(len(src))
	for i, j := range perm {
		out[i] = append([]float64(nil), src[j]...)
	}
	return out, nil
}

// cloneSet deep-copies set so a task never aliases caller memory.
func cloneSet(set *decoding.TrialSet) *decoding.TrialSet {
	if set == nil {
		return nil
	}
	out := &decoding.TrialSet{
		Features: make([]*mat.Dense, len(set.Features)),
		Targets:  make([][]float64, len(set.Targets)),
	}
	for i, x := range set.Features {
		if x != nil && !x.IsEmpty() {
			out.Features[i] = mat.DenseCopyOf(x)
		}
	}
	for i, t := range set.Targets {
		out.Targets[i] = append([]float64(nil), t...)
	}
	return out
}
