// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/bwmdecode/decoding"
)

// Sink receives every Outcome as soon as its task finishes. Put may be called
// from several goroutines at once.
type Sink interface {
	Put(ctx context.Context, o Outcome) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of tasks running at once (default
// GOMAXPROCS). Values < 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.limit = n
		}
	}
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTargetSource replaces task targets before decoding.
func WithTargetSource(s TargetSource) Option {
	return func(r *Runner) { r.source = s }
}

// WithSink forwards each Outcome to s. A Sink error is logged and does not
// change the Outcome.
func WithSink(s Sink) Option {
	return func(r *Runner) { r.sink = s }
}

// WithRegisterer registers the task metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Runner) { r.registerer = reg }
}

// WithRunID fixes the run id instead of generating a UUID.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// Runner executes Tasks for one decoding.Config.
type Runner struct {
	cfg        decoding.Config
	limit      int
	runID      string
	source     TargetSource
	sink       Sink
	registerer prometheus.Registerer
	logger     *slog.Logger
	metrics    *runnerMetrics
}

// NewRunner validates cfg and returns a Runner. Configuration errors are
// reported here rather than once per task.
func NewRunner(cfg decoding.Config, opts ...Option) (*Runner, error) {
	if _, err := decoding.New(cfg); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		limit:  runtime.GOMAXPROCS(0),
		runID:  uuid.NewString(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	m, err := newRunnerMetrics(r.registerer)
	if err != nil {
		return nil, fmt.Errorf("batch: registering metrics: %w", err)
	}
	r.metrics = m
	return r, nil
}

// RunID returns the id stamped on every Outcome of this Runner.
func (r *Runner) RunID() string { return r.runID }

// Run executes tasks and returns one Outcome per task, in task order. Task
// failures are recorded in their Outcomes and never stop other tasks. When
// ctx is cancelled, tasks not yet started are marked StatusCanceled and
// ctx.Err() is returned alongside the outcomes.
func (r *Runner) Run(ctx context.Context, tasks []Task) ([]Outcome, error) {
	start := time.Now()
	outcomes := make([]Outcome, len(tasks))

	r.logger.Info("batch started",
		slog.String("run_id", r.runID),
		slog.Int("tasks", len(tasks)),
		slog.Int("concurrency", r.limit),
	)

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, task := range tasks {
		if ctx.Err() != nil {
			for j := i; j < len(tasks); j++ {
				outcomes[j] = r.canceled(tasks[j], ctx.Err())
			}
			break
		}
		i, task := i, task
		g.Go(func() error {
			outcomes[i] = r.runTask(ctx, task)
			return nil // task errors live in the Outcome
		})
	}
	_ = g.Wait()

	var failed int
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}
	r.logger.Info("batch done",
		slog.String("run_id", r.runID),
		slog.Int("tasks", len(tasks)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)
	return outcomes, ctx.Err()
}

func (r *Runner) canceled(task Task, err error) Outcome {
	o := r.newOutcome(task)
	o.Status = StatusCanceled
	o.Error = err.Error()
	r.metrics.observe(o)
	return o
}

func (r *Runner) newOutcome(task Task) Outcome {
	o := Outcome{
		RunID:    r.runID,
		Session:  task.Session,
		Subject:  task.Subject,
		Region:   task.Region,
		PseudoID: task.PseudoID,
		Started:  time.Now(),
	}
	if task.Set != nil && task.Set.Len() > 0 && task.Set.Features[0] != nil {
		_, o.Units = task.Set.Features[0].Dims()
	}
	return o
}

// runTask decodes one task on private copies of its inputs.
func (r *Runner) runTask(ctx context.Context, task Task) (o Outcome) {
	if err := ctx.Err(); err != nil {
		return r.canceled(task, err)
	}

	o = r.newOutcome(task)
	logger := r.logger.With(
		slog.String("run_id", r.runID),
		slog.String("session", task.Session),
		slog.String("region", task.Region),
		slog.Int("pseudo_id", task.PseudoID),
	)

	defer func() {
		if p := recover(); p != nil {
			o.Result = nil
			o.Status = StatusPanic
			o.Error = fmt.Sprintf("panic: %v", p)
		}
		o.Duration = time.Since(o.Started)
		r.metrics.observe(o)

		if o.OK() {
			logger.Info("task done",
				slog.Float64("scores_test_full", o.Result.ScoresTestFull),
				slog.Duration("duration", o.Duration),
			)
		} else {
			logger.Error("task failed",
				slog.String("status", string(o.Status)),
				slog.String("error", o.Error),
			)
		}
		if r.sink != nil {
			if err := r.sink.Put(ctx, o); err != nil {
				logger.Error("storing outcome failed", slog.String("error", err.Error()))
			}
		}
	}()

	res, err := r.decode(ctx, task, logger)
	o.Result = res
	o.Status = statusOf(err)
	if err != nil {
		o.Error = err.Error()
	}
	return o
}

func (r *Runner) decode(ctx context.Context, task Task, logger *slog.Logger) (*decoding.Result, error) {
	set := cloneSet(task.Set)
	if r.source != nil {
		targets, err := r.source.Targets(ctx, Task{
			Session:  task.Session,
			Subject:  task.Subject,
			Region:   task.Region,
			PseudoID: task.PseudoID,
			Set:      set,
		})
		if err != nil {
			return nil, fmt.Errorf("targets for %s: %w", task.Key(), err)
		}
		if set == nil {
			return nil, decoding.ErrNoTrials
		}
		set.Targets = targets
	}

	eng, err := decoding.New(r.cfg, decoding.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return eng.Decode(set)
}
