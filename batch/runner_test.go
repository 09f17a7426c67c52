// SPDX-License-Identifier: MIT

package batch_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/bwmdecode/batch"
	"github.com/katalvlaran/bwmdecode/decoding"
	"github.com/katalvlaran/bwmdecode/failure"
)

func regressionSet(seed int64, n int) *decoding.TrialSet {
	rng := rand.New(rand.NewSource(seed))
	set := &decoding.TrialSet{}
	for i := 0; i < n; i++ {
		row := []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		set.Features = append(set.Features, mat.NewDense(1, 3, row))
		set.Targets = append(set.Targets, []float64{2*row[0] - row[1] + 0.3*rng.NormFloat64()})
	}
	return set
}

func config() decoding.Config {
	cfg := decoding.DefaultConfig()
	cfg.Grid.Values = []float64{0.1, 10}
	cfg.NOuterFolds, cfg.NInnerFolds = 3, 3
	return cfg
}

type memorySink struct {
	mu   sync.Mutex
	keys []string
}

func (s *memorySink) Put(_ context.Context, o batch.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, o.Key())
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, status string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunnerFailureIsolation(t *testing.T) {
	broken := regressionSet(3, 30)
	broken.Targets = broken.Targets[:10]

	tasks := []batch.Task{
		{Session: "s1", Region: "VISp", PseudoID: batch.RealSession, Set: regressionSet(1, 30)},
		{Session: "s1", Region: "CA1", PseudoID: batch.RealSession, Set: broken},
		{Session: "s2", Region: "VISp", PseudoID: batch.RealSession, Set: regressionSet(2, 30)},
	}
	reg := prometheus.NewRegistry()
	sink := &memorySink{}
	r, err := batch.NewRunner(config(),
		batch.WithConcurrency(2),
		batch.WithRegisterer(reg),
		batch.WithSink(sink),
		batch.WithRunID("run-1"),
	)
	require.NoError(t, err)
	assert.Equal(t, "run-1", r.RunID())

	out, err := r.Run(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.True(t, out[0].OK())
	assert.Greater(t, out[0].Result.ScoresTestFull, 0.8)
	assert.Equal(t, 3, out[0].Units)
	assert.Equal(t, "run-1/s1/VISp/-1", out[0].Key())

	assert.False(t, out[1].OK())
	assert.Equal(t, batch.StatusDataShape, out[1].Status)
	assert.Nil(t, out[1].Result)
	assert.NotEmpty(t, out[1].Error)

	assert.True(t, out[2].OK())
	assert.Equal(t, "s2", out[2].Session)

	assert.ElementsMatch(t, []string{"run-1/s1/VISp/-1", "run-1/s1/CA1/-1", "run-1/s2/VISp/-1"}, sink.keys)
	assert.Equal(t, 2.0, counterValue(t, reg, "bwmdecode_tasks_total", "ok"))
	assert.Equal(t, 1.0, counterValue(t, reg, "bwmdecode_tasks_total", "data_shape"))
}

func TestRunnerDoesNotMutateInputs(t *testing.T) {
	set := regressionSet(4, 24)
	before := set.Targets[0][0]

	r, err := batch.NewRunner(config(), batch.WithTargetSource(batch.Permutation{Seed: 1}))
	require.NoError(t, err)
	out, err := r.Run(context.Background(), []batch.Task{
		{Session: "s", Region: "r", PseudoID: 0, Set: set},
		{Session: "s", Region: "r", PseudoID: 1, Set: set},
	})
	require.NoError(t, err)
	assert.True(t, out[0].OK())
	assert.True(t, out[1].OK())
	assert.Equal(t, before, set.Targets[0][0])
}

func TestRunnerRealBeatsPseudo(t *testing.T) {
	set := regressionSet(5, 60)
	tasks := []batch.Task{{Session: "s", Region: "r", PseudoID: batch.RealSession, Set: set}}
	for id := 0; id < 4; id++ {
		tasks = append(tasks, batch.Task{Session: "s", Region: "r", PseudoID: id, Set: set})
	}
	r, err := batch.NewRunner(config(), batch.WithTargetSource(batch.Permutation{Seed: 9}))
	require.NoError(t, err)
	out, err := r.Run(context.Background(), tasks)
	require.NoError(t, err)

	realScore := out[0].Result.ScoresTestFull
	for _, o := range out[1:] {
		require.True(t, o.OK(), o.Error)
		assert.Less(t, o.Result.ScoresTestFull, realScore)
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := prometheus.NewRegistry()
	r, err := batch.NewRunner(config(), batch.WithRegisterer(reg))
	require.NoError(t, err)
	out, err := r.Run(ctx, []batch.Task{
		{Session: "a", Region: "r", Set: regressionSet(6, 20)},
		{Session: "b", Region: "r", Set: regressionSet(7, 20)},
	})
	assert.ErrorIs(t, err, context.Canceled)
	for _, o := range out {
		assert.Equal(t, batch.StatusCanceled, o.Status)
	}
	assert.Equal(t, 2.0, counterValue(t, reg, "bwmdecode_tasks_total", "canceled"))
}

func TestRunnerPanicIsolation(t *testing.T) {
	src := batch.TargetFunc(func(_ context.Context, task batch.Task) ([][]float64, error) {
		if task.PseudoID == 2 {
			panic("broken surrogate")
		}
		return task.Set.Targets, nil
	})
	r, err := batch.NewRunner(config(), batch.WithTargetSource(src), batch.WithConcurrency(1))
	require.NoError(t, err)

	set := regressionSet(8, 30)
	out, err := r.Run(context.Background(), []batch.Task{
		{Session: "s", Region: "r", PseudoID: 1, Set: set},
		{Session: "s", Region: "r", PseudoID: 2, Set: set},
		{Session: "s", Region: "r", PseudoID: 3, Set: set},
	})
	require.NoError(t, err)
	assert.True(t, out[0].OK())
	assert.Equal(t, batch.StatusPanic, out[1].Status)
	assert.Contains(t, out[1].Error, "broken surrogate")
	assert.True(t, out[2].OK())
}

func TestNewRunnerRejectsConfig(t *testing.T) {
	cfg := config()
	cfg.Grid.Values = nil
	_, err := batch.NewRunner(cfg)
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestRunnersShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := batch.NewRunner(config(), batch.WithRegisterer(reg))
	require.NoError(t, err)
	_, err = batch.NewRunner(config(), batch.WithRegisterer(reg))
	assert.NoError(t, err)
}
