// SPDX-License-Identifier: MIT

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/bwmdecode/config"
	"github.com/katalvlaran/bwmdecode/decoding"
	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/failure"
	"github.com/katalvlaran/bwmdecode/weighting"
)

const ridgeYAML = `
decoding:
  estimator: ridge
  hyperparam_grid:
    alpha: [0.1, 1, 10]
  n_outer_folds: 4
  seed: 7
  balanced_weight: true
  continuous_target: true
  weighting_method: histogram
  reference:
    density: [0.5, 0.5]
    edges: [0, 1, 2]
batch:
  concurrency: 2
  pseudo_ids: [-1, 1, 2]
store:
  in_memory: true
log:
  level: debug
  format: json
`

func TestParse_Overlay(t *testing.T) {
	f, err := config.Parse([]byte(ridgeYAML))
	require.NoError(t, err)

	assert.Equal(t, "ridge", f.Decoding.Estimator)
	assert.Equal(t, 4, f.Decoding.NOuterFolds)
	assert.Equal(t, 5, f.Decoding.NInnerFolds, "unset keys keep defaults")
	assert.True(t, f.Decoding.Shuffle)
	assert.Equal(t, []int{-1, 1, 2}, f.Batch.PseudoIDs)
	assert.True(t, f.Store.InMemory)

	cfg, err := f.DecodingConfig()
	require.NoError(t, err)
	assert.Equal(t, estimator.Ridge, cfg.Estimator)
	assert.Equal(t, decoding.Grid{Name: "alpha", Values: []float64{0.1, 1, 10}}, cfg.Grid)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, weighting.MethodHistogram, cfg.WeightingMethod)
	assert.Equal(t, decoding.WeightRaw, cfg.WeightSource)
	require.NotNil(t, cfg.Reference)
	assert.Equal(t, []float64{0, 1, 2}, cfg.Reference.Edges)
	assert.InDelta(t, 1e-4, cfg.Tol, 0)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [1]}\n  colour: red\n",
		"unknown model":  "decoding:\n  estimator: svm\n  hyperparam_grid: {alpha: [1]}\n",
		"no grid":        "decoding:\n  estimator: ridge\n",
		"two axes":       "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [1], C: [1]}\n",
		"empty values":   "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: []}\n",
		"wrong axis":     "decoding:\n  estimator: logistic\n  hyperparam_grid: {alpha: [1]}\n",
		"test prop":      "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [1]}\n  test_prop: 1.5\n",
		"bad level":      "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [1]}\nlog:\n  level: loud\n",
		"no pseudo ids":  "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [1]}\nbatch:\n  pseudo_ids: []\n",
		"one outer fold": "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [1]}\n  n_outer_folds: 1\n",
		"negative alpha": "decoding:\n  estimator: ridge\n  hyperparam_grid: {alpha: [-1]}\n",
		"malformed":      "decoding: [",

		"centered logistic": "decoding:\n  estimator: logistic\n  hyperparam_grid: {C: [1]}\n  normalize_output: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, failure.ErrConfiguration)
		})
	}
}

func TestParse_Env(t *testing.T) {
	t.Setenv("BWMDECODE_SEED", "99")
	t.Setenv("BWMDECODE_CONCURRENCY", "3")
	t.Setenv("BWMDECODE_STORE", "/tmp/elsewhere")

	f, err := config.Parse([]byte(ridgeYAML))
	require.NoError(t, err)
	assert.Equal(t, int64(99), f.Decoding.Seed)
	assert.Equal(t, 3, f.Batch.Concurrency)
	assert.Equal(t, "/tmp/elsewhere", f.Store.Path)

	t.Setenv("BWMDECODE_SEED", "seven")
	_, err = config.Parse([]byte(ridgeYAML))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ridgeYAML), 0o600))

	f, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Batch.Concurrency)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLog_Logger(t *testing.T) {
	var buf bytes.Buffer
	lg := config.Log{Level: "warn", Format: "json"}.Logger(&buf)
	lg.Info("hidden")
	lg.Warn("shown", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"msg":"shown"`)
}
