// SPDX-License-Identifier: MIT

// Package config loads YAML run files for the bwmdecode command: decoding
// options, batch scheduling, result storage and logging, plus the session
// input files the batch runs over.
//
// Loading order: defaults, then the file, then BWMDECODE_* environment
// overrides, then validation. Struct-level checks use
// go-playground/validator; cross-field decoding rules are checked by
// decoding.Config.Validate when the decoding section is converted.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/bwmdecode/decoding"
	"github.com/katalvlaran/bwmdecode/estimator"
	"github.com/katalvlaran/bwmdecode/failure"
	"github.com/katalvlaran/bwmdecode/weighting"
)

// ErrInvalid wraps parse and validation failures of a config file.
var ErrInvalid = fmt.Errorf("config: invalid file: %w", failure.ErrConfiguration)

var validate = validator.New(validator.WithRequiredStructEnabled())

// File is a complete run file.
type File struct {
	Decoding Decoding `yaml:"decoding"`
	Batch    Batch    `yaml:"batch"`
	Store    Store    `yaml:"store"`
	Log      Log      `yaml:"log"`
}

// Decoding mirrors decoding.Config with YAML-friendly types.
type Decoding struct {
	Estimator      string               `yaml:"estimator" validate:"required,oneof=ridge lasso linear logistic ridgecv"`
	HyperparamGrid map[string][]float64 `yaml:"hyperparam_grid" validate:"required,len=1,dive,min=1"`

	NOuterFolds int     `yaml:"n_outer_folds" validate:"gte=0"`
	NInnerFolds int     `yaml:"n_inner_folds" validate:"gte=0"`
	Shuffle     bool    `yaml:"shuffle"`
	Seed        int64   `yaml:"seed"`
	OuterCV     bool    `yaml:"outer_cv"`
	TestProp    float64 `yaml:"test_prop" validate:"gt=0,lt=1"`

	BalancedWeight   bool                 `yaml:"balanced_weight"`
	ContinuousTarget bool                 `yaml:"continuous_target"`
	Bandwidth        float64              `yaml:"bandwidth" validate:"gt=0"`
	WeightingMethod  string               `yaml:"weighting_method" validate:"oneof=kde histogram"`
	WeightSource     string               `yaml:"weight_source" validate:"oneof=raw centered"`
	Reference        *weighting.Reference `yaml:"reference"`

	NormalizeInput  bool `yaml:"normalize_input"`
	NormalizeOutput bool `yaml:"normalize_output"`
	SaveBinned      bool `yaml:"save_binned"`
	SavePredictions bool `yaml:"save_predictions"`

	FitIntercept bool    `yaml:"fit_intercept"`
	MaxIter      int     `yaml:"max_iter" validate:"gte=1"`
	Tol          float64 `yaml:"tol" validate:"gt=0"`
}

// Batch configures the worker pool and the pseudo sessions to run.
type Batch struct {
	Concurrency     int   `yaml:"concurrency" validate:"gte=0"`
	PseudoIDs       []int `yaml:"pseudo_ids" validate:"min=1,dive,gte=-1"`
	PermutationSeed int64 `yaml:"permutation_seed"`
}

// Store configures the result database.
type Store struct {
	Path     string `yaml:"path" validate:"required_without=InMemory"`
	InMemory bool   `yaml:"in_memory"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns a File with every option at its default; the grid is empty.
func Default() *File {
	d := decoding.DefaultConfig()
	return &File{
		Decoding: Decoding{
			Estimator:       d.Estimator.String(),
			NOuterFolds:     d.NOuterFolds,
			NInnerFolds:     d.NInnerFolds,
			Shuffle:         d.Shuffle,
			Seed:            d.Seed,
			OuterCV:         d.OuterCV,
			TestProp:        d.TestProp,
			Bandwidth:       d.Bandwidth,
			WeightingMethod: d.WeightingMethod.String(),
			WeightSource:    string(d.WeightSource),
			SavePredictions: d.SavePredictions,
			FitIntercept:    d.FitIntercept,
			MaxIter:         d.MaxIter,
			Tol:             d.Tol,
		},
		Batch: Batch{PseudoIDs: []int{-1}},
		Store: Store{Path: "bwmdecode.db"},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load reads, overrides and validates the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML over the defaults, applies environment overrides and
// validates. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	if err := f.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate runs the struct rules and the decoding cross-field rules.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	_, err := f.DecodingConfig()
	return err
}

// DecodingConfig converts the decoding section into a validated
// decoding.Config.
func (f *File) DecodingConfig() (decoding.Config, error) {
	d := f.Decoding
	kind, err := estimator.ParseKind(d.Estimator)
	if err != nil {
		return decoding.Config{}, err
	}
	method, err := weighting.ParseMethod(d.WeightingMethod)
	if err != nil {
		return decoding.Config{}, err
	}

	var grid decoding.Grid
	for name, values := range d.HyperparamGrid {
		grid = decoding.Grid{Name: name, Values: append([]float64(nil), values...)}
	}

	cfg := decoding.Config{
		Estimator:        kind,
		Grid:             grid,
		NOuterFolds:      d.NOuterFolds,
		NInnerFolds:      d.NInnerFolds,
		Shuffle:          d.Shuffle,
		Seed:             d.Seed,
		OuterCV:          d.OuterCV,
		TestProp:         d.TestProp,
		BalancedWeight:   d.BalancedWeight,
		ContinuousTarget: d.ContinuousTarget,
		Bandwidth:        d.Bandwidth,
		WeightingMethod:  method,
		WeightSource:     decoding.WeightSource(d.WeightSource),
		Reference:        d.Reference,
		NormalizeInput:   d.NormalizeInput,
		NormalizeOutput:  d.NormalizeOutput,
		SaveBinned:       d.SaveBinned,
		SavePredictions:  d.SavePredictions,
		FitIntercept:     d.FitIntercept,
		MaxIter:          d.MaxIter,
		Tol:              d.Tol,
	}
	if err := cfg.Validate(); err != nil {
		return decoding.Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides selected options from BWMDECODE_* variables.
func (f *File) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BWMDECODE_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BWMDECODE_SEED=%q: %w", v, ErrInvalid)
		}
		f.Decoding.Seed = n
	}
	if v, ok := lookup("BWMDECODE_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BWMDECODE_CONCURRENCY=%q: %w", v, ErrInvalid)
		}
		f.Batch.Concurrency = n
	}
	if v, ok := lookup("BWMDECODE_STORE"); ok {
		f.Store.Path = v
	}
	if v, ok := lookup("BWMDECODE_LOG_LEVEL"); ok {
		f.Log.Level = v
	}
	return nil
}

// Logger builds the configured slog logger writing to w.
func (l Log) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch l.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
