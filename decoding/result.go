// SPDX-License-Identifier: MIT

package decoding

import "github.com/katalvlaran/bwmdecode/estimator"

// FoldResult is the outcome of one outer fold. It is built once and never
// modified afterwards.
type FoldResult struct {
	Fold  int   `json:"fold"`
	Train []int `json:"idx_train"`
	Test  []int `json:"idx_test"`

	// Coef has one row per output: 1 for regression and binary logistic,
	// one per class for multinomial logistic.
	Coef [][]float64 `json:"weights"`

	// Intercept is nil when the estimator was fit without one.
	Intercept []float64 `json:"intercepts"`

	InputOffset  []float64 `json:"input_offset,omitempty"`
	OutputOffset float64   `json:"output_offset"`

	// Param is the selected hyperparameter value; InnerScores the mean inner
	// score per grid value (nil when no inner search ran).
	Param       float64   `json:"best_param"`
	InnerScores []float64 `json:"inner_scores,omitempty"`

	TrainScore float64 `json:"score_train"`
	TestScore  float64 `json:"score_test"`

	// Predictions holds one entry per Test trial, in Test order, in the run's
	// saved representation.
	Predictions [][]float64 `json:"predictions"`

	Warnings []string `json:"warnings,omitempty"`
}

// Result is the outcome of one Decode call.
type Result struct {
	Estimator estimator.Kind `json:"estimator"`
	GridName  string         `json:"grid_name"`
	Scorer    string         `json:"scorer"`
	Seed      int64          `json:"seed"`
	NFolds    int            `json:"n_folds"`

	// ScoresTestFull is the run's scorer applied once to all held-out
	// predictions against their targets, concatenated in trial order.
	ScoresTestFull   float64 `json:"scores_test_full"`
	RSquaredTestFull float64 `json:"Rsquared_test_full"`

	// Classification runs only.
	AccTestFull         *float64  `json:"acc_test_full,omitempty"`
	BalancedAccTestFull *float64  `json:"balanced_acc_test_full,omitempty"`
	Classes             []float64 `json:"classes,omitempty"`

	ScoresTrain []float64    `json:"scores_train"`
	ScoresTest  []float64    `json:"scores_test"`
	Folds       []FoldResult `json:"folds"`

	// Predictions is indexed by trial id (nil unless save_predictions). Trials
	// never held out, possible only with a single split, stay nil.
	Predictions [][]float64 `json:"predictions_test,omitempty"`

	// Probabilities reports whether Predictions hold P(first class) rather
	// than labels.
	Probabilities bool `json:"probabilities"`

	Target     [][]float64   `json:"target"`
	Regressors [][][]float64 `json:"regressors,omitempty"`
}

// BestParams returns the selected hyperparameter of every outer fold.
func (r *Result) BestParams() []float64 {
	out := make([]float64, len(r.Folds))
	for i, f := range r.Folds {
		out[i] = f.Param
	}
	return out
}

// Warnings returns all fold warnings, in fold order.
func (r *Result) Warnings() []string {
	var out []string
	for _, f := range r.Folds {
		out = append(out, f.Warnings...)
	}
	return out
}
