// SPDX-License-Identifier: MIT

package weighting

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Method selects the continuous weighting estimator.
type Method int

const (
	// MethodKDE weights by the inverse Gaussian kernel density.
	MethodKDE Method = iota

	// MethodHistogram weights by the reference/empirical histogram ratio.
	MethodHistogram
)

// String returns the config spelling of m.
func (m Method) String() string {
	switch m {
	case MethodKDE:
		return "kde"
	case MethodHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// ParseMethod maps a config name (case-insensitive) to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kde", "":
		return MethodKDE, nil
	case "histogram":
		return MethodHistogram, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownMethod)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DefaultBandwidth is the KDE kernel width used when none is configured.
const DefaultBandwidth = 0.05

// Reference is a density histogram: Density[b] is the probability density on
// [Edges[b], Edges[b+1]), the last bin being closed on the right.
type Reference struct {
	Density []float64 `json:"density" yaml:"density"`
	Edges   []float64 `json:"edges" yaml:"edges"`
}

// Validate checks len(Edges) == len(Density)+1, strictly increasing finite
// edges and finite non-negative densities.
func (r *Reference) Validate() error {
	if r == nil {
		return nil
	}
	if len(r.Density) == 0 || len(r.Edges) != len(r.Density)+1 {
		return ErrBadReference
	}
	for i, e := range r.Edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return ErrBadReference
		}
		if i > 0 && e <= r.Edges[i-1] {
			return ErrBadReference
		}
	}
	for _, d := range r.Density {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return ErrBadReference
		}
	}
	return nil
}

// bin returns the bin holding x, or -1 when x is outside [Edges[0], Edges[last]].
func (r *Reference) bin(x float64) int {
	last := len(r.Edges) - 1
	if x < r.Edges[0] || x > r.Edges[last] {
		return -1
	}
	if x == r.Edges[last] {
		return last - 1
	}
	// First edge strictly greater than x, minus one.
	return sort.Search(len(r.Edges), func(i int) bool { return r.Edges[i] > x }) - 1
}

// At returns the reference density at x.
func (r *Reference) At(x float64) (float64, error) {
	b := r.bin(x)
	if b < 0 || r.Density[b] <= 0 {
		return 0, ErrOutsideReference
	}
	return r.Density[b], nil
}

// Options configures Balanced.
type Options struct {
	// Continuous selects density weighting instead of class weighting.
	Continuous bool

	// Bandwidth is the KDE kernel width (MethodKDE only).
	Bandwidth float64

	// Method is the continuous estimator.
	Method Method

	// Reference is the target distribution to flatten toward (optional for
	// MethodKDE, required for MethodHistogram).
	Reference *Reference
}

// Balanced dispatches to Discrete or the configured continuous method.
func Balanced(y []float64, opts Options) ([]float64, error) {
	if !opts.Continuous {
		return Discrete(y)
	}
	if opts.Method == MethodHistogram {
		return Histogram(y, opts.Reference)
	}
	return KDE(y, opts.Bandwidth, opts.Reference)
}

// Discrete returns balanced-class weights N / (C · count(class)).
//
// Complexity: O(N) expected.
func Discrete(y []float64) ([]float64, error) {
	if err := checkTarget(y); err != nil {
		return nil, err
	}

	counts := make(map[float64]int)
	for _, v := range y {
		counts[v]++
	}
	scale := float64(len(y)) / float64(len(counts))

	w := make([]float64, len(y))
	for i, v := range y {
		w[i] = scale / float64(counts[v])
	}
	return w, nil
}

// KDE returns inverse-density weights from a Gaussian kernel density estimate.
//
// Implementation:
//   - Stage 1: validate target, bandwidth, distinct count and reference.
//   - Stage 2: kde(x) = 1/(N·h) Σ_j φ((x − y_j)/h) at every y[i]; the self term
//     keeps it strictly positive.
//   - Stage 3: w[i] = ref(y[i]) / kde(y[i]), ref ≡ 1 when absent.
//
// Complexity: O(N²) time, O(N) space.
func KDE(y []float64, bandwidth float64, ref *Reference) ([]float64, error) {
	// Stage 1 (Validate).
	if err := checkTarget(y); err != nil {
		return nil, err
	}
	if math.IsNaN(bandwidth) || math.IsInf(bandwidth, 0) || bandwidth <= 0 {
		return nil, ErrBandwidth
	}
	if !varies(y) {
		return nil, ErrTooFewDistinct
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	// Stage 2 (Density).
	var (
		n    = len(y)
		norm = 1 / (float64(n) * bandwidth)
		dens = make([]float64, n)
		i, j int
		s    float64
	)
	for i = 0; i < n; i++ {
		s = 0
		for j = 0; j < n; j++ {
			s += distuv.UnitNormal.Prob((y[i] - y[j]) / bandwidth)
		}
		dens[i] = s * norm
	}

	// Stage 3 (Weights).
	w := make([]float64, n)
	for i = 0; i < n; i++ {
		num := 1.0
		if ref != nil {
			r, err := ref.At(y[i])
			if err != nil {
				return nil, err
			}
			num = r
		}
		w[i] = num / dens[i]
	}
	return w, nil
}

// Histogram returns ref_bin / emp_bin weights where emp is the empirical
// density histogram of y over the reference edges.
//
// Complexity: O(N log B) for B bins.
func Histogram(y []float64, ref *Reference) ([]float64, error) {
	if err := checkTarget(y); err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrNeedsReference
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if !varies(y) {
		return nil, ErrTooFewDistinct
	}

	bins := make([]int, len(y))
	counts := make([]float64, len(ref.Density))
	for i, v := range y {
		b := ref.bin(v)
		if b < 0 || ref.Density[b] <= 0 {
			return nil, ErrOutsideReference
		}
		bins[i] = b
		counts[b]++
	}

	widths := make([]float64, len(ref.Density))
	floats.SubTo(widths, ref.Edges[1:], ref.Edges[:len(ref.Edges)-1])

	n := float64(len(y))
	w := make([]float64, len(y))
	for i, b := range bins {
		emp := counts[b] / (n * widths[b])
		w[i] = ref.Density[b] / emp
	}
	return w, nil
}

func checkTarget(y []float64) error {
	if len(y) == 0 {
		return ErrEmptyTarget
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFinite
		}
	}
	return nil
}

// varies reports whether y holds at least two distinct values.
func varies(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return true
		}
	}
	return false
}
