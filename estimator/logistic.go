// SPDX-License-Identifier: MIT

package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/bwmdecode/metrics"
)

// logistic is L2-regularized logistic regression with inverse strength C:
//
//	½‖W‖² + C Σ_i w_i · loss_i
//
// Two classes use the binary logistic loss with a single coefficient row for
// the larger label; more classes use the multinomial (softmax) loss with one
// row per class. Intercepts are not penalized. The objective is minimized
// with L-BFGS from a zero start, so a fit is a deterministic function of its
// inputs.
type logistic struct {
	c            float64
	fitIntercept bool
	maxIter      int
	tol          float64

	fitted  bool
	classes []float64
	coef    [][]float64 // rows: 1 (binary) or len(classes)
	icpt    []float64
}

// nOut is the number of coefficient rows for k classes.
func nOut(k int) int {
	if k == 2 {
		return 1
	}
	return k
}

func (l *logistic) Fit(X *mat.Dense, y, w []float64) (Report, error) {
	if err := checkXY(X, y, w); err != nil {
		return Report{}, err
	}
	classes := metrics.Classes(y)
	if len(classes) < 2 {
		return Report{}, ErrSingleClass
	}

	n, p := X.Dims()
	label := make([]int, n)
	for i, v := range y {
		for k, c := range classes {
			if v == c {
				label[i] = k
				break
			}
		}
	}
	sw := w
	if sw == nil {
		sw = make([]float64, n)
		floats.AddConst(1, sw)
	}

	obj := &logisticObjective{
		x:      X.RawMatrix(),
		n:      n,
		p:      p,
		out:    nOut(len(classes)),
		label:  label,
		w:      sw,
		c:      l.c,
		icpt:   l.fitIntercept,
		scores: make([]float64, nOut(len(classes))),
		probs:  make([]float64, nOut(len(classes))),
	}
	problem := optimize.Problem{Func: obj.value, Grad: obj.grad}
	settings := &optimize.Settings{
		GradientThreshold: l.tol,
		MajorIterations:   l.maxIter,
	}
	init := make([]float64, obj.size())

	res, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if res == nil {
		return Report{}, fmt.Errorf("logistic C=%v: %v: %w", l.c, err, ErrSingular)
	}
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Report{}, ErrNonFinite
		}
	}

	rep := Report{Param: l.c, Iterations: res.Stats.MajorIterations, Converged: err == nil && res.Status != optimize.IterationLimit}
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("logistic: solver stopped early (C=%v): %v", l.c, err))
	} else if res.Status == optimize.IterationLimit {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("logistic: no convergence after %d iterations (C=%v)", l.maxIter, l.c))
	}

	l.classes = classes
	l.coef, l.icpt = obj.unpack(res.X)
	l.fitted = true
	return rep, nil
}

// decision returns rows × nOut linear scores X·Wᵀ + b.
func (l *logistic) decision(X mat.Matrix) (*mat.Dense, error) {
	if !l.fitted {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	p := len(l.coef[0])
	if c != p {
		return nil, fmt.Errorf("fit with %d features, predict with %d: %w", p, c, ErrShape)
	}
	out := len(l.coef)
	if r == 0 {
		return &mat.Dense{}, nil
	}
	flat := make([]float64, 0, out*p)
	for _, row := range l.coef {
		flat = append(flat, row...)
	}
	var z mat.Dense
	z.Mul(X, mat.NewDense(out, p, flat).T())
	if l.fitIntercept {
		for i := 0; i < r; i++ {
			for k := 0; k < out; k++ {
				z.Set(i, k, z.At(i, k)+l.icpt[k])
			}
		}
	}
	return &z, nil
}

func (l *logistic) Predict(X mat.Matrix) ([]float64, error) {
	z, err := l.decision(X)
	if err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	pred := make([]float64, r)
	for i := 0; i < r; i++ {
		if len(l.classes) == 2 {
			if z.At(i, 0) > 0 {
				pred[i] = l.classes[1]
			} else {
				pred[i] = l.classes[0]
			}
			continue
		}
		best := 0
		for k := 1; k < len(l.classes); k++ {
			if z.At(i, k) > z.At(i, best) {
				best = k
			}
		}
		pred[i] = l.classes[best]
	}
	return pred, nil
}

func (l *logistic) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	z, err := l.decision(X)
	if err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	k := len(l.classes)
	if r == 0 {
		return &mat.Dense{}, nil
	}
	proba := mat.NewDense(r, k, nil)
	row := make([]float64, k)
	for i := 0; i < r; i++ {
		if k == 2 {
			p1 := sigmoid(z.At(i, 0))
			proba.Set(i, 0, 1-p1)
			proba.Set(i, 1, p1)
			continue
		}
		mat.Row(row, i, z)
		softmax(row, row)
		proba.SetRow(i, row)
	}
	return proba, nil
}

func (l *logistic) Classes() []float64 { return append([]float64(nil), l.classes...) }

func (l *logistic) Coef() [][]float64 {
	if !l.fitted {
		return nil
	}
	out := make([][]float64, len(l.coef))
	for i, row := range l.coef {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (l *logistic) Intercept() []float64 {
	if !l.fitted || !l.fitIntercept {
		return nil
	}
	return append([]float64(nil), l.icpt...)
}

// logisticObjective evaluates the penalized loss and its gradient over the
// packed parameter vector [W (out×p, row-major) | b (out)].
type logisticObjective struct {
	x     blas64.General
	n, p  int
	out   int
	label []int
	w     []float64
	c     float64
	icpt  bool

	scores []float64 // scratch: per-row scores
	probs  []float64 // scratch: per-row probabilities / residuals
}

func (o *logisticObjective) size() int {
	if o.icpt {
		return o.out*o.p + o.out
	}
	return o.out * o.p
}

func (o *logisticObjective) unpack(theta []float64) ([][]float64, []float64) {
	coef := make([][]float64, o.out)
	for k := 0; k < o.out; k++ {
		coef[k] = append([]float64(nil), theta[k*o.p:(k+1)*o.p]...)
	}
	icpt := make([]float64, o.out)
	if o.icpt {
		copy(icpt, theta[o.out*o.p:])
	}
	return coef, icpt
}

func (o *logisticObjective) row(i int) []float64 {
	return o.x.Data[i*o.x.Stride : i*o.x.Stride+o.p]
}

// rowScores fills o.scores with W·x_i + b.
func (o *logisticObjective) rowScores(theta []float64, i int) {
	xi := o.row(i)
	for k := 0; k < o.out; k++ {
		o.scores[k] = floats.Dot(theta[k*o.p:(k+1)*o.p], xi)
		if o.icpt {
			o.scores[k] += theta[o.out*o.p+k]
		}
	}
}

func (o *logisticObjective) value(theta []float64) float64 {
	wPart := theta[:o.out*o.p]
	f := 0.5 * floats.Dot(wPart, wPart)

	var loss float64
	for i := 0; i < o.n; i++ {
		o.rowScores(theta, i)
		if o.out == 1 {
			// t ∈ {−1, +1}; loss = log(1 + exp(−t·z)).
			t := -1.0
			if o.label[i] == 1 {
				t = 1
			}
			loss += o.w[i] * log1pExp(-t*o.scores[0])
			continue
		}
		loss += o.w[i] * (floats.LogSumExp(o.scores) - o.scores[o.label[i]])
	}
	return f + o.c*loss
}

func (o *logisticObjective) grad(grad, theta []float64) {
	wSize := o.out * o.p
	copy(grad[:wSize], theta[:wSize])
	for k := wSize; k < len(grad); k++ {
		grad[k] = 0
	}

	var i, k int
	for i = 0; i < o.n; i++ {
		o.rowScores(theta, i)
		// o.probs[k] becomes ∂loss_i/∂score_k.
		if o.out == 1 {
			o.probs[0] = sigmoid(o.scores[0])
			if o.label[i] == 1 {
				o.probs[0] -= 1
			}
		} else {
			softmax(o.probs, o.scores)
			o.probs[o.label[i]] -= 1
		}

		xi := o.row(i)
		for k = 0; k < o.out; k++ {
			g := o.c * o.w[i] * o.probs[k]
			floats.AddScaled(grad[k*o.p:(k+1)*o.p], g, xi)
			if o.icpt {
				grad[wSize+k] += g
			}
		}
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// log1pExp returns log(1 + e^z) without overflow.
func log1pExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// softmax writes the softmax of z into dst (dst may alias z).
func softmax(dst, z []float64) {
	lse := floats.LogSumExp(z)
	for k, v := range z {
		dst[k] = math.Exp(v - lse)
	}
}
