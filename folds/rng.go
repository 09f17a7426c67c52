// SPDX-License-Identifier: MIT

// Package folds - RNG utilities shared by the splitters.
//
// Goals:
//   - Determinism: same seed ⇒ identical permutation on every platform.
//   - Portability: SplitMix64 over uint64 only; no math/rand source whose
//     algorithm is private to the Go runtime.
//   - Explicitness: every stream is created from a seed passed in by the
//     caller; there is no package-level generator.
//
// Concurrency:
//   - RNG is NOT goroutine-safe. Each decode invocation owns its own streams;
//     use DeriveSeed to create independent streams per fold or worker.
package folds

// SplitMix64 constants (Steele, Lea, Flood 2014; Vigna's reference code).
const (
	golden  uint64 = 0x9e3779b97f4a7c15
	mixMul1 uint64 = 0xbf58476d1ce4e5b9
	mixMul2 uint64 = 0x94d049bb133111eb
)

// RNG is a SplitMix64 pseudo-random stream.
// The zero value is a valid stream equivalent to NewRNG(0).
type RNG struct {
	state uint64
}

// NewRNG returns a stream keyed by seed. Every seed, including 0, is used
// verbatim.
func NewRNG(seed int64) *RNG {
	return &RNG{state: uint64(seed)}
}

// Uint64 advances the stream and returns the next 64 random bits.
//
// Complexity: O(1).
func (r *RNG) Uint64() uint64 {
	r.state += golden
	return mix(r.state)
}

// Uint64n returns a uniform value in [0, n). n must be > 0.
// Rejection sampling removes modulo bias; the rejection threshold is
// (2^64 - n) mod n, which is computable with uint64 wrap-around.
//
// Complexity: O(1) expected.
func (r *RNG) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("folds: Uint64n called with n == 0")
	}
	threshold := -n % n
	for {
		v := r.Uint64()
		if v >= threshold {
			return v % n
		}
	}
}

// Intn returns a uniform int in [0, n). n must be > 0.
func (r *RNG) Intn(n int) int {
	return int(r.Uint64n(uint64(n)))
}

// Shuffle permutes a in place with a Fisher–Yates pass from the last
// element down.
//
// Complexity: O(n) time, O(1) extra space.
func (r *RNG) Shuffle(a []int) {
	var i, j int
	for i = len(a) - 1; i > 0; i-- {
		j = r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Perm returns a permutation of 0..n-1.
func (r *RNG) Perm(n int) []int {
	p := Range(n)
	r.Shuffle(p)
	return p
}

// DeriveSeed mixes a parent seed and a stream identifier into a new seed.
// Used to key the inner-fold splitter of every outer fold so that inner
// partitions do not depend on how many random draws the outer splitter made.
//
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + golden)
	x += golden
	return int64(mix(x))
}

// mix is the SplitMix64 output finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * mixMul1
	z = (z ^ (z >> 27)) * mixMul2
	return z ^ (z >> 31)
}

// Range returns the identity sequence 0..n-1 (empty for n <= 0).
func Range(n int) []int {
	if n <= 0 {
		return []int{}
	}
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
