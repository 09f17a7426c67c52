// SPDX-License-Identifier: MIT

package folds

import (
	"math"
	"slices"
)

// Split is one train/test partition of trial indices. Both slices are sorted
// ascending and disjoint.
type Split struct {
	Train []int `json:"train"`
	Test  []int `json:"test"`
}

// Remap translates a split computed over positions 0..len(ids)-1 into the ids
// at those positions. Inner folds are computed over the positions of the
// outer-training trials and remapped to original trial ids with it.
//
// Complexity: O(len(s.Train)+len(s.Test)).
func (s Split) Remap(ids []int) Split {
	out := Split{
		Train: make([]int, len(s.Train)),
		Test:  make([]int, len(s.Test)),
	}
	for i, p := range s.Train {
		out.Train[i] = ids[p]
	}
	for i, p := range s.Test {
		out.Test[i] = ids[p]
	}
	slices.Sort(out.Train)
	slices.Sort(out.Test)
	return out
}

// KFold partitions {0,…,n-1} into k folds.
//
// Implementation:
//   - Stage 1: validate k >= 2 and n >= k.
//   - Stage 2: order = identity, or a seeded permutation when shuffle is set.
//   - Stage 3: cut order into k contiguous segments; the first n%k segments
//     hold one extra trial. Segment f is the test set of fold f; the train set
//     is everything else.
//
// The union of all test sets is exactly {0,…,n-1} and they are pairwise
// disjoint.
//
// Complexity: O(k·n) time (train sets are materialized), O(k·n) space.
func KFold(n, k int, shuffle bool, seed int64) ([]Split, error) {
	// Stage 1 (Validate).
	if k < 2 {
		return nil, ErrTooFewFolds
	}
	if n < k {
		return nil, ErrTooFewTrials
	}

	// Stage 2 (Order).
	order := Range(n)
	if shuffle {
		NewRNG(seed).Shuffle(order)
	}

	// Stage 3 (Cut).
	var (
		splits = make([]Split, k)
		base   = n / k
		extra  = n % k
		start  int
		size   int
		f      int
	)
	inTest := make([]bool, n)
	for f = 0; f < k; f++ {
		size = base
		if f < extra {
			size++
		}
		test := slices.Clone(order[start : start+size])
		slices.Sort(test)

		for _, idx := range test {
			inTest[idx] = true
		}
		train := make([]int, 0, n-size)
		for idx := 0; idx < n; idx++ {
			if !inTest[idx] {
				train = append(train, idx)
			}
		}
		for _, idx := range test {
			inTest[idx] = false
		}

		splits[f] = Split{Train: train, Test: test}
		start += size
	}

	return splits, nil
}

// TestSize returns round(n·p), the number of held-out trials TrainTestSplit
// produces for n trials and proportion p.
func TestSize(n int, p float64) int {
	return int(math.Round(float64(n) * p))
}

// TrainTestSplit returns a single held-out split with TestSize(n, p) test
// trials.
//
// Behavior highlights:
//   - shuffle=true: the test set is the first TestSize positions of a seeded
//     permutation of 0..n-1.
//   - shuffle=false: the test set is the trailing TestSize indices, the train
//     set the leading ones (temporal order preserved).
//
// Errors:
//   - ErrBadProportion when p is not in (0,1) or not finite.
//   - ErrEmptyPartition when either side would be empty.
//
// Complexity: O(n log n) time (sorting the shuffled halves), O(n) space.
func TrainTestSplit(n int, p float64, shuffle bool, seed int64) (Split, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return Split{}, ErrBadProportion
	}
	nTest := TestSize(n, p)
	if nTest <= 0 || nTest >= n {
		return Split{}, ErrEmptyPartition
	}

	if !shuffle {
		all := Range(n)
		return Split{
			Train: slices.Clone(all[:n-nTest]),
			Test:  slices.Clone(all[n-nTest:]),
		}, nil
	}

	perm := NewRNG(seed).Perm(n)
	test := slices.Clone(perm[:nTest])
	train := slices.Clone(perm[nTest:])
	slices.Sort(test)
	slices.Sort(train)

	return Split{Train: train, Test: test}, nil
}
