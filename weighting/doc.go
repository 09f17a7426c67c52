// Package weighting computes per-sample weights that correct class or density
// imbalance in a decoding target.
//
// Discrete targets get the standard balanced-class weights
//
//	w[i] = N / (C · count(y[i]))
//
// for C distinct classes, so resampling in proportion to w yields equally
// frequent classes.
//
// Continuous targets are flattened toward a reference distribution:
//
//   - MethodKDE: Gaussian kernel density with bandwidth h,
//     w[i] = ref(y[i]) / kde(y[i]) (ref ≡ 1 without a Reference).
//   - MethodHistogram: empirical density on the reference bin edges,
//     w[i] = ref_bin(y[i]) / emp_bin(y[i]). Requires a Reference.
//
// All functions are pure; the input slice is never modified.
package weighting
