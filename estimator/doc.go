// Package estimator provides the regularized linear models used to decode
// behaviour from neural activity, and TrialRegressor, the wrapper the decoding
// engine fits once per inner and outer fold.
//
// Kinds and their single hyperparameter:
//
//	ridge     alpha   Σ w(y − Xβ − b)² + α‖β‖²                (Cholesky)
//	linear    alpha*  weighted least squares, minimum norm     (SVD)
//	lasso     alpha   (1/2Σw) Σ w(y − Xβ − b)² + α‖β‖₁         (coordinate descent)
//	logistic  C       ½‖W‖² + C Σ w·loss                      (L-BFGS)
//	ridgecv   alpha   ridge with α chosen by leave-one-out     (SVD)
//
//	* accepted for a uniform contract and ignored.
//
// Every kind except ridgecv relies on the caller for hyperparameter search
// (SearchExternal). ridgecv cross-validates internally over Spec.Grid
// (SearchInternal); the decoding engine resolves which path to take once, from
// Kind.Search, when it is configured.
//
// Solver non-convergence is never an error: it is recorded in Report.Warnings
// and the best iterate is kept. Only non-finite coefficients or a failed
// factorization produce ErrNumerical.
package estimator
