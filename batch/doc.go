// Package batch runs many independent decode invocations (session × region ×
// pseudo-session id) on a bounded worker pool.
//
// Each Task owns deep copies of its inputs and a fresh decoding.Engine, so
// tasks share no mutable state. A failing task is logged and recorded in its
// Outcome; it never cancels its siblings. Cancelling the context stops tasks
// that have not started yet.
//
// Pseudo-session ids follow the usual convention: -1 (RealSession) is the
// recorded session, ids >= 0 are null-distribution surrogates whose targets
// come from a TargetSource.
package batch
