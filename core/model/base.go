// Package model provides the estimator plumbing shared by fitted components:
// fit-state tracking, the Transformer contract over data views, and gob
// persistence helpers.
package model

// EstimatorState represents the fit state of an estimator.
type EstimatorState int

const (
	// NotFitted is the state before Fit has run.
	NotFitted EstimatorState = iota
	// Fitted is the state after a successful Fit.
	Fitted
)

// BaseEstimator is embedded by every fitted component to track its state.
type BaseEstimator struct {
	// State is exported so gob persistence can encode it.
	State EstimatorState
}

// IsFitted reports whether Fit has completed successfully.
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}
