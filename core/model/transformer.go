package model

import "github.com/mirprodev/machinelearning/core/data"

// Transformer is a fitted component that rewrites data views. Transform is
// lazy: the returned view computes rows only when a cursor pulls them.
type Transformer interface {
	// Fit learns the parameters the transformation needs.
	Fit(dv data.DataView) error

	// Transform returns a lazy view over dv with the learned
	// transformation applied.
	Transform(dv data.DataView) (data.DataView, error)

	// FitTransform runs Fit then Transform on the same view.
	FitTransform(dv data.DataView) (data.DataView, error)
}
