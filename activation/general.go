// Package activation contains the per-neuron activation functions used by
// the parametric layer kinds (Connected, Convolutional, Recurrent, LSTM).
// Vector-wide transforms with cross-element dependencies (softmax
// normalization) are modeled as their own layer kind in nn/layers rather
// than as an ActivationFunction, since their backward pass is a full
// Jacobian-vector product, not an elementwise derivative.
package activation

import (
	"fmt"

	. "github.com/xcsf-go/core/matrix"
)

// ActivationFunction is the interface for a per-neuron nonlinearity
// applied to a layer's linear combination (W*X + b).
//
// Apply applies the function to a scalar.
//
// ApplyMatrix applies the function to every element of a matrix in place.
//
// Derivative produces the derivative with respect to the function's
// input, evaluated at the pre-activation input z (the value Apply
// receives), not at the activated output.
//
// DerivativeMatrix applies Derivative elementwise, returning a new matrix.
type ActivationFunction interface {
	Apply(float64) float64
	ApplyMatrix(Matrix[float64])

	Derivative(float64) float64
	DerivativeMatrix(Matrix[float64]) Matrix[float64]
}

var activationMap = map[string]func() ActivationFunction{
	"Linear":   func() ActivationFunction { return Linear{} },
	"Sigmoid":  func() ActivationFunction { return Sigmoid{} },
	"ReLU":     func() ActivationFunction { return ReLU{} },
	"SELU":     func() ActivationFunction { return SELU{} },
	"Tanh":     func() ActivationFunction { return Tanh{} },
	"Gaussian": func() ActivationFunction { return Gaussian{} },
}

// DynamicActivation returns the activation function registered under
// activationName. Identical to importing and initializing the activation
// function directly.
func DynamicActivation(activationName string) (ActivationFunction, error) {
	f, ok := activationMap[activationName]
	if !ok {
		return nil, fmt.Errorf("unknown activation function: %s", activationName)
	}
	return f(), nil
}
