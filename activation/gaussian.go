package activation

import (
	"math"

	"github.com/xcsf-go/core/matrix"
)

// Gaussian is a radial-basis-style activation, offered as an alternative
// hidden-neuron activation for condition/prediction networks.
//
//	Gaussian(x) = exp(-x^2)
//	dGaussian/dx = -2*x*exp(-x^2)
type Gaussian struct{}

func (g Gaussian) Apply(z float64) float64 {
	return math.Exp(-z * z)
}

func (g Gaussian) ApplyMatrix(M matrix.Matrix[float64]) {
	matrix.ApplyByElement(M, g.Apply)
}

func (g Gaussian) Derivative(z float64) float64 {
	return -2 * z * math.Exp(-z*z)
}

func (g Gaussian) DerivativeMatrix(M matrix.Matrix[float64]) matrix.Matrix[float64] {
	result := M.DeepCopy()
	matrix.ApplyByElement(result, g.Derivative)
	return result
}
