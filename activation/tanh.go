package activation

import (
	"math"

	"github.com/xcsf-go/core/matrix"
)

// Tanh is the hyperbolic tangent activation, used for recurrent and LSTM
// cell/hidden state activations.
//
//	Tanh(x) = tanh(x)
//	dTanh/dx = 1 - tanh(x)^2
type Tanh struct{}

func (t Tanh) Apply(z float64) float64 {
	return math.Tanh(z)
}

func (t Tanh) ApplyMatrix(M matrix.Matrix[float64]) {
	matrix.ApplyByElement(M, t.Apply)
}

func (t Tanh) Derivative(z float64) float64 {
	th := math.Tanh(z)
	return 1 - th*th
}

func (t Tanh) DerivativeMatrix(M matrix.Matrix[float64]) matrix.Matrix[float64] {
	result := M.DeepCopy()
	matrix.ApplyByElement(result, t.Derivative)
	return result
}
