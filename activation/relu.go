package activation

import (
	"math"

	"github.com/xcsf-go/core/matrix"
)

// ReLU is the rectified linear unit: f(z) = max(z, 0).
type ReLU struct{}

func (r ReLU) Apply(z float64) float64 {
	return math.Max(z, 0)
}

func (r ReLU) ApplyMatrix(M matrix.Matrix[float64]) {
	matrix.ApplyByElement(M, r.Apply)
}

func (r ReLU) Derivative(z float64) float64 {
	if z > 0 {
		return 1
	}
	return 0 // d(ReLU)/dz at z=0 is undefined; treated as 0.
}

func (r ReLU) DerivativeMatrix(M matrix.Matrix[float64]) matrix.Matrix[float64] {
	result := M.DeepCopy()
	matrix.ApplyByElement(result, r.Derivative)
	return result
}
