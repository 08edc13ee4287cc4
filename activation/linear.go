package activation

import (
	"github.com/xcsf-go/core/matrix"
)

// Linear is the identity activation: f(z) = z.
type Linear struct{}

func (l Linear) Apply(z float64) float64 {
	return z
}

func (l Linear) ApplyMatrix(M matrix.Matrix[float64]) {}

func (l Linear) Derivative(z float64) float64 {
	return 1
}

func (l Linear) DerivativeMatrix(M matrix.Matrix[float64]) matrix.Matrix[float64] {
	result := matrix.NewZeroMatrix[float64](M.RowCount(), M.ColumnCount())
	for i := 0; i < M.RowCount(); i++ {
		for j := 0; j < M.ColumnCount(); j++ {
			result.Set(i, j, 1)
		}
	}
	return result
}
