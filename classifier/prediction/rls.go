package prediction

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/matrix"
	"github.com/xcsf-go/core/params"
)

// rlsPrediction is a linear (or quadratic, feature-expanded) predictor
// trained with recursive least squares: a gain vector derived from the
// current inverse-covariance estimate, used to update both the weight
// vector and the covariance itself every step. matrix.Matrix[float64] is
// the natural fit here since the covariance update is genuinely 2-D
// linear algebra (outer products, matrix-vector products) rather than the
// flat vector arithmetic NLMS needs.
type rlsPrediction struct {
	weights   matrix.Matrix[float64] // column vector, n x 1
	gain      matrix.Matrix[float64] // inverse covariance, n x n
	quadratic bool
	lambda    float64
}

func (p *rlsPrediction) featureColumn(input []float64) matrix.Matrix[float64] {
	f := nlmsFeatures(input, p.quadratic)
	col := make([][]float64, len(f))
	for i, v := range f {
		col[i] = []float64{v}
	}
	m, _ := matrix.NewMatrix(col)
	return m
}

func (p *rlsPrediction) Compute(input []float64) []float64 {
	if p.weights == nil {
		return []float64{0}
	}
	x := p.featureColumn(input)
	sum := 0.0
	n := x.RowCount()
	for i := 0; i < n; i++ {
		xi, _ := x.At(i, 0)
		wi, _ := p.weights.At(i, 0)
		sum += xi * wi
	}
	return []float64{sum}
}

func (p *rlsPrediction) Update(payoff float64, input []float64) {
	x := p.featureColumn(input)
	n := x.RowCount()

	// Px = P * x
	px, _ := p.gain.Multiply(x)
	// denom = lambda + x^T * P * x
	denom := p.lambda
	for i := 0; i < n; i++ {
		xi, _ := x.At(i, 0)
		pxi, _ := px.At(i, 0)
		denom += xi * pxi
	}

	pred := p.Compute(input)[0]
	err := payoff - pred

	for i := 0; i < n; i++ {
		pxi, _ := px.At(i, 0)
		gainI := pxi / denom
		wi, _ := p.weights.At(i, 0)
		p.weights.Set(i, 0, wi+gainI*err)
	}

	// P = (P - gain*x^T*P) / lambda, computed without materialising
	// gain as a separate matrix to keep the two passes in sync.
	xtP, _ := x.T().Multiply(p.gain) // 1 x n
	next := matrix.NewZeroMatrix[float64](n, n)
	for i := 0; i < n; i++ {
		pxi, _ := px.At(i, 0)
		gainI := pxi / denom
		for j := 0; j < n; j++ {
			pij, _ := p.gain.At(i, j)
			xtpj, _ := xtP.At(0, j)
			next.Set(i, j, (pij-gainI*xtpj)/p.lambda)
		}
	}
	p.gain = next
}

func (p *rlsPrediction) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	n := len(nlmsFeatures(input, p.quadratic))
	p.weights = matrix.NewZeroMatrix[float64](n, 1)
	p.gain = matrix.IdentityMatrix(n).MultiplyByScalar(hp.PredRLSScaleFactor)
	p.lambda = hp.PredRLSLambda
}

func (p *rlsPrediction) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	return false // adaptation happens exclusively through Update per §4.4
}

func (p *rlsPrediction) Crossover(other Prediction, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*rlsPrediction)
	if !ok || o.weights.RowCount() != p.weights.RowCount() {
		return false
	}
	changed := false
	n := p.weights.RowCount()
	for i := 0; i < n; i++ {
		if rng.Float64() < 0.5 {
			pw, _ := p.weights.At(i, 0)
			ow, _ := o.weights.At(i, 0)
			p.weights.Set(i, 0, ow)
			o.weights.Set(i, 0, pw)
			changed = true
		}
	}
	return changed
}

func (p *rlsPrediction) Copy() Prediction {
	return &rlsPrediction{
		weights: p.weights.DeepCopy(), gain: p.gain.DeepCopy(),
		quadratic: p.quadratic, lambda: p.lambda,
	}
}

func (p *rlsPrediction) Print() string {
	return fmt.Sprintf("RLS{quadratic: %v, weights: %v}", p.quadratic, p.weights)
}

func (p *rlsPrediction) Save(w io.Writer) error {
	n := p.weights.RowCount()
	if err := binary.Write(w, binary.LittleEndian, int32(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		wi, _ := p.weights.At(i, 0)
		if err := binary.Write(w, binary.LittleEndian, wi); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			gij, _ := p.gain.At(i, j)
			if err := binary.Write(w, binary.LittleEndian, gij); err != nil {
				return err
			}
		}
	}
	return binary.Write(w, binary.LittleEndian, p.lambda)
}

func (p *rlsPrediction) Load(r io.Reader) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	p.weights = matrix.NewZeroMatrix[float64](int(n), 1)
	for i := 0; i < int(n); i++ {
		var v float64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return err
		}
		p.weights.Set(i, 0, v)
	}
	p.gain = matrix.NewZeroMatrix[float64](int(n), int(n))
	for i := 0; i < int(n); i++ {
		for j := 0; j < int(n); j++ {
			var v float64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return err
			}
			p.gain.Set(i, j, v)
		}
	}
	return binary.Read(r, binary.LittleEndian, &p.lambda)
}
