package prediction

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// nlmsFeatures expands a raw input into the feature vector a linear or
// quadratic NLMS predictor regresses over: a leading bias term of 1,
// followed by the raw terms and, for the quadratic variant, every
// pairwise product x_i*x_j (i<=j).
func nlmsFeatures(input []float64, quadratic bool) []float64 {
	if !quadratic {
		f := make([]float64, len(input)+1)
		f[0] = 1
		copy(f[1:], input)
		return f
	}
	n := len(input)
	f := make([]float64, 1+n+n*(n+1)/2)
	f[0] = 1
	copy(f[1:], input)
	k := 1 + n
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			f[k] = input[i] * input[j]
			k++
		}
	}
	return f
}

// nlmsPrediction is a linear (or quadratic, feature-expanded) predictor
// trained with the normalized LMS update: w += eta * error * x / (x.x +
// x0), where x0 guards against division blow-up on a near-zero feature
// vector.
type nlmsPrediction struct {
	weights   []float64
	quadratic bool
	eta, x0   float64
}

func (p *nlmsPrediction) Compute(input []float64) []float64 {
	f := nlmsFeatures(input, p.quadratic)
	sum := 0.0
	for i, w := range p.weights {
		sum += w * f[i]
	}
	return []float64{sum}
}

func (p *nlmsPrediction) Update(payoff float64, input []float64) {
	f := nlmsFeatures(input, p.quadratic)
	pred := p.Compute(input)[0]
	err := payoff - pred
	norm := p.x0
	for _, x := range f {
		norm += x * x
	}
	for i, x := range f {
		p.weights[i] += p.eta * err * x / norm
	}
}

func (p *nlmsPrediction) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	p.weights = make([]float64, len(nlmsFeatures(input, p.quadratic)))
	p.eta = hp.PredEta
	p.x0 = hp.PredX0
}

func (p *nlmsPrediction) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	return false // weight adaptation happens exclusively through Update per §4.4
}

func (p *nlmsPrediction) Crossover(other Prediction, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*nlmsPrediction)
	if !ok || len(o.weights) != len(p.weights) {
		return false
	}
	changed := false
	for i := range p.weights {
		if rng.Float64() < 0.5 {
			p.weights[i], o.weights[i] = o.weights[i], p.weights[i]
			changed = true
		}
	}
	return changed
}

func (p *nlmsPrediction) Copy() Prediction {
	return &nlmsPrediction{
		weights:   append([]float64(nil), p.weights...),
		quadratic: p.quadratic, eta: p.eta, x0: p.x0,
	}
}

func (p *nlmsPrediction) Print() string {
	return fmt.Sprintf("NLMS{quadratic: %v, weights: %v}", p.quadratic, p.weights)
}

func (p *nlmsPrediction) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(p.weights))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, p.weights); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, [2]float64{p.eta, p.x0})
}

func (p *nlmsPrediction) Load(r io.Reader) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	p.weights = make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, p.weights); err != nil {
		return err
	}
	var scalars [2]float64
	if err := binary.Read(r, binary.LittleEndian, &scalars); err != nil {
		return err
	}
	p.eta, p.x0 = scalars[0], scalars[1]
	return nil
}
