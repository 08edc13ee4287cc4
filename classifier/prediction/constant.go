package prediction

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// constantPrediction ignores input entirely and predicts a single
// input-independent scalar, updated toward payoff by the Widrow-Hoff
// delta rule.
type constantPrediction struct {
	value float64
	beta  float64
}

func (p *constantPrediction) Compute(input []float64) []float64 {
	return []float64{p.value}
}

func (p *constantPrediction) Update(payoff float64, input []float64) {
	p.value += p.beta * (payoff - p.value)
}

func (p *constantPrediction) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	p.value = hp.InitFitness // a neutral starting estimate, consistent with a freshly-covered classifier
	p.beta = hp.Beta
}

func (p *constantPrediction) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (p *constantPrediction) Crossover(other Prediction, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*constantPrediction)
	if !ok {
		return false
	}
	p.value, o.value = o.value, p.value
	return true
}

func (p *constantPrediction) Copy() Prediction {
	return &constantPrediction{value: p.value, beta: p.beta}
}

func (p *constantPrediction) Print() string {
	return fmt.Sprintf("Constant{%v}", p.value)
}

func (p *constantPrediction) Save(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, [2]float64{p.value, p.beta})
}

func (p *constantPrediction) Load(r io.Reader) error {
	var buf [2]float64
	if err := binary.Read(r, binary.LittleEndian, &buf); err != nil {
		return err
	}
	p.value, p.beta = buf[0], buf[1]
	return nil
}
