// Package prediction implements the prediction slot of a classifier: the
// function that estimates a payoff (or payoff vector) from an input.
package prediction

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// Prediction is the capability interface every prediction representation
// implements.
type Prediction interface {
	// Compute returns the predicted payoff vector for input.
	Compute(input []float64) []float64
	// Update adjusts internal state toward payoff given the input that
	// produced it.
	Update(payoff float64, input []float64)
	// Cover sizes any per-dimension state from len(input) on first use.
	Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand)
	Copy() Prediction
	Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool
	Crossover(other Prediction, hp *params.Hyperparameters, rng *rand.Rand) bool
	Print() string
	Save(w io.Writer) error
	Load(r io.Reader) error
}

// Tag selects a concrete Prediction representation, matching §4.4's
// catalogue of predictions implemented in depth.
type Tag int32

const (
	Constant Tag = iota
	NLMSLinear
	NLMSQuadratic
	RLSLinear
	RLSQuadratic
	Neural
)

func (t Tag) String() string {
	switch t {
	case Constant:
		return "Constant"
	case NLMSLinear:
		return "NLMSLinear"
	case NLMSQuadratic:
		return "NLMSQuadratic"
	case RLSLinear:
		return "RLSLinear"
	case RLSQuadratic:
		return "RLSQuadratic"
	case Neural:
		return "Neural"
	default:
		return fmt.Sprintf("Tag(%d)", int32(t))
	}
}

// New performs the once-per-classifier dispatch, installing the concrete
// representation behind the Prediction interface. Per-dimension state is
// sized lazily on the first Cover call.
func New(tag Tag, hp *params.Hyperparameters, rng *rand.Rand) (Prediction, error) {
	switch tag {
	case Constant:
		return &constantPrediction{}, nil
	case NLMSLinear:
		return &nlmsPrediction{quadratic: false}, nil
	case NLMSQuadratic:
		return &nlmsPrediction{quadratic: true}, nil
	case RLSLinear:
		return &rlsPrediction{quadratic: false}, nil
	case RLSQuadratic:
		return &rlsPrediction{quadratic: true}, nil
	case Neural:
		return newNeuralPrediction(hp), nil
	default:
		return nil, fmt.Errorf("prediction: unknown tag %d", tag)
	}
}
