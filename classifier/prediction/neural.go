package prediction

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/nn"
	_ "github.com/xcsf-go/core/nn/layers" // registers the concrete layer kinds BuildNet/Load dispatch to
	"github.com/xcsf-go/core/params"
)

// neuralPrediction wraps a single-output net trained online by Learn on
// each Update call.
type neuralPrediction struct {
	net *nn.Net
	hp  *params.Hyperparameters
}

func newNeuralPrediction(hp *params.Hyperparameters) *neuralPrediction {
	return &neuralPrediction{hp: hp}
}

func (p *neuralPrediction) buildNet(nInputs int) (*nn.Net, error) {
	hp := p.hp
	options := nn.LayerOptions(0)
	if hp.PredEvolveWeights {
		options |= nn.EvolveWeights
	}
	if hp.PredEvolveNeurons {
		options |= nn.EvolveNeurons
	}
	if hp.PredEvolveFunctions {
		options |= nn.EvolveFunctions
	}
	if hp.PredEvolveEta {
		options |= nn.EvolveEta
	}
	if hp.PredSGDWeights {
		options |= nn.SGDWeights
	}
	return nn.BuildNet([]nn.LayerArgs{
		{Kind: nn.Connected, NInputs: nInputs, NOutputs: hp.PredNumHiddenNeurons,
			Activation: hp.PredHiddenNeuronActivation, Eta: hp.PredEta, Momentum: hp.PredMomentum, Options: options,
			NInit: hp.PredNumHiddenNeurons, NMax: hp.PredMaxHiddenNeurons, MaxNeuronGrow: 4},
		{Kind: nn.Connected, NOutputs: 1, Activation: "Linear", Eta: hp.PredEta, Momentum: hp.PredMomentum},
	})
}

func (p *neuralPrediction) Compute(input []float64) []float64 {
	if p.net == nil {
		return []float64{0}
	}
	out := p.net.Propagate(input)
	return append([]float64(nil), out...)
}

func (p *neuralPrediction) Update(payoff float64, input []float64) {
	p.net.Propagate(input)
	p.net.Learn([]float64{payoff}, input, p.hp.PredEta)
}

func (p *neuralPrediction) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	net, err := p.buildNet(len(input))
	if err != nil {
		return
	}
	p.net = net
	for _, l := range p.net.Layers() {
		l.Rand(rng)
	}
}

func (p *neuralPrediction) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	return p.net.Mutate(hp, rng)
}

func (p *neuralPrediction) Crossover(other Prediction, hp *params.Hyperparameters, rng *rand.Rand) bool {
	// See neuralCondition.Crossover: no two-net splice operator to ground
	// a structural crossover on.
	return false
}

func (p *neuralPrediction) Copy() Prediction {
	return &neuralPrediction{net: p.net.Copy(), hp: p.hp}
}

func (p *neuralPrediction) Print() string {
	return fmt.Sprintf("Neural{%s}", p.net.Print())
}

func (p *neuralPrediction) Save(w io.Writer) error {
	return p.net.Save(w)
}

func (p *neuralPrediction) Load(r io.Reader) error {
	net, err := nn.Load(r)
	if err != nil {
		return err
	}
	p.net = net
	return nil
}
