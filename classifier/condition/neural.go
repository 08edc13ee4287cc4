package condition

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/nn"
	_ "github.com/xcsf-go/core/nn/layers" // registers the concrete layer kinds BuildNet/Load dispatch to
	"github.com/xcsf-go/core/params"
)

// neuralMatchThreshold is the output a neural condition's single head
// neuron must clear to match, matching §4.4's "compute(input) >= threshold"
// covering rule.
const neuralMatchThreshold = 0.5

// neuralCoverMaxAttempts bounds the re-randomisation loop Cover runs (S6:
// bounded re-randomisation under a fixed seed).
const neuralCoverMaxAttempts = 1000

// neuralCondition matches when its wrapped net's single output neuron
// clears neuralMatchThreshold.
type neuralCondition struct {
	net *nn.Net
	hp  *params.Hyperparameters
}

func newNeuralCondition(hp *params.Hyperparameters) *neuralCondition {
	return &neuralCondition{hp: hp}
}

func (c *neuralCondition) buildNet(nInputs int) (*nn.Net, error) {
	hp := c.hp
	options := nn.LayerOptions(0)
	if hp.CondEvolveWeights {
		options |= nn.EvolveWeights
	}
	if hp.CondEvolveNeurons {
		options |= nn.EvolveNeurons
	}
	if hp.CondEvolveFunctions {
		options |= nn.EvolveFunctions
	}
	return nn.BuildNet([]nn.LayerArgs{
		{Kind: nn.Connected, NInputs: nInputs, NOutputs: hp.CondNumHiddenNeurons,
			Activation: hp.CondHiddenNeuronActivation, Eta: hp.CondEta, Options: options,
			NInit: hp.CondNumHiddenNeurons, NMax: hp.CondMaxHiddenNeurons, MaxNeuronGrow: 4},
		{Kind: nn.Connected, NOutputs: 1, Activation: "Sigmoid", Eta: hp.CondEta},
	})
}

func (c *neuralCondition) Compute(input []float64) bool {
	if c.net == nil {
		return false
	}
	return c.net.Propagate(input)[0] >= neuralMatchThreshold
}

func (c *neuralCondition) General(input []float64) bool {
	return c.Compute(input)
}

func (c *neuralCondition) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	net, err := c.buildNet(len(input))
	if err != nil {
		return
	}
	c.net = net
	for attempt := 0; attempt < neuralCoverMaxAttempts; attempt++ {
		for _, l := range c.net.Layers() {
			l.Rand(rng)
		}
		if c.Compute(input) {
			return
		}
	}
}

func (c *neuralCondition) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	return c.net.Mutate(hp, rng)
}

func (c *neuralCondition) Crossover(other Condition, hp *params.Hyperparameters, rng *rand.Rand) bool {
	// Neural conditions do not define a structural crossover beyond
	// per-layer mutation; §4.4 leaves crossover substrate-specific and
	// the teacher's net package has no two-net splice operator to ground
	// one on.
	return false
}

func (c *neuralCondition) Copy() Condition {
	return &neuralCondition{net: c.net.Copy(), hp: c.hp}
}

func (c *neuralCondition) Print() string {
	return fmt.Sprintf("Neural{%s}", c.net.Print())
}

func (c *neuralCondition) Save(w io.Writer) error {
	return c.net.Save(w)
}

func (c *neuralCondition) Load(r io.Reader) error {
	net, err := nn.Load(r)
	if err != nil {
		return err
	}
	c.net = net
	return nil
}
