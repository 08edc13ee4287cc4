package action

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/nn"
	_ "github.com/xcsf-go/core/nn/layers" // registers the concrete layer kinds BuildNet/Load dispatch to
	"github.com/xcsf-go/core/params"
)

// neuralAction selects the discrete action with the largest output of a
// small net: one output neuron per candidate action, argmax over them.
// There is no Cover call in this interface to size the net from an
// observed input, so construction is deferred to the first Compute call,
// the same lazy-sizing approach condition/prediction use on their first
// Cover.
type neuralAction struct {
	net      *nn.Net
	nActions int
	hp       *params.Hyperparameters
	rng      *rand.Rand
}

func newNeuralAction(nActions int, hp *params.Hyperparameters, rng *rand.Rand) (*neuralAction, error) {
	return &neuralAction{nActions: nActions, hp: hp, rng: rng}, nil
}

func (a *neuralAction) buildNet(nInputs int) (*nn.Net, error) {
	hp := a.hp
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
		{Kind: nn.Connected, NOutputs: a.nActions, Activation: "Linear", Eta: hp.CondEta},
	})
}

func (a *neuralAction) ensureNet(nInputs int) {
	if a.net != nil {
		return
	}
	net, err := a.buildNet(nInputs)
	if err != nil {
		return
	}
	a.net = net
	for _, l := range a.net.Layers() {
		l.Rand(a.rng)
	}
}

func (a *neuralAction) Compute(input []float64) int {
	a.ensureNet(len(input))
	if a.net == nil {
		return 0
	}
	out := a.net.Propagate(input)
	best := 0
	for i, v := range out {
		if v > out[best] {
			best = i
		}
	}
	return best
}

func (a *neuralAction) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	if a.net == nil {
		return false
	}
	return a.net.Mutate(hp, rng)
}

func (a *neuralAction) Copy() Action {
	cp := &neuralAction{nActions: a.nActions, hp: a.hp, rng: a.rng}
	if a.net != nil {
		cp.net = a.net.Copy()
	}
	return cp
}

func (a *neuralAction) Print() string {
	if a.net == nil {
		return "Neural{uninitialised}"
	}
	return fmt.Sprintf("Neural{%s}", a.net.Print())
}

func (a *neuralAction) Save(w io.Writer) error {
	return a.net.Save(w)
}

func (a *neuralAction) Load(r io.Reader) error {
	net, err := nn.Load(r)
	if err != nil {
		return err
	}
	a.net = net
	return nil
}
