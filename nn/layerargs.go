package nn

import "fmt"

// LayerArgs describes one layer of a net template. A chain of LayerArgs
// (tail-to-head order, mirroring how the config stage would describe a
// net before instantiating it) is consumed by BuildNet to produce a Net.
type LayerArgs struct {
	Kind LayerKind

	// Shape. NInputs is required for the chain's first entry; later
	// entries may leave it zero and let BuildNet/Resize infer it from the
	// previous layer's NOutputs.
	NInputs  int
	NOutputs int

	// Convolutional/pooling/upsample shape, read as (channels, height,
	// width) flattened into NInputs/NOutputs. OutChannels is only read by
	// Convolutional (pooling/upsample keep the channel count).
	Channels    int
	OutChannels int
	Height      int
	Width       int
	KernelSize  int
	Stride      int

	Activation string

	Eta      float64
	Momentum float64
	Decay    float64

	Options LayerOptions

	// Neuron-count evolution bounds; required (NMax>=NInit, MaxNeuronGrow
	// >= 1) whenever Options has EvolveNeurons set.
	NInit         int
	NMax          int
	MaxNeuronGrow int

	// Noise/dropout rate.
	Rate float64
}

func (a LayerArgs) validate() error {
	if a.Options.Has(EvolveNeurons) {
		if a.MaxNeuronGrow < 1 {
			return fmt.Errorf("nn: %s layer has EvolveNeurons set but MaxNeuronGrow < 1", a.Kind)
		}
		if a.NMax < a.NInit {
			return fmt.Errorf("nn: %s layer has NMax (%d) < NInit (%d)", a.Kind, a.NMax, a.NInit)
		}
	}
	switch a.Kind {
	case Convolutional, AvgPool, MaxPool, Upsample:
		if a.Channels <= 0 || a.Height <= 0 || a.Width <= 0 {
			return fmt.Errorf("nn: %s layer has a zero-sized image dimension", a.Kind)
		}
	}
	return nil
}

// BuildNet validates and instantiates a chain of LayerArgs into a Net. The
// chain must be non-empty; args are consumed in order, args[0] becoming
// the tail (first, input-facing) layer and args[len-1] becoming the head.
func BuildNet(args []LayerArgs) (*Net, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("nn: empty layer chain")
	}

	layerList := make([]Layer, 0, len(args))
	prevOutputs := 0
	for i, a := range args {
		if i > 0 && a.NInputs == 0 {
			a.NInputs = prevOutputs
		}
		if err := a.validate(); err != nil {
			return nil, err
		}
		ctors, err := lookup(a.Kind)
		if err != nil {
			return nil, err
		}
		l, err := ctors.build(a)
		if err != nil {
			return nil, fmt.Errorf("nn: building layer %d (%s): %w", i, a.Kind, err)
		}
		if i > 0 && l.NInputs() != prevOutputs {
			return nil, fmt.Errorf("nn: layer %d (%s) expects %d inputs, previous layer produces %d", i, a.Kind, l.NInputs(), prevOutputs)
		}
		layerList = append(layerList, l)
		prevOutputs = l.NOutputs()
	}

	return newNet(layerList), nil
}
