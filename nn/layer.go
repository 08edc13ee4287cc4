// Package nn implements the dynamically-shaped multilayer neural network
// engine used as both a condition and a prediction substrate: a uniform
// Layer contract (forward/backward/update/mutate/resize/save/load) and a
// Net that chains Layers tail (input-facing) to head (output-facing).
//
// Concrete layer kinds (Connected, Convolutional, Recurrent, LSTM,
// Softmax, Dropout, Noise, AvgPool, MaxPool, Upsample) live in the sibling
// package nn/layers and register themselves here via Register, mirroring
// the way the activation and loss packages dispatch by name rather than
// by static type. Importers that call BuildNet or Net.Load must blank
// import nn/layers (or a subset of it) so the relevant kinds are
// registered before use.
package nn

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// LayerKind tags the concrete representation behind a Layer.
type LayerKind int32

const (
	Connected LayerKind = iota
	Convolutional
	Recurrent
	LSTM
	Softmax
	Dropout
	Noise
	AvgPool
	MaxPool
	Upsample
)

func (k LayerKind) String() string {
	switch k {
	case Connected:
		return "Connected"
	case Convolutional:
		return "Convolutional"
	case Recurrent:
		return "Recurrent"
	case LSTM:
		return "LSTM"
	case Softmax:
		return "Softmax"
	case Dropout:
		return "Dropout"
	case Noise:
		return "Noise"
	case AvgPool:
		return "AvgPool"
	case MaxPool:
		return "MaxPool"
	case Upsample:
		return "Upsample"
	default:
		return fmt.Sprintf("LayerKind(%d)", int32(k))
	}
}

// LayerOptions is the per-layer bitset derived once from LayerArgs at
// construction time; it is immutable for the lifetime of the layer and
// gates which mutation/training effects apply.
type LayerOptions uint8

const (
	EvolveWeights LayerOptions = 1 << iota
	EvolveNeurons
	EvolveFunctions
	EvolveEta
	EvolveConnect
	SGDWeights
)

// Has reports whether every bit set in flag is also set in o.
func (o LayerOptions) Has(flag LayerOptions) bool {
	return o&flag == flag
}

// Layer is the uniform operation set every layer kind implements (§4.1).
// Forward and Backward operate on caller-owned buffers without allocating;
// a layer caches whatever it needs from the most recent Forward call to
// compute Backward and Update.
type Layer interface {
	Kind() LayerKind
	NInputs() int
	NOutputs() int
	Options() LayerOptions

	// Init (re)allocates internal state for the layer's current shape.
	Init()
	// Rand randomizes weights/parameters in place.
	Rand(rng *rand.Rand)

	// Forward reads input (length NInputs) and fills the layer's own
	// output buffer (length NOutputs), returned by Output.
	Forward(input []float64)
	// Output returns the layer's output buffer from the last Forward call.
	Output() []float64
	// Delta returns the layer's own error-gradient buffer (length
	// NOutputs). Net seeds the head's delta directly through this buffer
	// and zeroes every layer's delta through it between learn steps.
	Delta() []float64

	// Backward consumes the layer's own Delta (already populated, either
	// by Net seeding the head or by the downstream neighbour's Backward)
	// and accumulates weight gradients internally; if prevDelta is
	// non-nil it accumulates input-gradients into it.
	Backward(prevDelta []float64)
	// Update applies accumulated gradients using eta and the layer's own
	// momentum/decay, then zeroes the gradient accumulators. A no-op for
	// layers without trainable weights.
	Update(eta float64)

	// Mutate perturbs weights/activation/connectivity/eta/neuron-count per
	// the layer's LayerOptions and the hyperparameter bundle's mutation
	// probabilities; it returns whether anything changed.
	Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool
	// Resize adjusts NInputs to prevOutputs, preserving weights for
	// surviving input positions and zero-initializing new ones.
	Resize(prevOutputs int)

	Copy() Layer
	Print() string

	Save(w io.Writer) error
	Load(r io.Reader) error
}

type ctorFuncs struct {
	build func(LayerArgs) (Layer, error)
	blank func() Layer
}

var registry = map[LayerKind]ctorFuncs{}

// Register installs the constructors for a concrete layer kind. Called
// from the registering package's init(), never directly by callers.
func Register(k LayerKind, build func(LayerArgs) (Layer, error), blank func() Layer) {
	registry[k] = ctorFuncs{build: build, blank: blank}
}

func lookup(k LayerKind) (ctorFuncs, error) {
	f, ok := registry[k]
	if !ok {
		return ctorFuncs{}, fmt.Errorf("nn: no layer kind registered for %s (forgot a blank import?)", k)
	}
	return f, nil
}
