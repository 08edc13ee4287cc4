package layers

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcsf-go/core/nn"
	"github.com/xcsf-go/core/params"
)

func init() {
	nn.Register(nn.Noise,
		func(a nn.LayerArgs) (nn.Layer, error) { return newNoise(a) },
		func() nn.Layer { return &noise{} },
	)
}

// noise adds zero-mean Gaussian noise of standard deviation Rate to its
// input, pass-through on the gradient (dOutput/dInput == 1).
type noise struct {
	size   int
	stddev float64
	output []float64
	delta  []float64
}

func newNoise(a nn.LayerArgs) (nn.Layer, error) {
	if a.NInputs <= 0 {
		return nil, fmt.Errorf("noise layer requires positive NInputs, got %d", a.NInputs)
	}
	n := &noise{size: a.NInputs, stddev: a.Rate}
	n.Init()
	return n, nil
}

func (n *noise) Kind() nn.LayerKind      { return nn.Noise }
func (n *noise) NInputs() int            { return n.size }
func (n *noise) NOutputs() int           { return n.size }
func (n *noise) Options() nn.LayerOptions { return 0 }
func (n *noise) Output() []float64       { return n.output }
func (n *noise) Delta() []float64        { return n.delta }

func (n *noise) Init() {
	n.output = make([]float64, n.size)
	n.delta = make([]float64, n.size)
}

func (n *noise) Rand(rng *rand.Rand) {}

func (n *noise) Forward(input []float64) {
	d := distuv.Normal{Mu: 0, Sigma: n.stddev}
	for i, x := range input {
		n.output[i] = x + d.Rand()
	}
}

func (n *noise) Backward(prevDelta []float64) {
	if prevDelta == nil {
		return
	}
	for i, d := range n.delta {
		prevDelta[i] += d
	}
}

func (n *noise) Update(eta float64) {}

func (n *noise) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (n *noise) Resize(prevOutputs int) {
	n.size = prevOutputs
	n.Init()
}

func (n *noise) Copy() nn.Layer {
	cp := *n
	cp.output = append([]float64(nil), n.output...)
	cp.delta = append([]float64(nil), n.delta...)
	return &cp
}

func (n *noise) Print() string {
	return fmt.Sprintf("Noise{%[1]d -> %[1]d, stddev: %v}", n.size, n.stddev)
}

func (n *noise) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(n.size)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, n.stddev)
}

func (n *noise) Load(r io.Reader) error {
	var size int32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return err
	}
	n.size = int(size)
	if err := binary.Read(r, binary.LittleEndian, &n.stddev); err != nil {
		return err
	}
	n.Init()
	return nil
}
