package layers

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/nn"
	"github.com/xcsf-go/core/params"
)

func init() {
	nn.Register(nn.Dropout,
		func(a nn.LayerArgs) (nn.Layer, error) { return newDropout(a) },
		func() nn.Layer { return &dropout{} },
	)
}

// dropout nullifies random positions of its input to reduce overfitting.
// A different mask is drawn on every Forward call; the same mask gates
// Backward so that a nullified position also blocks its gradient.
type dropout struct {
	size int
	rate float64

	mask   []bool
	output []float64
	delta  []float64
}

func newDropout(a nn.LayerArgs) (nn.Layer, error) {
	if a.NInputs <= 0 {
		return nil, fmt.Errorf("dropout layer requires positive NInputs, got %d", a.NInputs)
	}
	d := &dropout{size: a.NInputs, rate: a.Rate}
	d.Init()
	return d, nil
}

func (d *dropout) Kind() nn.LayerKind      { return nn.Dropout }
func (d *dropout) NInputs() int            { return d.size }
func (d *dropout) NOutputs() int           { return d.size }
func (d *dropout) Options() nn.LayerOptions { return 0 }
func (d *dropout) Output() []float64       { return d.output }
func (d *dropout) Delta() []float64        { return d.delta }

func (d *dropout) Init() {
	d.mask = make([]bool, d.size)
	d.output = make([]float64, d.size)
	d.delta = make([]float64, d.size)
}

func (d *dropout) Rand(rng *rand.Rand) {}

func (d *dropout) Forward(input []float64) {
	keepProb := 1 - d.rate
	for i, x := range input {
		if rand.Float64() < keepProb {
			d.mask[i] = true
			d.output[i] = x
		} else {
			d.mask[i] = false
			d.output[i] = 0
		}
	}
}

func (d *dropout) Backward(prevDelta []float64) {
	if prevDelta == nil {
		return
	}
	for i, keep := range d.mask {
		if keep {
			prevDelta[i] += d.delta[i]
		}
	}
}

func (d *dropout) Update(eta float64) {}

func (d *dropout) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (d *dropout) Resize(prevOutputs int) {
	d.size = prevOutputs
	d.Init()
}

func (d *dropout) Copy() nn.Layer {
	cp := *d
	cp.mask = append([]bool(nil), d.mask...)
	cp.output = append([]float64(nil), d.output...)
	cp.delta = append([]float64(nil), d.delta...)
	return &cp
}

func (d *dropout) Print() string {
	return fmt.Sprintf("Dropout{%[1]d -> %[1]d, rate: %v}", d.size, d.rate)
}

func (d *dropout) Save(w io.Writer) error {
	header := [1]int32{int32(d.size)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, d.rate)
}

func (d *dropout) Load(r io.Reader) error {
	var header [1]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return err
	}
	d.size = int(header[0])
	if err := binary.Read(r, binary.LittleEndian, &d.rate); err != nil {
		return err
	}
	d.Init()
	return nil
}
