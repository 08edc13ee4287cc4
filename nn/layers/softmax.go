package layers

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/xcsf-go/core/nn"
	"github.com/xcsf-go/core/params"
)

func init() {
	nn.Register(nn.Softmax,
		func(a nn.LayerArgs) (nn.Layer, error) { return newSoftmax(a) },
		func() nn.Layer { return &softmax{} },
	)
}

// softmax normalizes its input vector into a probability distribution.
// Its backward pass is a full Jacobian-vector product, not an elementwise
// derivative, which is why it is a layer kind rather than an
// activation.ActivationFunction (those only support elementwise
// derivatives).
type softmax struct {
	size   int
	output []float64
	delta  []float64
}

func newSoftmax(a nn.LayerArgs) (nn.Layer, error) {
	if a.NInputs <= 0 {
		return nil, fmt.Errorf("softmax layer requires positive NInputs, got %d", a.NInputs)
	}
	s := &softmax{size: a.NInputs}
	s.Init()
	return s, nil
}

func (s *softmax) Kind() nn.LayerKind      { return nn.Softmax }
func (s *softmax) NInputs() int            { return s.size }
func (s *softmax) NOutputs() int           { return s.size }
func (s *softmax) Options() nn.LayerOptions { return 0 }
func (s *softmax) Output() []float64       { return s.output }
func (s *softmax) Delta() []float64        { return s.delta }

func (s *softmax) Init() {
	s.output = make([]float64, s.size)
	s.delta = make([]float64, s.size)
}

func (s *softmax) Rand(rng *rand.Rand) {}

func (s *softmax) Forward(input []float64) {
	max := input[0]
	for _, x := range input[1:] {
		if x > max {
			max = x
		}
	}
	sum := 0.0
	for i, x := range input {
		s.output[i] = math.Exp(x - max)
		sum += s.output[i]
	}
	for i := range s.output {
		s.output[i] /= sum
	}
}

// Backward applies the softmax Jacobian: dL/dz_i = sum_j delta_j *
// output_i * (1{i==j} - output_j).
func (s *softmax) Backward(prevDelta []float64) {
	if prevDelta == nil {
		return
	}
	for i := range prevDelta {
		sum := 0.0
		for j, dj := range s.delta {
			indicator := 0.0
			if i == j {
				indicator = 1
			}
			sum += dj * s.output[i] * (indicator - s.output[j])
		}
		prevDelta[i] += sum
	}
}

func (s *softmax) Update(eta float64) {}

func (s *softmax) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (s *softmax) Resize(prevOutputs int) {
	s.size = prevOutputs
	s.Init()
}

func (s *softmax) Copy() nn.Layer {
	cp := *s
	cp.output = append([]float64(nil), s.output...)
	cp.delta = append([]float64(nil), s.delta...)
	return &cp
}

func (s *softmax) Print() string {
	return fmt.Sprintf("Softmax{%[1]d -> %[1]d}", s.size)
}

func (s *softmax) Save(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, int32(s.size))
}

func (s *softmax) Load(r io.Reader) error {
	var size int32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return err
	}
	s.size = int(size)
	s.Init()
	return nil
}
