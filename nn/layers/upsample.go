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
	nn.Register(nn.Upsample,
		func(a nn.LayerArgs) (nn.Layer, error) { return newUpsample(a) },
		func() nn.Layer { return &upsample{} },
	)
}

// upsample repeats each pixel of a (channels, height, width) input into a
// stride x stride block (nearest-neighbour upsampling).
type upsample struct {
	in, out imageShape
	stride  int

	output []float64
	delta  []float64
}

func newUpsample(a nn.LayerArgs) (nn.Layer, error) {
	in := imageShape{a.Channels, a.Height, a.Width}
	s := a.Stride
	if s <= 0 {
		s = 2
	}
	u := &upsample{in: in, stride: s}
	u.out = imageShape{in.channels, in.height * s, in.width * s}
	u.Init()
	return u, nil
}

func (u *upsample) Kind() nn.LayerKind      { return nn.Upsample }
func (u *upsample) NInputs() int            { return u.in.size() }
func (u *upsample) NOutputs() int           { return u.out.size() }
func (u *upsample) Options() nn.LayerOptions { return 0 }
func (u *upsample) Output() []float64       { return u.output }
func (u *upsample) Delta() []float64        { return u.delta }

func (u *upsample) Init() {
	u.output = make([]float64, u.out.size())
	u.delta = make([]float64, u.out.size())
}

func (u *upsample) Rand(rng *rand.Rand) {}

func (u *upsample) Forward(input []float64) {
	s := u.stride
	for c := 0; c < u.in.channels; c++ {
		for y := 0; y < u.in.height; y++ {
			for x := 0; x < u.in.width; x++ {
				v := u.in.at(input, c, y, x)
				for dy := 0; dy < s; dy++ {
					for dx := 0; dx < s; dx++ {
						u.out.set(u.output, c, y*s+dy, x*s+dx, v)
					}
				}
			}
		}
	}
}

func (u *upsample) Backward(prevDelta []float64) {
	if prevDelta == nil {
		return
	}
	s := u.stride
	for c := 0; c < u.in.channels; c++ {
		for y := 0; y < u.in.height; y++ {
			for x := 0; x < u.in.width; x++ {
				sum := 0.0
				for dy := 0; dy < s; dy++ {
					for dx := 0; dx < s; dx++ {
						sum += u.out.at(u.delta, c, y*s+dy, x*s+dx)
					}
				}
				idx := (c*u.in.height+y)*u.in.width + x
				prevDelta[idx] += sum
			}
		}
	}
}

func (u *upsample) Update(eta float64) {}

func (u *upsample) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (u *upsample) Resize(prevOutputs int) {
	if prevOutputs%(u.in.height*u.in.width) == 0 {
		u.in.channels = prevOutputs / (u.in.height * u.in.width)
		u.out.channels = u.in.channels
		u.Init()
	}
}

func (u *upsample) Copy() nn.Layer {
	cp := *u
	cp.output = append([]float64(nil), u.output...)
	cp.delta = append([]float64(nil), u.delta...)
	return &cp
}

func (u *upsample) Print() string {
	return fmt.Sprintf("Upsample{%dx%dx%d -s%d-> %dx%dx%d}", u.in.channels, u.in.height, u.in.width, u.stride, u.out.channels, u.out.height, u.out.width)
}

func (u *upsample) Save(w io.Writer) error {
	header := [4]int32{int32(u.in.channels), int32(u.in.height), int32(u.in.width), int32(u.stride)}
	return binary.Write(w, binary.LittleEndian, header)
}

func (u *upsample) Load(r io.Reader) error {
	var header [4]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return err
	}
	u.in = imageShape{int(header[0]), int(header[1]), int(header[2])}
	u.stride = int(header[3])
	u.out = imageShape{u.in.channels, u.in.height * u.stride, u.in.width * u.stride}
	u.Init()
	return nil
}
