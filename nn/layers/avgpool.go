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
	nn.Register(nn.AvgPool,
		func(a nn.LayerArgs) (nn.Layer, error) { return newAvgPool(a) },
		func() nn.Layer { return &avgPool{} },
	)
}

// avgPool downsamples each channel of a (channels, height, width) input by
// averaging non-overlapping kernelSize x kernelSize windows.
type avgPool struct {
	in, out    imageShape
	kernelSize int

	output []float64
	delta  []float64
}

func newAvgPool(a nn.LayerArgs) (nn.Layer, error) {
	in := imageShape{a.Channels, a.Height, a.Width}
	k := a.KernelSize
	if k <= 0 {
		k = 2
	}
	p := &avgPool{in: in, kernelSize: k}
	p.out = imageShape{in.channels, in.height / k, in.width / k}
	p.Init()
	return p, nil
}

func (p *avgPool) Kind() nn.LayerKind      { return nn.AvgPool }
func (p *avgPool) NInputs() int            { return p.in.size() }
func (p *avgPool) NOutputs() int           { return p.out.size() }
func (p *avgPool) Options() nn.LayerOptions { return 0 }
func (p *avgPool) Output() []float64       { return p.output }
func (p *avgPool) Delta() []float64        { return p.delta }

func (p *avgPool) Init() {
	p.output = make([]float64, p.out.size())
	p.delta = make([]float64, p.out.size())
}

func (p *avgPool) Rand(rng *rand.Rand) {}

func (p *avgPool) Forward(input []float64) {
	k := p.kernelSize
	n := float64(k * k)
	for c := 0; c < p.out.channels; c++ {
		for y := 0; y < p.out.height; y++ {
			for x := 0; x < p.out.width; x++ {
				sum := 0.0
				for dy := 0; dy < k; dy++ {
					for dx := 0; dx < k; dx++ {
						sum += p.in.at(input, c, y*k+dy, x*k+dx)
					}
				}
				p.out.set(p.output, c, y, x, sum/n)
			}
		}
	}
}

func (p *avgPool) Backward(prevDelta []float64) {
	if prevDelta == nil {
		return
	}
	k := p.kernelSize
	n := float64(k * k)
	for c := 0; c < p.out.channels; c++ {
		for y := 0; y < p.out.height; y++ {
			for x := 0; x < p.out.width; x++ {
				share := p.out.at(p.delta, c, y, x) / n
				for dy := 0; dy < k; dy++ {
					for dx := 0; dx < k; dx++ {
						idx := (c*p.in.height+y*k+dy)*p.in.width + x*k + dx
						prevDelta[idx] += share
					}
				}
			}
		}
	}
}

func (p *avgPool) Update(eta float64) {}

func (p *avgPool) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (p *avgPool) Resize(prevOutputs int) {
	// Pool geometry is fixed by construction; a changed upstream output
	// count only makes sense if the channel count changed proportionally.
	if prevOutputs%(p.in.height*p.in.width) == 0 {
		p.in.channels = prevOutputs / (p.in.height * p.in.width)
		p.out.channels = p.in.channels
		p.Init()
	}
}

func (p *avgPool) Copy() nn.Layer {
	cp := *p
	cp.output = append([]float64(nil), p.output...)
	cp.delta = append([]float64(nil), p.delta...)
	return &cp
}

func (p *avgPool) Print() string {
	return fmt.Sprintf("AvgPool{%dx%dx%d -k%d-> %dx%dx%d}", p.in.channels, p.in.height, p.in.width, p.kernelSize, p.out.channels, p.out.height, p.out.width)
}

func (p *avgPool) Save(w io.Writer) error {
	header := [4]int32{int32(p.in.channels), int32(p.in.height), int32(p.in.width), int32(p.kernelSize)}
	return binary.Write(w, binary.LittleEndian, header)
}

func (p *avgPool) Load(r io.Reader) error {
	var header [4]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return err
	}
	p.in = imageShape{int(header[0]), int(header[1]), int(header[2])}
	p.kernelSize = int(header[3])
	p.out = imageShape{p.in.channels, p.in.height / p.kernelSize, p.in.width / p.kernelSize}
	p.Init()
	return nil
}
