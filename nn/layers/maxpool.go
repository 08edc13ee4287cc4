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
	nn.Register(nn.MaxPool,
		func(a nn.LayerArgs) (nn.Layer, error) { return newMaxPool(a) },
		func() nn.Layer { return &maxPool{} },
	)
}

// maxPool downsamples each channel by taking the maximum of non-overlapping
// kernelSize x kernelSize windows, routing the gradient to the winning
// position only.
type maxPool struct {
	in, out    imageShape
	kernelSize int

	argmaxDY []int // per output position, winning offset within the window
	argmaxDX []int
	output   []float64
	delta    []float64
}

func newMaxPool(a nn.LayerArgs) (nn.Layer, error) {
	in := imageShape{a.Channels, a.Height, a.Width}
	k := a.KernelSize
	if k <= 0 {
		k = 2
	}
	p := &maxPool{in: in, kernelSize: k}
	p.out = imageShape{in.channels, in.height / k, in.width / k}
	p.Init()
	return p, nil
}

func (p *maxPool) Kind() nn.LayerKind      { return nn.MaxPool }
func (p *maxPool) NInputs() int            { return p.in.size() }
func (p *maxPool) NOutputs() int           { return p.out.size() }
func (p *maxPool) Options() nn.LayerOptions { return 0 }
func (p *maxPool) Output() []float64       { return p.output }
func (p *maxPool) Delta() []float64        { return p.delta }

func (p *maxPool) Init() {
	p.output = make([]float64, p.out.size())
	p.delta = make([]float64, p.out.size())
	p.argmaxDY = make([]int, p.out.size())
	p.argmaxDX = make([]int, p.out.size())
}

func (p *maxPool) Rand(rng *rand.Rand) {}

func (p *maxPool) Forward(input []float64) {
	k := p.kernelSize
	for c := 0; c < p.out.channels; c++ {
		for y := 0; y < p.out.height; y++ {
			for x := 0; x < p.out.width; x++ {
				best, bestDY, bestDX := negInf, 0, 0
				for dy := 0; dy < k; dy++ {
					for dx := 0; dx < k; dx++ {
						v := p.in.at(input, c, y*k+dy, x*k+dx)
						if v > best {
							best, bestDY, bestDX = v, dy, dx
						}
					}
				}
				idx := (c*p.out.height+y)*p.out.width + x
				p.output[idx] = best
				p.argmaxDY[idx] = bestDY
				p.argmaxDX[idx] = bestDX
			}
		}
	}
}

const negInf = -1e300

func (p *maxPool) Backward(prevDelta []float64) {
	if prevDelta == nil {
		return
	}
	k := p.kernelSize
	for c := 0; c < p.out.channels; c++ {
		for y := 0; y < p.out.height; y++ {
			for x := 0; x < p.out.width; x++ {
				idx := (c*p.out.height+y)*p.out.width + x
				dy, dx := p.argmaxDY[idx], p.argmaxDX[idx]
				target := (c*p.in.height+y*k+dy)*p.in.width + x*k + dx
				prevDelta[target] += p.delta[idx]
			}
		}
	}
}

func (p *maxPool) Update(eta float64) {}

func (p *maxPool) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool { return false }

func (p *maxPool) Resize(prevOutputs int) {
	if prevOutputs%(p.in.height*p.in.width) == 0 {
		p.in.channels = prevOutputs / (p.in.height * p.in.width)
		p.out.channels = p.in.channels
		p.Init()
	}
}

func (p *maxPool) Copy() nn.Layer {
	cp := *p
	cp.output = append([]float64(nil), p.output...)
	cp.delta = append([]float64(nil), p.delta...)
	cp.argmaxDY = append([]int(nil), p.argmaxDY...)
	cp.argmaxDX = append([]int(nil), p.argmaxDX...)
	return &cp
}

func (p *maxPool) Print() string {
	return fmt.Sprintf("MaxPool{%dx%dx%d -k%d-> %dx%dx%d}", p.in.channels, p.in.height, p.in.width, p.kernelSize, p.out.channels, p.out.height, p.out.width)
}

func (p *maxPool) Save(w io.Writer) error {
	header := [4]int32{int32(p.in.channels), int32(p.in.height), int32(p.in.width), int32(p.kernelSize)}
	return binary.Write(w, binary.LittleEndian, header)
}

func (p *maxPool) Load(r io.Reader) error {
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
