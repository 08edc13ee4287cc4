package layers

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcsf-go/core/activation"
	"github.com/xcsf-go/core/nn"
	"github.com/xcsf-go/core/params"
	"github.com/xcsf-go/core/sam"
)

func init() {
	nn.Register(nn.Convolutional,
		func(a nn.LayerArgs) (nn.Layer, error) { return newConvolutional(a) },
		func() nn.Layer { return &convolutional{} },
	)
}

// convolutional is a 2-D convolution over a (channels, height, width)
// input: stride-1, valid padding, one square kernel per (inChannel,
// outChannel) pair, plus one bias per output channel.
type convolutional struct {
	in, out    imageShape
	kernelSize int

	kernels [][][][]float64 // [outChannel][inChannel][ky][kx]
	bias    []float64

	actName string
	act     activation.ActivationFunction

	eta      float64
	momentum float64
	decay    float64
	options  nn.LayerOptions

	lastInput []float64
	preAct    []float64
	output    []float64
	delta     []float64

	dK [][][][]float64
	db []float64
	vK [][][][]float64
	vb []float64

	rates sam.Rates
}

func newConvolutional(a nn.LayerArgs) (nn.Layer, error) {
	if a.Channels <= 0 || a.Height <= 0 || a.Width <= 0 || a.OutChannels <= 0 {
		return nil, fmt.Errorf("convolutional layer has a zero-sized dimension")
	}
	k := a.KernelSize
	if k <= 0 {
		k = 3
	}
	act, err := activation.DynamicActivation(a.Activation)
	if err != nil {
		return nil, err
	}
	in := imageShape{a.Channels, a.Height, a.Width}
	out := imageShape{a.OutChannels, a.Height - k + 1, a.Width - k + 1}
	if out.height <= 0 || out.width <= 0 {
		return nil, fmt.Errorf("convolutional kernel size %d too large for %dx%d input", k, a.Height, a.Width)
	}
	c := &convolutional{
		in: in, out: out, kernelSize: k,
		actName: a.Activation, act: act,
		eta: a.Eta, momentum: a.Momentum, decay: a.Decay,
		options: a.Options,
		rates:   sam.New(4, 0.05),
	}
	c.Init()
	return c, nil
}

func (c *convolutional) Kind() nn.LayerKind      { return nn.Convolutional }
func (c *convolutional) NInputs() int            { return c.in.size() }
func (c *convolutional) NOutputs() int           { return c.out.size() }
func (c *convolutional) Options() nn.LayerOptions { return c.options }
func (c *convolutional) Output() []float64       { return c.output }
func (c *convolutional) Delta() []float64        { return c.delta }

func newKernelTensor(outC, inC, k int) [][][][]float64 {
	t := make([][][][]float64, outC)
	for o := range t {
		t[o] = make([][][]float64, inC)
		for i := range t[o] {
			t[o][i] = make([][]float64, k)
			for y := range t[o][i] {
				t[o][i][y] = make([]float64, k)
			}
		}
	}
	return t
}

func (c *convolutional) Init() {
	c.kernels = newKernelTensor(c.out.channels, c.in.channels, c.kernelSize)
	c.dK = newKernelTensor(c.out.channels, c.in.channels, c.kernelSize)
	c.vK = newKernelTensor(c.out.channels, c.in.channels, c.kernelSize)
	c.bias = make([]float64, c.out.channels)
	c.db = make([]float64, c.out.channels)
	c.vb = make([]float64, c.out.channels)
	c.preAct = make([]float64, c.out.size())
	c.output = make([]float64, c.out.size())
	c.delta = make([]float64, c.out.size())
}

func (c *convolutional) Rand(rng *rand.Rand) {
	n := distuv.Normal{Mu: 0, Sigma: 1.0 / float64(c.kernelSize*c.kernelSize*c.in.channels), Src: rng}
	for o := range c.kernels {
		for i := range c.kernels[o] {
			for y := range c.kernels[o][i] {
				for x := range c.kernels[o][i][y] {
					c.kernels[o][i][y][x] = n.Rand()
				}
			}
		}
		c.bias[o] = 0
	}
}

func (c *convolutional) Forward(input []float64) {
	c.lastInput = input
	k := c.kernelSize
	for o := 0; o < c.out.channels; o++ {
		for y := 0; y < c.out.height; y++ {
			for x := 0; x < c.out.width; x++ {
				sum := c.bias[o]
				for i := 0; i < c.in.channels; i++ {
					for ky := 0; ky < k; ky++ {
						for kx := 0; kx < k; kx++ {
							sum += c.kernels[o][i][ky][kx] * c.in.at(input, i, y+ky, x+kx)
						}
					}
				}
				idx := (o*c.out.height+y)*c.out.width + x
				c.preAct[idx] = sum
				c.output[idx] = c.act.Apply(sum)
			}
		}
	}
}

func (c *convolutional) Backward(prevDelta []float64) {
	k := c.kernelSize
	for o := 0; o < c.out.channels; o++ {
		for y := 0; y < c.out.height; y++ {
			for x := 0; x < c.out.width; x++ {
				idx := (o*c.out.height+y)*c.out.width + x
				dLdZ := c.delta[idx] * c.act.Derivative(c.preAct[idx])
				c.db[o] += dLdZ
				for i := 0; i < c.in.channels; i++ {
					for ky := 0; ky < k; ky++ {
						for kx := 0; kx < k; kx++ {
							c.dK[o][i][ky][kx] += dLdZ * c.in.at(c.lastInput, i, y+ky, x+kx)
							if prevDelta != nil {
								pIdx := (i*c.in.height+y+ky)*c.in.width + x + kx
								prevDelta[pIdx] += dLdZ * c.kernels[o][i][ky][kx]
							}
						}
					}
				}
			}
		}
	}
}

func (c *convolutional) Update(eta float64) {
	rate := eta
	if c.options.Has(nn.EvolveEta) {
		rate = c.eta
	}
	for o := range c.kernels {
		for i := range c.kernels[o] {
			for y := range c.kernels[o][i] {
				for x := range c.kernels[o][i][y] {
					grad := c.dK[o][i][y][x] - c.decay*c.kernels[o][i][y][x]
					c.vK[o][i][y][x] = c.momentum*c.vK[o][i][y][x] + rate*grad
					c.kernels[o][i][y][x] += c.vK[o][i][y][x]
					c.dK[o][i][y][x] = 0
				}
			}
		}
		gradB := c.db[o] - c.decay*c.bias[o]
		c.vb[o] = c.momentum*c.vb[o] + rate*gradB
		c.bias[o] += c.vb[o]
		c.db[o] = 0
	}
}

func (c *convolutional) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	c.rates.Adapt(connectedRateKinds, hp.SAMMin, rng)
	changed := false
	if c.options.Has(nn.EvolveWeights) {
		n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
		for o := range c.kernels {
			for i := range c.kernels[o] {
				for y := range c.kernels[o][i] {
					for x := range c.kernels[o][i][y] {
						if rng.Float64() < hp.PMutation {
							c.kernels[o][i][y][x] += n.Rand() * c.rates[0]
							changed = true
						}
					}
				}
			}
			if rng.Float64() < hp.PMutation {
				c.bias[o] += n.Rand() * c.rates[0]
				changed = true
			}
		}
	}
	if c.options.Has(nn.EvolveFunctions) && rng.Float64() < hp.FMutation {
		name := connectedActivationPool[rng.Intn(len(connectedActivationPool))]
		if act, err := activation.DynamicActivation(name); err == nil && name != c.actName {
			c.actName, c.act = name, act
			changed = true
		}
	}
	return changed
}

// Resize is a contract no-op: a convolutional layer's input channel count
// is part of its trained kernel shape and is not repaired automatically;
// a genuine channel-count change requires reconstructing the layer.
func (c *convolutional) Resize(prevOutputs int) {}

func (c *convolutional) Copy() nn.Layer {
	cp := *c
	cp.kernels = copyKernelTensor(c.kernels)
	cp.dK = copyKernelTensor(c.dK)
	cp.vK = copyKernelTensor(c.vK)
	cp.bias = append([]float64(nil), c.bias...)
	cp.db = append([]float64(nil), c.db...)
	cp.vb = append([]float64(nil), c.vb...)
	cp.preAct = append([]float64(nil), c.preAct...)
	cp.output = append([]float64(nil), c.output...)
	cp.delta = append([]float64(nil), c.delta...)
	cp.rates = c.rates.Copy()
	return &cp
}

func copyKernelTensor(t [][][][]float64) [][][][]float64 {
	out := make([][][][]float64, len(t))
	for o := range t {
		out[o] = make([][][]float64, len(t[o]))
		for i := range t[o] {
			out[o][i] = make([][]float64, len(t[o][i]))
			for y := range t[o][i] {
				out[o][i][y] = append([]float64(nil), t[o][i][y]...)
			}
		}
	}
	return out
}

func (c *convolutional) Print() string {
	return fmt.Sprintf("Convolutional{%dx%dx%d -k%d-> %dx%dx%d, activation: %s}", c.in.channels, c.in.height, c.in.width, c.kernelSize, c.out.channels, c.out.height, c.out.width, c.actName)
}

func (c *convolutional) Save(w io.Writer) error {
	header := [6]int32{int32(c.in.channels), int32(c.in.height), int32(c.in.width), int32(c.out.channels), int32(c.kernelSize), 0}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := writeString(w, c.actName); err != nil {
		return err
	}
	scalars := [3]float64{c.eta, c.momentum, c.decay}
	if err := binary.Write(w, binary.LittleEndian, scalars); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.options); err != nil {
		return err
	}
	for o := range c.kernels {
		for i := range c.kernels[o] {
			for y := range c.kernels[o][i] {
				if err := binary.Write(w, binary.LittleEndian, c.kernels[o][i][y]); err != nil {
					return err
				}
			}
		}
	}
	if err := binary.Write(w, binary.LittleEndian, c.bias); err != nil {
		return err
	}
	return c.rates.Save(w)
}

func (c *convolutional) Load(r io.Reader) error {
	var header [6]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return err
	}
	c.in = imageShape{int(header[0]), int(header[1]), int(header[2])}
	outChannels := int(header[3])
	c.kernelSize = int(header[4])
	c.out = imageShape{outChannels, c.in.height - c.kernelSize + 1, c.in.width - c.kernelSize + 1}

	name, err := readString(r)
	if err != nil {
		return err
	}
	c.actName = name
	c.act, err = activation.DynamicActivation(name)
	if err != nil {
		return err
	}
	var scalars [3]float64
	if err := binary.Read(r, binary.LittleEndian, &scalars); err != nil {
		return err
	}
	c.eta, c.momentum, c.decay = scalars[0], scalars[1], scalars[2]
	if err := binary.Read(r, binary.LittleEndian, &c.options); err != nil {
		return err
	}

	c.kernels = newKernelTensor(c.out.channels, c.in.channels, c.kernelSize)
	for o := range c.kernels {
		for i := range c.kernels[o] {
			for y := range c.kernels[o][i] {
				if err := binary.Read(r, binary.LittleEndian, c.kernels[o][i][y]); err != nil {
					return err
				}
			}
		}
	}
	c.bias = make([]float64, c.out.channels)
	if err := binary.Read(r, binary.LittleEndian, c.bias); err != nil {
		return err
	}
	c.rates, err = sam.Load(r)
	if err != nil {
		return err
	}

	c.dK = newKernelTensor(c.out.channels, c.in.channels, c.kernelSize)
	c.vK = newKernelTensor(c.out.channels, c.in.channels, c.kernelSize)
	c.db = make([]float64, c.out.channels)
	c.vb = make([]float64, c.out.channels)
	c.preAct = make([]float64, c.out.size())
	c.output = make([]float64, c.out.size())
	c.delta = make([]float64, c.out.size())
	return nil
}
