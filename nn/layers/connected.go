// Package layers holds the concrete layer kinds that implement nn.Layer:
// one file per kind, mirroring the teacher's one-file-per-layer-type
// layout. Every file's init() registers its kind with package nn.
package layers

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcsf-go/core/activation"
	"github.com/xcsf-go/core/nn"
	"github.com/xcsf-go/core/params"
	"github.com/xcsf-go/core/sam"
)

func init() {
	nn.Register(nn.Connected,
		func(a nn.LayerArgs) (nn.Layer, error) { return newConnected(a) },
		func() nn.Layer { return &connected{} },
	)
}

// connected is a fully-connected (dense) layer: output = activation(W*x + b).
type connected struct {
	nInputs, nOutputs int
	nInit, nMax       int
	maxNeuronGrow     int

	weights [][]float64 // nOutputs x nInputs
	bias    []float64   // nOutputs
	active  [][]bool    // connectivity mask, same shape as weights

	actName string
	act     activation.ActivationFunction

	eta      float64
	momentum float64
	decay    float64
	options  nn.LayerOptions

	lastInput []float64
	preAct    []float64 // W*x + b, cached for the activation derivative
	output    []float64
	delta     []float64

	dW [][]float64
	db []float64
	vW [][]float64 // momentum velocity
	vb []float64

	rates sam.Rates
}

var connectedRateKinds = []sam.Kind{sam.LogNormal, sam.RateSelect, sam.LogNormal, sam.LogNormal}

func newConnected(a nn.LayerArgs) (nn.Layer, error) {
	if a.NInputs <= 0 || a.NOutputs <= 0 {
		return nil, fmt.Errorf("connected layer requires positive NInputs/NOutputs, got %d/%d", a.NInputs, a.NOutputs)
	}
	act, err := activation.DynamicActivation(a.Activation)
	if err != nil {
		return nil, err
	}
	c := &connected{
		nInputs: a.NInputs, nOutputs: a.NOutputs,
		nInit: a.NInit, nMax: a.NMax, maxNeuronGrow: a.MaxNeuronGrow,
		actName: a.Activation, act: act,
		eta: a.Eta, momentum: a.Momentum, decay: a.Decay,
		options: a.Options,
		rates:   sam.New(4, 0.05),
	}
	c.Init()
	return c, nil
}

func (c *connected) Kind() nn.LayerKind      { return nn.Connected }
func (c *connected) NInputs() int            { return c.nInputs }
func (c *connected) NOutputs() int           { return c.nOutputs }
func (c *connected) Options() nn.LayerOptions { return c.options }
func (c *connected) Output() []float64       { return c.output }
func (c *connected) Delta() []float64        { return c.delta }

// Init (re)allocates every buffer for the layer's current shape. Existing
// weights are preserved where the shape is unchanged; new buffers are
// zeroed, consistent with Resize's "new positions start at zero" rule.
func (c *connected) Init() {
	c.weights = growMatrix(c.weights, c.nOutputs, c.nInputs)
	c.bias = growVector(c.bias, c.nOutputs)
	c.active = growBoolMatrix(c.active, c.nOutputs, c.nInputs, true)
	c.dW = growMatrix(c.dW, c.nOutputs, c.nInputs)
	c.vW = growMatrix(c.vW, c.nOutputs, c.nInputs)
	c.db = growVector(c.db, c.nOutputs)
	c.vb = growVector(c.vb, c.nOutputs)
	c.preAct = growVector(c.preAct, c.nOutputs)
	c.output = growVector(c.output, c.nOutputs)
	c.delta = growVector(c.delta, c.nOutputs)
}

func (c *connected) Rand(rng *rand.Rand) {
	wi := weightInitFor(c.actName)
	size := [2]int{c.nInputs, c.nOutputs}
	for i := range c.weights {
		for j := range c.weights[i] {
			c.weights[i][j] = wi.Generate(size, rng)
		}
		c.bias[i] = 0
	}
}

func (c *connected) Forward(input []float64) {
	c.lastInput = input
	for i := 0; i < c.nOutputs; i++ {
		sum := c.bias[i]
		row, mask := c.weights[i], c.active[i]
		for j := 0; j < c.nInputs; j++ {
			if mask[j] {
				sum += row[j] * input[j]
			}
		}
		c.preAct[i] = sum
		c.output[i] = c.act.Apply(sum)
	}
}

func (c *connected) Backward(prevDelta []float64) {
	for i := 0; i < c.nOutputs; i++ {
		dLdZ := c.delta[i] * c.act.Derivative(c.preAct[i])
		c.db[i] += dLdZ
		row, mask, dwRow := c.weights[i], c.active[i], c.dW[i]
		for j := 0; j < c.nInputs; j++ {
			if !mask[j] {
				continue
			}
			dwRow[j] += dLdZ * c.lastInput[j]
			if prevDelta != nil {
				prevDelta[j] += dLdZ * row[j]
			}
		}
	}
}

func (c *connected) Update(eta float64) {
	rate := eta
	if c.options.Has(nn.EvolveEta) {
		rate = c.eta
	}
	for i := 0; i < c.nOutputs; i++ {
		for j := 0; j < c.nInputs; j++ {
			grad := c.dW[i][j] - c.decay*c.weights[i][j]
			c.vW[i][j] = c.momentum*c.vW[i][j] + rate*grad
			c.weights[i][j] += c.vW[i][j]
			c.dW[i][j] = 0
		}
		gradB := c.db[i] - c.decay*c.bias[i]
		c.vb[i] = c.momentum*c.vb[i] + rate*gradB
		c.bias[i] += c.vb[i]
		c.db[i] = 0
	}
}

var connectedActivationPool = []string{"Linear", "Sigmoid", "ReLU", "SELU", "Tanh", "Gaussian"}

func (c *connected) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	c.rates.Adapt(connectedRateKinds, hp.SAMMin, rng)
	changed := false
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	if c.options.Has(nn.EvolveWeights) {
		for i := range c.weights {
			for j := range c.weights[i] {
				if rng.Float64() < hp.PMutation {
					c.weights[i][j] += n.Rand() * c.rates[0]
					changed = true
				}
			}
			if rng.Float64() < hp.PMutation {
				c.bias[i] += n.Rand() * c.rates[0]
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

	if c.options.Has(nn.EvolveConnect) {
		for i := range c.active {
			for j := range c.active[i] {
				if rng.Float64() < hp.PMutation {
					c.active[i][j] = !c.active[i][j]
					changed = true
				}
			}
		}
	}

	if c.options.Has(nn.EvolveEta) && rng.Float64() < hp.EMutation {
		c.eta *= math.Exp(n.Rand() * c.rates[3])
		changed = true
	}

	if c.options.Has(nn.EvolveNeurons) && rng.Float64() < hp.SMutation {
		delta := 1 + rng.Intn(c.maxNeuronGrow)
		if rng.Intn(2) == 0 {
			delta = -delta
		}
		target := c.nOutputs + delta
		if target < c.nInit {
			target = c.nInit
		}
		if target > c.nMax {
			target = c.nMax
		}
		if target != c.nOutputs {
			c.resizeOutputs(target)
			changed = true
		}
	}

	return changed
}

func (c *connected) resizeOutputs(newOutputs int) {
	c.weights = resizeRows(c.weights, newOutputs, c.nInputs)
	c.active = resizeBoolRows(c.active, newOutputs, c.nInputs)
	c.dW = resizeRows(c.dW, newOutputs, c.nInputs)
	c.vW = resizeRows(c.vW, newOutputs, c.nInputs)
	c.bias = growVector(c.bias[:min(len(c.bias), newOutputs)], newOutputs)
	c.db = growVector(c.db[:min(len(c.db), newOutputs)], newOutputs)
	c.vb = growVector(c.vb[:min(len(c.vb), newOutputs)], newOutputs)
	c.preAct = growVector(nil, newOutputs)
	c.output = growVector(nil, newOutputs)
	c.delta = growVector(nil, newOutputs)
	c.nOutputs = newOutputs
}

// Resize adjusts NInputs to prevOutputs: weight columns for surviving
// input positions are kept, new columns start at zero.
func (c *connected) Resize(prevOutputs int) {
	for i := range c.weights {
		c.weights[i] = growVector(c.weights[i], prevOutputs)
		c.dW[i] = growVector(c.dW[i], prevOutputs)
		c.vW[i] = growVector(c.vW[i], prevOutputs)
		c.active[i] = growBoolVector(c.active[i], prevOutputs, true)
	}
	c.nInputs = prevOutputs
}

func (c *connected) Copy() nn.Layer {
	cp := *c
	cp.weights = copyMatrix(c.weights)
	cp.active = copyBoolMatrix(c.active)
	cp.bias = append([]float64(nil), c.bias...)
	cp.dW = copyMatrix(c.dW)
	cp.vW = copyMatrix(c.vW)
	cp.db = append([]float64(nil), c.db...)
	cp.vb = append([]float64(nil), c.vb...)
	cp.preAct = append([]float64(nil), c.preAct...)
	cp.output = append([]float64(nil), c.output...)
	cp.delta = append([]float64(nil), c.delta...)
	cp.rates = c.rates.Copy()
	return &cp
}

func (c *connected) Print() string {
	return fmt.Sprintf("Connected{%d -> %d, activation: %s, eta: %v}", c.nInputs, c.nOutputs, c.actName, c.eta)
}

func (c *connected) Save(w io.Writer) error {
	header := [2]int32{int32(c.nInputs), int32(c.nOutputs)}
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
	ints := [3]int32{int32(c.nInit), int32(c.nMax), int32(c.maxNeuronGrow)}
	if err := binary.Write(w, binary.LittleEndian, ints); err != nil {
		return err
	}
	for i := range c.weights {
		if err := binary.Write(w, binary.LittleEndian, c.weights[i]); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, c.bias); err != nil {
		return err
	}
	return c.rates.Save(w)
}

func (c *connected) Load(r io.Reader) error {
	var header [2]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return err
	}
	c.nInputs, c.nOutputs = int(header[0]), int(header[1])
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
	var ints [3]int32
	if err := binary.Read(r, binary.LittleEndian, &ints); err != nil {
		return err
	}
	c.nInit, c.nMax, c.maxNeuronGrow = int(ints[0]), int(ints[1]), int(ints[2])

	c.weights = make([][]float64, c.nOutputs)
	for i := range c.weights {
		c.weights[i] = make([]float64, c.nInputs)
		if err := binary.Read(r, binary.LittleEndian, c.weights[i]); err != nil {
			return err
		}
	}
	c.bias = make([]float64, c.nOutputs)
	if err := binary.Read(r, binary.LittleEndian, c.bias); err != nil {
		return err
	}
	c.rates, err = sam.Load(r)
	if err != nil {
		return err
	}

	c.active = growBoolMatrix(nil, c.nOutputs, c.nInputs, true)
	c.dW = growMatrix(nil, c.nOutputs, c.nInputs)
	c.vW = growMatrix(nil, c.nOutputs, c.nInputs)
	c.db = growVector(nil, c.nOutputs)
	c.vb = growVector(nil, c.nOutputs)
	c.preAct = growVector(nil, c.nOutputs)
	c.output = growVector(nil, c.nOutputs)
	c.delta = growVector(nil, c.nOutputs)
	return nil
}
