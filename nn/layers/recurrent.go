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
	nn.Register(nn.Recurrent,
		func(a nn.LayerArgs) (nn.Layer, error) { return newRecurrent(a) },
		func() nn.Layer { return &recurrent{} },
	)
}

// recurrent is a single Elman-style hidden layer: h_t = act(Wx*x_t +
// Wh*h_{t-1} + b). Hidden state persists across Forward calls (one call
// per environment time step); gradients are truncated to the current
// step (Wh is held fixed during Backward, not unrolled through history).
type recurrent struct {
	nInputs, nOutputs int

	wx [][]float64 // nOutputs x nInputs
	wh [][]float64 // nOutputs x nOutputs
	bias []float64

	actName string
	act     activation.ActivationFunction

	eta      float64
	momentum float64
	decay    float64
	options  nn.LayerOptions

	hidden    []float64 // h_{t-1}, persists across calls
	lastInput []float64
	preAct    []float64
	output    []float64
	delta     []float64

	dWx, vWx [][]float64
	db, vb   []float64

	rates sam.Rates
}

func newRecurrent(a nn.LayerArgs) (nn.Layer, error) {
	if a.NInputs <= 0 || a.NOutputs <= 0 {
		return nil, fmt.Errorf("recurrent layer requires positive NInputs/NOutputs, got %d/%d", a.NInputs, a.NOutputs)
	}
	act, err := activation.DynamicActivation(a.Activation)
	if err != nil {
		return nil, err
	}
	r := &recurrent{
		nInputs: a.NInputs, nOutputs: a.NOutputs,
		actName: a.Activation, act: act,
		eta: a.Eta, momentum: a.Momentum, decay: a.Decay,
		options: a.Options,
		rates:   sam.New(4, 0.05),
	}
	r.Init()
	return r, nil
}

func (r *recurrent) Kind() nn.LayerKind      { return nn.Recurrent }
func (r *recurrent) NInputs() int            { return r.nInputs }
func (r *recurrent) NOutputs() int           { return r.nOutputs }
func (r *recurrent) Options() nn.LayerOptions { return r.options }
func (r *recurrent) Output() []float64       { return r.output }
func (r *recurrent) Delta() []float64        { return r.delta }

func (r *recurrent) Init() {
	r.wx = growMatrix(r.wx, r.nOutputs, r.nInputs)
	r.wh = growMatrix(r.wh, r.nOutputs, r.nOutputs)
	r.bias = growVector(r.bias, r.nOutputs)
	r.dWx = growMatrix(r.dWx, r.nOutputs, r.nInputs)
	r.vWx = growMatrix(r.vWx, r.nOutputs, r.nInputs)
	r.db = growVector(r.db, r.nOutputs)
	r.vb = growVector(r.vb, r.nOutputs)
	r.hidden = growVector(r.hidden, r.nOutputs)
	r.preAct = growVector(r.preAct, r.nOutputs)
	r.output = growVector(r.output, r.nOutputs)
	r.delta = growVector(r.delta, r.nOutputs)
}

func (r *recurrent) Rand(rng *rand.Rand) {
	n := distuv.Normal{Mu: 0, Sigma: 1.0 / float64(r.nInputs+r.nOutputs), Src: rng}
	for i := range r.wx {
		for j := range r.wx[i] {
			r.wx[i][j] = n.Rand()
		}
		for j := range r.wh[i] {
			r.wh[i][j] = n.Rand()
		}
		r.bias[i] = 0
		r.hidden[i] = 0
	}
}

func (r *recurrent) Forward(input []float64) {
	r.lastInput = input
	prevHidden := append([]float64(nil), r.hidden...)
	for i := 0; i < r.nOutputs; i++ {
		sum := r.bias[i]
		for j := 0; j < r.nInputs; j++ {
			sum += r.wx[i][j] * input[j]
		}
		for j := 0; j < r.nOutputs; j++ {
			sum += r.wh[i][j] * prevHidden[j]
		}
		r.preAct[i] = sum
		r.output[i] = r.act.Apply(sum)
	}
	copy(r.hidden, r.output)
}

func (r *recurrent) Backward(prevDelta []float64) {
	for i := 0; i < r.nOutputs; i++ {
		dLdZ := r.delta[i] * r.act.Derivative(r.preAct[i])
		r.db[i] += dLdZ
		for j := 0; j < r.nInputs; j++ {
			r.dWx[i][j] += dLdZ * r.lastInput[j]
			if prevDelta != nil {
				prevDelta[j] += dLdZ * r.wx[i][j]
			}
		}
	}
}

func (r *recurrent) Update(eta float64) {
	rate := eta
	if r.options.Has(nn.EvolveEta) {
		rate = r.eta
	}
	for i := 0; i < r.nOutputs; i++ {
		for j := 0; j < r.nInputs; j++ {
			grad := r.dWx[i][j] - r.decay*r.wx[i][j]
			r.vWx[i][j] = r.momentum*r.vWx[i][j] + rate*grad
			r.wx[i][j] += r.vWx[i][j]
			r.dWx[i][j] = 0
		}
		gradB := r.db[i] - r.decay*r.bias[i]
		r.vb[i] = r.momentum*r.vb[i] + rate*gradB
		r.bias[i] += r.vb[i]
		r.db[i] = 0
	}
}

func (r *recurrent) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	r.rates.Adapt(connectedRateKinds, hp.SAMMin, rng)
	changed := false
	if r.options.Has(nn.EvolveWeights) {
		n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
		for i := range r.wx {
			for j := range r.wx[i] {
				if rng.Float64() < hp.PMutation {
					r.wx[i][j] += n.Rand() * r.rates[0]
					changed = true
				}
			}
			for j := range r.wh[i] {
				if rng.Float64() < hp.PMutation {
					r.wh[i][j] += n.Rand() * r.rates[0]
					changed = true
				}
			}
		}
	}
	return changed
}

// Resize adjusts NInputs (the feed-forward input width); the recurrent
// (hidden-to-hidden) weights are untouched since NOutputs does not change.
func (r *recurrent) Resize(prevOutputs int) {
	for i := range r.wx {
		r.wx[i] = growVector(r.wx[i], prevOutputs)
		r.dWx[i] = growVector(r.dWx[i], prevOutputs)
		r.vWx[i] = growVector(r.vWx[i], prevOutputs)
	}
	r.nInputs = prevOutputs
}

func (r *recurrent) Copy() nn.Layer {
	cp := *r
	cp.wx = copyMatrix(r.wx)
	cp.wh = copyMatrix(r.wh)
	cp.bias = append([]float64(nil), r.bias...)
	cp.dWx = copyMatrix(r.dWx)
	cp.vWx = copyMatrix(r.vWx)
	cp.db = append([]float64(nil), r.db...)
	cp.vb = append([]float64(nil), r.vb...)
	cp.hidden = append([]float64(nil), r.hidden...)
	cp.preAct = append([]float64(nil), r.preAct...)
	cp.output = append([]float64(nil), r.output...)
	cp.delta = append([]float64(nil), r.delta...)
	cp.rates = r.rates.Copy()
	return &cp
}

func (r *recurrent) Print() string {
	return fmt.Sprintf("Recurrent{%d -> %d, activation: %s}", r.nInputs, r.nOutputs, r.actName)
}

func (r *recurrent) Save(w io.Writer) error {
	header := [2]int32{int32(r.nInputs), int32(r.nOutputs)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := writeString(w, r.actName); err != nil {
		return err
	}
	scalars := [3]float64{r.eta, r.momentum, r.decay}
	if err := binary.Write(w, binary.LittleEndian, scalars); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.options); err != nil {
		return err
	}
	for _, row := range r.wx {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	for _, row := range r.wh {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, r.bias); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.hidden); err != nil {
		return err
	}
	return r.rates.Save(w)
}

func (r *recurrent) Load(rd io.Reader) error {
	var header [2]int32
	if err := binary.Read(rd, binary.LittleEndian, &header); err != nil {
		return err
	}
	r.nInputs, r.nOutputs = int(header[0]), int(header[1])
	name, err := readString(rd)
	if err != nil {
		return err
	}
	r.actName = name
	r.act, err = activation.DynamicActivation(name)
	if err != nil {
		return err
	}
	var scalars [3]float64
	if err := binary.Read(rd, binary.LittleEndian, &scalars); err != nil {
		return err
	}
	r.eta, r.momentum, r.decay = scalars[0], scalars[1], scalars[2]
	if err := binary.Read(rd, binary.LittleEndian, &r.options); err != nil {
		return err
	}

	r.wx = make([][]float64, r.nOutputs)
	for i := range r.wx {
		r.wx[i] = make([]float64, r.nInputs)
		if err := binary.Read(rd, binary.LittleEndian, r.wx[i]); err != nil {
			return err
		}
	}
	r.wh = make([][]float64, r.nOutputs)
	for i := range r.wh {
		r.wh[i] = make([]float64, r.nOutputs)
		if err := binary.Read(rd, binary.LittleEndian, r.wh[i]); err != nil {
			return err
		}
	}
	r.bias = make([]float64, r.nOutputs)
	if err := binary.Read(rd, binary.LittleEndian, r.bias); err != nil {
		return err
	}
	r.hidden = make([]float64, r.nOutputs)
	if err := binary.Read(rd, binary.LittleEndian, r.hidden); err != nil {
		return err
	}
	r.rates, err = sam.Load(rd)
	if err != nil {
		return err
	}

	r.dWx = growMatrix(nil, r.nOutputs, r.nInputs)
	r.vWx = growMatrix(nil, r.nOutputs, r.nInputs)
	r.db = growVector(nil, r.nOutputs)
	r.vb = growVector(nil, r.nOutputs)
	r.preAct = growVector(nil, r.nOutputs)
	r.output = growVector(nil, r.nOutputs)
	r.delta = growVector(nil, r.nOutputs)
	return nil
}
