package layers

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcsf-go/core/nn"
	"github.com/xcsf-go/core/params"
	"github.com/xcsf-go/core/sam"
)

func init() {
	nn.Register(nn.LSTM,
		func(a nn.LayerArgs) (nn.Layer, error) { return newLSTM(a) },
		func() nn.Layer { return &lstm{} },
	)
}

// lstm is a single standard LSTM cell: input, forget, output and candidate
// gates each a Connected-style unit over [x_t, h_{t-1}]. Cell and hidden
// state persist across Forward calls (one call per environment time
// step); as with recurrent, the backward pass is truncated to the current
// step rather than unrolled through history.
type lstm struct {
	nInputs, nOutputs int

	wi, wf, wo, wg [][]float64 // nOutputs x (nInputs+nOutputs), gate weights
	bi, bf, bo, bg []float64

	eta, momentum, decay float64
	options               nn.LayerOptions

	cell, hidden []float64 // persist across calls

	// cached gate activations from the last Forward, needed by Backward
	iGate, fGate, oGate, gGate, cellNext, tanhCell []float64
	lastInput                                      []float64
	prevHidden, prevCell                           []float64

	output []float64
	delta  []float64

	dWi, dWf, dWo, dWg [][]float64
	dbi, dbf, dbo, dbg []float64

	rates sam.Rates
}

func newLSTM(a nn.LayerArgs) (nn.Layer, error) {
	if a.NInputs <= 0 || a.NOutputs <= 0 {
		return nil, fmt.Errorf("lstm layer requires positive NInputs/NOutputs, got %d/%d", a.NInputs, a.NOutputs)
	}
	l := &lstm{
		nInputs: a.NInputs, nOutputs: a.NOutputs,
		eta: a.Eta, momentum: a.Momentum, decay: a.Decay,
		options: a.Options,
		rates:   sam.New(4, 0.05),
	}
	l.Init()
	return l, nil
}

func (l *lstm) Kind() nn.LayerKind      { return nn.LSTM }
func (l *lstm) NInputs() int            { return l.nInputs }
func (l *lstm) NOutputs() int           { return l.nOutputs }
func (l *lstm) Options() nn.LayerOptions { return l.options }
func (l *lstm) Output() []float64       { return l.output }
func (l *lstm) Delta() []float64        { return l.delta }

func (l *lstm) gateWidth() int { return l.nInputs + l.nOutputs }

func (l *lstm) Init() {
	w := l.gateWidth()
	l.wi = growMatrix(l.wi, l.nOutputs, w)
	l.wf = growMatrix(l.wf, l.nOutputs, w)
	l.wo = growMatrix(l.wo, l.nOutputs, w)
	l.wg = growMatrix(l.wg, l.nOutputs, w)
	l.bi = growVector(l.bi, l.nOutputs)
	l.bf = growVector(l.bf, l.nOutputs)
	l.bo = growVector(l.bo, l.nOutputs)
	l.bg = growVector(l.bg, l.nOutputs)

	l.dWi = growMatrix(l.dWi, l.nOutputs, w)
	l.dWf = growMatrix(l.dWf, l.nOutputs, w)
	l.dWo = growMatrix(l.dWo, l.nOutputs, w)
	l.dWg = growMatrix(l.dWg, l.nOutputs, w)
	l.dbi = growVector(l.dbi, l.nOutputs)
	l.dbf = growVector(l.dbf, l.nOutputs)
	l.dbo = growVector(l.dbo, l.nOutputs)
	l.dbg = growVector(l.dbg, l.nOutputs)

	l.cell = growVector(l.cell, l.nOutputs)
	l.hidden = growVector(l.hidden, l.nOutputs)
	l.iGate = growVector(l.iGate, l.nOutputs)
	l.fGate = growVector(l.fGate, l.nOutputs)
	l.oGate = growVector(l.oGate, l.nOutputs)
	l.gGate = growVector(l.gGate, l.nOutputs)
	l.cellNext = growVector(l.cellNext, l.nOutputs)
	l.tanhCell = growVector(l.tanhCell, l.nOutputs)
	l.output = growVector(l.output, l.nOutputs)
	l.delta = growVector(l.delta, l.nOutputs)
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func (l *lstm) Rand(rng *rand.Rand) {
	n := distuv.Normal{Mu: 0, Sigma: 1.0 / float64(l.gateWidth()), Src: rng}
	for _, w := range [][][]float64{l.wi, l.wf, l.wo, l.wg} {
		for i := range w {
			for j := range w[i] {
				w[i][j] = n.Rand()
			}
		}
	}
	for i := range l.bi {
		l.bf[i] = 1 // forget gate bias initialized positive, standard LSTM practice
		l.bi[i], l.bo[i], l.bg[i] = 0, 0, 0
		l.cell[i], l.hidden[i] = 0, 0
	}
}

func concatInputHidden(x, h []float64) []float64 {
	out := make([]float64, len(x)+len(h))
	copy(out, x)
	copy(out[len(x):], h)
	return out
}

func (l *lstm) Forward(input []float64) {
	l.lastInput = input
	l.prevHidden = append([]float64(nil), l.hidden...)
	l.prevCell = append([]float64(nil), l.cell...)
	z := concatInputHidden(input, l.prevHidden)

	for i := 0; i < l.nOutputs; i++ {
		sumI, sumF, sumO, sumG := l.bi[i], l.bf[i], l.bo[i], l.bg[i]
		for j, zj := range z {
			sumI += l.wi[i][j] * zj
			sumF += l.wf[i][j] * zj
			sumO += l.wo[i][j] * zj
			sumG += l.wg[i][j] * zj
		}
		l.iGate[i] = sigmoid(sumI)
		l.fGate[i] = sigmoid(sumF)
		l.oGate[i] = sigmoid(sumO)
		l.gGate[i] = math.Tanh(sumG)
		l.cellNext[i] = l.fGate[i]*l.prevCell[i] + l.iGate[i]*l.gGate[i]
		l.tanhCell[i] = math.Tanh(l.cellNext[i])
		l.output[i] = l.oGate[i] * l.tanhCell[i]
	}
	copy(l.cell, l.cellNext)
	copy(l.hidden, l.output)
}

// Backward is truncated to the current step: gradients flow into the
// current input x_t only, not further back through h_{t-1}/c_{t-1}.
func (l *lstm) Backward(prevDelta []float64) {
	for i := 0; i < l.nOutputs; i++ {
		dOut := l.delta[i]
		dO := dOut * l.tanhCell[i] * l.oGate[i] * (1 - l.oGate[i])
		dC := dOut * l.oGate[i] * (1 - l.tanhCell[i]*l.tanhCell[i])
		dI := dC * l.gGate[i] * l.iGate[i] * (1 - l.iGate[i])
		dF := dC * l.prevCell[i] * l.fGate[i] * (1 - l.fGate[i])
		dG := dC * l.iGate[i] * (1 - l.gGate[i]*l.gGate[i])

		l.dbi[i] += dI
		l.dbf[i] += dF
		l.dbo[i] += dO
		l.dbg[i] += dG

		for j := 0; j < l.nInputs; j++ {
			x := l.lastInput[j]
			l.dWi[i][j] += dI * x
			l.dWf[i][j] += dF * x
			l.dWo[i][j] += dO * x
			l.dWg[i][j] += dG * x
			if prevDelta != nil {
				prevDelta[j] += dI*l.wi[i][j] + dF*l.wf[i][j] + dO*l.wo[i][j] + dG*l.wg[i][j]
			}
		}
		for j := 0; j < l.nOutputs; j++ {
			h := l.nInputs + j
			l.dWi[i][h] += dI * l.prevHidden[j]
			l.dWf[i][h] += dF * l.prevHidden[j]
			l.dWo[i][h] += dO * l.prevHidden[j]
			l.dWg[i][h] += dG * l.prevHidden[j]
		}
	}
}

// Update applies a plain gradient step with weight decay to every gate.
// The layer's momentum value is stored and saved but not applied: there is
// no velocity term.
func (l *lstm) Update(eta float64) {
	rate := eta
	if l.options.Has(nn.EvolveEta) {
		rate = l.eta
	}
	updateGate := func(w, dW [][]float64, b, db []float64) {
		for i := range w {
			for j := range w[i] {
				w[i][j] += rate * (dW[i][j] - l.decay*w[i][j])
				dW[i][j] = 0
			}
			b[i] += rate * (db[i] - l.decay*b[i])
			db[i] = 0
		}
	}
	updateGate(l.wi, l.dWi, l.bi, l.dbi)
	updateGate(l.wf, l.dWf, l.bf, l.dbf)
	updateGate(l.wo, l.dWo, l.bo, l.dbo)
	updateGate(l.wg, l.dWg, l.bg, l.dbg)
}

func (l *lstm) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	l.rates.Adapt(connectedRateKinds, hp.SAMMin, rng)
	changed := false
	if l.options.Has(nn.EvolveWeights) {
		n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
		for _, w := range [][][]float64{l.wi, l.wf, l.wo, l.wg} {
			for i := range w {
				for j := range w[i] {
					if rng.Float64() < hp.PMutation {
						w[i][j] += n.Rand() * l.rates[0]
						changed = true
					}
				}
			}
		}
	}
	return changed
}

// Resize adjusts NInputs, growing every gate's weight matrix by the
// number of new input columns (inserted just before the hidden-state
// columns, which stay at the matrix's tail).
func (l *lstm) Resize(prevOutputs int) {
	oldInputs := l.nInputs
	l.nInputs = prevOutputs
	newWidth := l.gateWidth()
	for _, w := range [][][]float64{l.wi, l.wf, l.wo, l.wg} {
		for i := range w {
			row := make([]float64, newWidth)
			copy(row, w[i][:oldInputs])
			copy(row[l.nInputs:], w[i][oldInputs:])
			w[i] = row
		}
	}
	for _, dW := range [][][]float64{l.dWi, l.dWf, l.dWo, l.dWg} {
		for i := range dW {
			dW[i] = make([]float64, newWidth)
		}
	}
}

func (l *lstm) Copy() nn.Layer {
	cp := *l
	cp.wi, cp.wf, cp.wo, cp.wg = copyMatrix(l.wi), copyMatrix(l.wf), copyMatrix(l.wo), copyMatrix(l.wg)
	cp.dWi, cp.dWf, cp.dWo, cp.dWg = copyMatrix(l.dWi), copyMatrix(l.dWf), copyMatrix(l.dWo), copyMatrix(l.dWg)
	cp.bi, cp.bf, cp.bo, cp.bg = append([]float64(nil), l.bi...), append([]float64(nil), l.bf...), append([]float64(nil), l.bo...), append([]float64(nil), l.bg...)
	cp.dbi, cp.dbf, cp.dbo, cp.dbg = append([]float64(nil), l.dbi...), append([]float64(nil), l.dbf...), append([]float64(nil), l.dbo...), append([]float64(nil), l.dbg...)
	cp.cell, cp.hidden = append([]float64(nil), l.cell...), append([]float64(nil), l.hidden...)
	cp.output, cp.delta = append([]float64(nil), l.output...), append([]float64(nil), l.delta...)
	cp.rates = l.rates.Copy()
	return &cp
}

func (l *lstm) Print() string {
	return fmt.Sprintf("LSTM{%d -> %d}", l.nInputs, l.nOutputs)
}

func (l *lstm) Save(w io.Writer) error {
	header := [2]int32{int32(l.nInputs), int32(l.nOutputs)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	scalars := [3]float64{l.eta, l.momentum, l.decay}
	if err := binary.Write(w, binary.LittleEndian, scalars); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, l.options); err != nil {
		return err
	}
	for _, gate := range [][][]float64{l.wi, l.wf, l.wo, l.wg} {
		for _, row := range gate {
			if err := binary.Write(w, binary.LittleEndian, row); err != nil {
				return err
			}
		}
	}
	for _, b := range [][]float64{l.bi, l.bf, l.bo, l.bg} {
		if err := binary.Write(w, binary.LittleEndian, b); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, l.cell); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, l.hidden); err != nil {
		return err
	}
	return l.rates.Save(w)
}

func (l *lstm) Load(r io.Reader) error {
	var header [2]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return err
	}
	l.nInputs, l.nOutputs = int(header[0]), int(header[1])
	var scalars [3]float64
	if err := binary.Read(r, binary.LittleEndian, &scalars); err != nil {
		return err
	}
	l.eta, l.momentum, l.decay = scalars[0], scalars[1], scalars[2]
	if err := binary.Read(r, binary.LittleEndian, &l.options); err != nil {
		return err
	}

	w := l.gateWidth()
	readGate := func() [][]float64 {
		g := make([][]float64, l.nOutputs)
		for i := range g {
			g[i] = make([]float64, w)
		}
		return g
	}
	l.wi, l.wf, l.wo, l.wg = readGate(), readGate(), readGate(), readGate()
	for _, gate := range [][][]float64{l.wi, l.wf, l.wo, l.wg} {
		for i := range gate {
			if err := binary.Read(r, binary.LittleEndian, gate[i]); err != nil {
				return err
			}
		}
	}
	l.bi, l.bf, l.bo, l.bg = make([]float64, l.nOutputs), make([]float64, l.nOutputs), make([]float64, l.nOutputs), make([]float64, l.nOutputs)
	for _, b := range [][]float64{l.bi, l.bf, l.bo, l.bg} {
		if err := binary.Read(r, binary.LittleEndian, b); err != nil {
			return err
		}
	}
	l.cell = make([]float64, l.nOutputs)
	if err := binary.Read(r, binary.LittleEndian, l.cell); err != nil {
		return err
	}
	l.hidden = make([]float64, l.nOutputs)
	if err := binary.Read(r, binary.LittleEndian, l.hidden); err != nil {
		return err
	}
	rates, err := sam.Load(r)
	if err != nil {
		return err
	}
	l.rates = rates

	l.dWi, l.dWf, l.dWo, l.dWg = readGate(), readGate(), readGate(), readGate()
	l.dbi, l.dbf, l.dbo, l.dbg = make([]float64, l.nOutputs), make([]float64, l.nOutputs), make([]float64, l.nOutputs), make([]float64, l.nOutputs)
	l.iGate, l.fGate, l.oGate, l.gGate = make([]float64, l.nOutputs), make([]float64, l.nOutputs), make([]float64, l.nOutputs), make([]float64, l.nOutputs)
	l.cellNext, l.tanhCell = make([]float64, l.nOutputs), make([]float64, l.nOutputs)
	l.output = make([]float64, l.nOutputs)
	l.delta = make([]float64, l.nOutputs)
	return nil
}
