package nn

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// Net is an ordered sequence of Layers (array of owning handles, not a
// linked list — see DESIGN.md on this choice). Index
// 0 is the tail (first, input-facing) layer; the last index is the head
// (output-facing) layer, matching §4.2's terminology.
type Net struct {
	layers []Layer
}

func newNet(layers []Layer) *Net {
	return &Net{layers: layers}
}

// NewNet wraps an already-built, already-conformable slice of Layers into
// a Net without going through BuildNet's LayerArgs validation. Used when
// callers construct concrete layers directly (classifier substrates,
// tests) rather than from a config-driven chain.
func NewNet(layers []Layer) (*Net, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("nn: empty layer chain")
	}
	for i := 1; i < len(layers); i++ {
		if layers[i].NInputs() != layers[i-1].NOutputs() {
			return nil, fmt.Errorf("nn: layer %d expects %d inputs, layer %d produces %d", i, layers[i].NInputs(), i-1, layers[i-1].NOutputs())
		}
	}
	return newNet(layers), nil
}

func (n *Net) tail() Layer { return n.layers[0] }
func (n *Net) head() Layer { return n.layers[len(n.layers)-1] }

// NInputs is the tail layer's input count.
func (n *Net) NInputs() int { return n.tail().NInputs() }

// NOutputs is the head layer's output count.
func (n *Net) NOutputs() int { return n.head().NOutputs() }

// Output returns the head layer's output buffer from the last Propagate.
func (n *Net) Output() []float64 { return n.head().Output() }

// NLayers returns the number of layers currently in the net.
func (n *Net) NLayers() int { return len(n.layers) }

// Layers exposes the underlying slice, tail-to-head order. Callers must
// not retain it across a structural mutation (Insert/Remove/Mutate may
// replace the backing array).
func (n *Net) Layers() []Layer { return n.layers }

// Insert adds l at position (0 == head). Insertion at the head updates
// the cached n_outputs implicitly (Output()/NOutputs() always read
// through to the current head); insertion at the tail likewise updates
// n_inputs through to the current tail.
func (n *Net) Insert(l Layer, position int) {
	idx := len(n.layers) - position
	if idx < 0 {
		idx = 0
	}
	if idx > len(n.layers) {
		idx = len(n.layers)
	}
	n.layers = append(n.layers, nil)
	copy(n.layers[idx+1:], n.layers[idx:])
	n.layers[idx] = l
}

// Remove deletes the layer at position (0 == head). Refuses to remove the
// sole remaining layer.
func (n *Net) Remove(position int) error {
	if len(n.layers) <= 1 {
		return fmt.Errorf("nn: cannot remove the sole remaining layer")
	}
	idx := len(n.layers) - 1 - position
	if idx < 0 || idx >= len(n.layers) {
		return fmt.Errorf("nn: remove position %d out of range", position)
	}
	n.layers = append(n.layers[:idx], n.layers[idx+1:]...)
	return nil
}

// Propagate walks tail to head, feeding each layer's output as the next
// layer's input, and returns the head's output buffer.
func (n *Net) Propagate(input []float64) []float64 {
	cur := input
	for _, l := range n.layers {
		l.Forward(cur)
		cur = l.Output()
	}
	return cur
}

// Learn runs the four-phase backprop/update sequence from §4.2:
// zero every delta, seed the head's delta as truth-output, walk
// head-to-tail running Backward, then walk tail-to-head running Update.
func (n *Net) Learn(truth, input []float64, eta float64) {
	for _, l := range n.layers {
		d := l.Delta()
		for i := range d {
			d[i] = 0
		}
	}

	headDelta := n.head().Delta()
	output := n.head().Output()
	for i := range headDelta {
		headDelta[i] = truth[i] - output[i]
	}

	for i := len(n.layers) - 1; i >= 0; i-- {
		var prevDelta []float64
		if i > 0 {
			prevDelta = n.layers[i-1].Delta()
		}
		n.layers[i].Backward(prevDelta)
	}

	for i := 0; i < len(n.layers); i++ {
		n.layers[i].Update(eta)
	}
	_ = input // input is implicit via each layer's own cached Forward state
}

// Mutate walks tail to head. Whenever a layer's NOutputs changes as a
// result of its own mutation, the following layer is resized before being
// mutated in turn. Returns whether any layer changed.
func (n *Net) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	changed := false
	for i, l := range n.layers {
		before := l.NOutputs()
		if l.Mutate(hp, rng) {
			changed = true
		}
		if i+1 < len(n.layers) && l.NOutputs() != before {
			n.layers[i+1].Resize(l.NOutputs())
		}
	}
	return changed
}

// Resize is an independent repair pass: every layer's NInputs is brought
// back in line with its upstream neighbour's NOutputs without mutating
// anything else.
func (n *Net) Resize() {
	for i := 1; i < len(n.layers); i++ {
		if n.layers[i].NInputs() != n.layers[i-1].NOutputs() {
			n.layers[i].Resize(n.layers[i-1].NOutputs())
		}
	}
}

// Copy produces a deep copy: mutating the copy never observably changes
// the original.
func (n *Net) Copy() *Net {
	out := make([]Layer, len(n.layers))
	for i, l := range n.layers {
		out[i] = l.Copy()
	}
	return newNet(out)
}

// Save writes (n_layers, n_inputs, n_outputs) then, for each layer in
// tail-to-head order, the layer's kind tag followed by its own payload.
func (n *Net) Save(w io.Writer) error {
	header := [3]int32{int32(len(n.layers)), int32(n.NInputs()), int32(n.NOutputs())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("nn: writing net header: %w", err)
	}
	for i, l := range n.layers {
		if err := binary.Write(w, binary.LittleEndian, int32(l.Kind())); err != nil {
			return fmt.Errorf("nn: writing layer %d kind: %w", i, err)
		}
		if err := l.Save(w); err != nil {
			return fmt.Errorf("nn: writing layer %d payload: %w", i, err)
		}
	}
	return nil
}

// Load mirrors Save exactly, rebuilding the layer slice by reading each
// kind tag and dispatching to that kind's registered blank constructor
// before calling its own Load.
func Load(r io.Reader) (*Net, error) {
	var header [3]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("nn: reading net header: %w", err)
	}
	nLayers, nInputs, nOutputs := int(header[0]), int(header[1]), int(header[2])
	if nLayers <= 0 {
		return nil, fmt.Errorf("nn: invalid layer count %d in stream", nLayers)
	}

	layerList := make([]Layer, 0, nLayers)
	for i := 0; i < nLayers; i++ {
		var kindRaw int32
		if err := binary.Read(r, binary.LittleEndian, &kindRaw); err != nil {
			return nil, fmt.Errorf("nn: reading layer %d kind: %w", i, err)
		}
		ctors, err := lookup(LayerKind(kindRaw))
		if err != nil {
			return nil, err
		}
		l := ctors.blank()
		if err := l.Load(r); err != nil {
			return nil, fmt.Errorf("nn: reading layer %d payload: %w", i, err)
		}
		layerList = append(layerList, l)
	}

	net := newNet(layerList)
	if net.NInputs() != nInputs || net.NOutputs() != nOutputs {
		return nil, fmt.Errorf("nn: stream header (in=%d, out=%d) disagrees with reloaded layers (in=%d, out=%d)", nInputs, nOutputs, net.NInputs(), net.NOutputs())
	}
	return net, nil
}

// Print renders every layer's Print(), one per line, tail to head.
func (n *Net) Print() string {
	s := ""
	for i, l := range n.layers {
		if i > 0 {
			s += "\n"
		}
		s += l.Print()
	}
	return s
}
