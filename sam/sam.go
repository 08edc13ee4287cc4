// Package sam implements self-adaptive mutation: each individual (GP tree,
// NN layer) carries a small fixed-size vector of mutation rates that are
// themselves perturbed before being used to drive mutation, per §4.3 of the
// representation-layer specification.
package sam

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Kind selects the perturbation operator applied to one rate slot.
type Kind int

const (
	// LogNormal multiplies the rate by exp(N(0, 1)), the default operator
	// for most rate slots.
	LogNormal Kind = iota
	// RateSelect picks uniformly from a small discrete ladder of rates,
	// used for slots where only a handful of sanctioned step sizes make
	// sense (e.g. the GP point-mutation probability).
	RateSelect
)

// rateLadder is the discrete pool RateSelect draws from.
var rateLadder = []float64{0.0001, 0.001, 0.01, 0.1, 1.0}

// Rates is the self-adapting mutation-rate vector that travels with one
// individual. Its length is fixed at construction by the caller (one slot
// for a GP tree, four for an NN layer) and never changes thereafter; the
// SAM_NUM setting is not consulted.
type Rates []float64

// New allocates a Rates vector of length n, every slot initialised to
// init (the caller's starting rate, typically P_MUTATION/F_MUTATION/etc).
func New(n int, init float64) Rates {
	r := make(Rates, n)
	for i := range r {
		r[i] = init
	}
	return r
}

// Adapt perturbs every rate in place according to kinds (indexed
// parallel to r; a kinds slice shorter than r reuses LogNormal for the
// remaining slots) and clamps the result to [min, 1].
func (r Rates) Adapt(kinds []Kind, min float64, rng *rand.Rand) {
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for i := range r {
		kind := LogNormal
		if i < len(kinds) {
			kind = kinds[i]
		}
		switch kind {
		case RateSelect:
			r[i] = rateLadder[rng.Intn(len(rateLadder))]
		default:
			r[i] *= math.Exp(n.Rand())
		}
		if r[i] < min {
			r[i] = min
		} else if r[i] > 1 {
			r[i] = 1
		}
	}
}

// Copy returns a deep copy of r.
func (r Rates) Copy() Rates {
	cp := make(Rates, len(r))
	copy(cp, r)
	return cp
}

// Save writes the rate vector as a length-prefixed array of float64s.
func (r Rates) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(r))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, []float64(r))
}

// Load reads a rate vector written by Save and returns it as a new Rates.
func Load(r io.Reader) (Rates, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	rates := make(Rates, n)
	if err := binary.Read(r, binary.LittleEndian, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
