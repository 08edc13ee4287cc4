package condition

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

type ternarySymbol byte

const (
	symZero ternarySymbol = iota
	symOne
	symDontCare
)

// dontCareProb is the probability a newly-covered allele is set to "#"
// rather than pinned to the matching bit; not a recognized config key, so
// a fixed value grounded on the standard XCSF ternary default.
const dontCareProb = 0.33

// ternaryCondition matches a binarised input (each dimension thresholded
// at 0.5) against a ternary string over {0, 1, #}.
type ternaryCondition struct {
	alleles []ternarySymbol
}

func bit(x float64) ternarySymbol {
	if x >= 0.5 {
		return symOne
	}
	return symZero
}

func (c *ternaryCondition) Compute(input []float64) bool {
	if len(c.alleles) != len(input) {
		return false
	}
	for i, a := range c.alleles {
		if a != symDontCare && a != bit(input[i]) {
			return false
		}
	}
	return true
}

func (c *ternaryCondition) General(input []float64) bool {
	if !c.Compute(input) {
		return false
	}
	dontCares := 0
	for _, a := range c.alleles {
		if a == symDontCare {
			dontCares++
		}
	}
	return len(c.alleles) > 0 && float64(dontCares)/float64(len(c.alleles)) >= 0.5
}

func (c *ternaryCondition) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	c.alleles = make([]ternarySymbol, len(input))
	for i, x := range input {
		if rng.Float64() < dontCareProb {
			c.alleles[i] = symDontCare
		} else {
			c.alleles[i] = bit(x)
		}
	}
}

func (c *ternaryCondition) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	changed := false
	for i := range c.alleles {
		if rng.Float64() < hp.PMutation {
			c.alleles[i] = ternarySymbol(rng.Intn(3))
			changed = true
		}
	}
	return changed
}

func (c *ternaryCondition) Crossover(other Condition, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*ternaryCondition)
	if !ok || len(o.alleles) != len(c.alleles) {
		return false
	}
	changed := false
	for i := range c.alleles {
		if rng.Float64() < 0.5 {
			c.alleles[i], o.alleles[i] = o.alleles[i], c.alleles[i]
			changed = true
		}
	}
	return changed
}

func (c *ternaryCondition) Copy() Condition {
	return &ternaryCondition{alleles: append([]ternarySymbol(nil), c.alleles...)}
}

func (c *ternaryCondition) Print() string {
	s := make([]byte, len(c.alleles))
	for i, a := range c.alleles {
		switch a {
		case symZero:
			s[i] = '0'
		case symOne:
			s[i] = '1'
		default:
			s[i] = '#'
		}
	}
	return fmt.Sprintf("Ternary{%s}", s)
}

func (c *ternaryCondition) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(c.alleles))); err != nil {
		return err
	}
	raw := make([]byte, len(c.alleles))
	for i, a := range c.alleles {
		raw[i] = byte(a)
	}
	_, err := w.Write(raw)
	return err
}

func (c *ternaryCondition) Load(r io.Reader) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return err
	}
	c.alleles = make([]ternarySymbol, n)
	for i, b := range raw {
		c.alleles[i] = ternarySymbol(b)
	}
	return nil
}
