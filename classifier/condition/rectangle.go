package condition

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcsf-go/core/params"
)

// rectangleCondition is an axis-aligned hyper-rectangle: matches when
// every input dimension falls within [lower_i, upper_i].
type rectangleCondition struct {
	lower, upper []float64
}

func (c *rectangleCondition) Compute(input []float64) bool {
	if len(input) != len(c.lower) {
		return false
	}
	for i, x := range input {
		if x < c.lower[i] || x > c.upper[i] {
			return false
		}
	}
	return true
}

// General reports whether the rectangle matches input; distinguishing
// "general" rectangles from merely-matching ones would need the
// [CondMin, CondMax] scale, which General's signature (input-only,
// matching the Condition interface) does not carry, so it collapses to
// Compute here.
func (c *rectangleCondition) General(input []float64) bool {
	return c.Compute(input)
}

func (c *rectangleCondition) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	if len(c.lower) != len(input) {
		c.lower = make([]float64, len(input))
		c.upper = make([]float64, len(input))
	}
	u := distuv.Uniform{Min: 0, Max: hp.CondSmin, Src: rng}
	for i, x := range input {
		spread := hp.CondSmin + u.Rand()
		c.lower[i] = clampF(x-spread, hp.CondMin, hp.CondMax)
		c.upper[i] = clampF(x+spread, hp.CondMin, hp.CondMax)
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c *rectangleCondition) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	changed := false
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for i := range c.lower {
		if rng.Float64() < hp.PMutation {
			c.lower[i] = clampF(c.lower[i]+n.Rand()*hp.CondEta, hp.CondMin, hp.CondMax)
			changed = true
		}
		if rng.Float64() < hp.PMutation {
			c.upper[i] = clampF(c.upper[i]+n.Rand()*hp.CondEta, hp.CondMin, hp.CondMax)
			changed = true
		}
		if c.lower[i] > c.upper[i] {
			c.lower[i], c.upper[i] = c.upper[i], c.lower[i]
		}
	}
	return changed
}

func (c *rectangleCondition) Crossover(other Condition, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*rectangleCondition)
	if !ok || len(o.lower) != len(c.lower) {
		return false
	}
	changed := false
	for i := range c.lower {
		if rng.Float64() < 0.5 {
			c.lower[i], o.lower[i] = o.lower[i], c.lower[i]
			c.upper[i], o.upper[i] = o.upper[i], c.upper[i]
			changed = true
		}
	}
	return changed
}

func (c *rectangleCondition) Copy() Condition {
	return &rectangleCondition{
		lower: append([]float64(nil), c.lower...),
		upper: append([]float64(nil), c.upper...),
	}
}

func (c *rectangleCondition) Print() string {
	return fmt.Sprintf("Rectangle{lower: %v, upper: %v}", c.lower, c.upper)
}

func (c *rectangleCondition) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(c.lower))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.lower); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, c.upper)
}

func (c *rectangleCondition) Load(r io.Reader) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	c.lower = make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, c.lower); err != nil {
		return err
	}
	c.upper = make([]float64, n)
	return binary.Read(r, binary.LittleEndian, c.upper)
}
