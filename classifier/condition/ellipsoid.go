package condition

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcsf-go/core/params"
)

// ellipsoidCondition matches when input falls within an axis-aligned
// ellipsoid: sum_i ((x_i - center_i) / radius_i)^2 <= 1.
type ellipsoidCondition struct {
	center, radius []float64
}

func (c *ellipsoidCondition) Compute(input []float64) bool {
	if len(input) != len(c.center) {
		return false
	}
	sum := 0.0
	for i, x := range input {
		d := (x - c.center[i]) / c.radius[i]
		sum += d * d
	}
	return sum <= 1.0
}

// General collapses to Compute for the same reason noted on
// rectangleCondition.General.
func (c *ellipsoidCondition) General(input []float64) bool {
	return c.Compute(input)
}

func (c *ellipsoidCondition) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	if len(c.center) != len(input) {
		c.center = make([]float64, len(input))
		c.radius = make([]float64, len(input))
	}
	u := distuv.Uniform{Min: 0, Max: hp.CondSmin, Src: rng}
	copy(c.center, input)
	for i := range c.radius {
		c.radius[i] = hp.CondSmin + u.Rand()
	}
}

func (c *ellipsoidCondition) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	changed := false
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for i := range c.center {
		if rng.Float64() < hp.PMutation {
			c.center[i] = clampF(c.center[i]+n.Rand()*hp.CondEta, hp.CondMin, hp.CondMax)
			changed = true
		}
		if rng.Float64() < hp.PMutation {
			r := c.radius[i] + n.Rand()*hp.CondEta
			if r < hp.CondSmin {
				r = hp.CondSmin
			}
			c.radius[i] = r
			changed = true
		}
	}
	return changed
}

func (c *ellipsoidCondition) Crossover(other Condition, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*ellipsoidCondition)
	if !ok || len(o.center) != len(c.center) {
		return false
	}
	changed := false
	for i := range c.center {
		if rng.Float64() < 0.5 {
			c.center[i], o.center[i] = o.center[i], c.center[i]
			c.radius[i], o.radius[i] = o.radius[i], c.radius[i]
			changed = true
		}
	}
	return changed
}

func (c *ellipsoidCondition) Copy() Condition {
	return &ellipsoidCondition{
		center: append([]float64(nil), c.center...),
		radius: append([]float64(nil), c.radius...),
	}
}

func (c *ellipsoidCondition) Print() string {
	return fmt.Sprintf("Ellipsoid{center: %v, radius: %v}", c.center, c.radius)
}

func (c *ellipsoidCondition) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(c.center))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.center); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, c.radius)
}

func (c *ellipsoidCondition) Load(r io.Reader) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	c.center = make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, c.center); err != nil {
		return err
	}
	c.radius = make([]float64, n)
	return binary.Read(r, binary.LittleEndian, c.radius)
}
