package condition

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/gp"
	"github.com/xcsf-go/core/params"
)

// gpThreshold is the root-value cutoff a GP tree's output must clear to
// match; zero so either sign of constant/weight draw can satisfy it.
const gpThreshold = 0.0

// gpCoverMaxAttempts bounds the regrow loop Cover runs before giving up;
// the substrate's own convergence is otherwise unbounded per §4.4, but a
// hard cap keeps a misconfigured run from spinning forever.
const gpCoverMaxAttempts = 1000

// gpTreeCondition matches when its wrapped GP tree's evaluation clears
// gpThreshold.
type gpTreeCondition struct {
	tree    *gp.Tree
	consts  params.GPConstants
	nInputs int
}

func newGPTreeCondition(consts params.GPConstants) *gpTreeCondition {
	return &gpTreeCondition{consts: consts}
}

func (c *gpTreeCondition) Compute(input []float64) bool {
	if c.tree == nil {
		return false
	}
	return c.tree.Eval(input, c.consts) >= gpThreshold
}

func (c *gpTreeCondition) General(input []float64) bool {
	return c.Compute(input)
}

func (c *gpTreeCondition) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	c.nInputs = len(input)
	for attempt := 0; attempt < gpCoverMaxAttempts; attempt++ {
		c.tree = gp.Grow(hp, c.consts, c.nInputs, hp.GPMaxLen, hp.GPInitDepth, rng)
		if c.Compute(input) {
			return
		}
	}
}

func (c *gpTreeCondition) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	return c.tree.Mutate(hp, c.consts, c.nInputs, rng)
}

func (c *gpTreeCondition) Crossover(other Condition, hp *params.Hyperparameters, rng *rand.Rand) bool {
	o, ok := other.(*gpTreeCondition)
	if !ok || c.tree == nil || o.tree == nil {
		return false
	}
	before1, before2 := len(c.tree.Code), len(o.tree.Code)
	gp.Crossover(c.tree, o.tree, hp, rng)
	return len(c.tree.Code) != before1 || len(o.tree.Code) != before2
}

func (c *gpTreeCondition) Copy() Condition {
	return &gpTreeCondition{tree: c.tree.Copy(), consts: c.consts, nInputs: c.nInputs}
}

func (c *gpTreeCondition) Print() string {
	return fmt.Sprintf("GPTree{%s}", c.tree.Print())
}

func (c *gpTreeCondition) Save(w io.Writer) error {
	return c.tree.Save(w)
}

// Load restores the tree from the stream. The tree format (§6) does not
// carry nInputs, so it is recovered as one more than the highest
// input-variable index actually referenced in the reloaded code, falling
// back to 1 for a tree that references no input variable.
func (c *gpTreeCondition) Load(r io.Reader) error {
	t, err := gp.Load(r)
	if err != nil {
		return err
	}
	c.tree = t
	c.nInputs = 1
	for _, code := range t.Code {
		if idx := code - 4 - len(c.consts) + 1; idx > c.nInputs {
			c.nInputs = idx
		}
	}
	return nil
}
