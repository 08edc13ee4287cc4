// Package condition implements the condition slot of a classifier: the
// predicate that decides whether a classifier matches a given input. Each
// concrete representation (Ternary, Rectangle, Ellipsoid, GPTree, Neural)
// implements the Condition interface; DGP is catalogued but not built in
// depth (see New).
package condition

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// Condition is the capability interface every condition representation
// implements — the trait-object form of the classifier's condition vtable.
type Condition interface {
	// General reports whether this condition matches input while also
	// being about as general (wide) as the substrate can be; a stand-in
	// for the classical two-condition subsumption-generality comparison,
	// collapsed to a single-condition predicate here since there is no
	// outer GA loop in this core to supply the second operand.
	General(input []float64) bool
	// Compute reports whether the condition matches input.
	Compute(input []float64) bool
	// Cover mutates the condition until it matches input, sizing any
	// per-dimension state from len(input) on first use.
	Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand)
	Copy() Condition
	Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool
	Crossover(other Condition, hp *params.Hyperparameters, rng *rand.Rand) bool
	Print() string
	Save(w io.Writer) error
	Load(r io.Reader) error
}

// Tag selects a concrete Condition representation, matching §4.4's
// catalogue (TERNARY, RECTANGLE, ELLIPSOID, GP_TREE, NEURAL, DGP).
type Tag int32

const (
	Ternary Tag = iota
	Rectangle
	Ellipsoid
	GPTree
	Neural
	DGP
)

func (t Tag) String() string {
	switch t {
	case Ternary:
		return "Ternary"
	case Rectangle:
		return "Rectangle"
	case Ellipsoid:
		return "Ellipsoid"
	case GPTree:
		return "GPTree"
	case Neural:
		return "Neural"
	case DGP:
		return "DGP"
	default:
		return fmt.Sprintf("Tag(%d)", int32(t))
	}
}

// New performs the once-per-classifier dispatch: it installs the concrete
// representation behind the Condition interface without yet sizing any
// per-dimension state (that happens on the first Cover call, once the
// input's length is known).
func New(tag Tag, hp *params.Hyperparameters, consts params.GPConstants, rng *rand.Rand) (Condition, error) {
	switch tag {
	case Ternary:
		return &ternaryCondition{}, nil
	case Rectangle:
		return &rectangleCondition{}, nil
	case Ellipsoid:
		return &ellipsoidCondition{}, nil
	case GPTree:
		return newGPTreeCondition(consts), nil
	case Neural:
		return newNeuralCondition(hp), nil
	case DGP:
		return nil, fmt.Errorf("condition: DGP is catalogued but not implemented in depth (unspecified by the core)")
	default:
		return nil, fmt.Errorf("condition: unknown tag %d", tag)
	}
}
