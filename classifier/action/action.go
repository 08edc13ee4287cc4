// Package action implements the action slot of a classifier: the
// function that selects a discrete action for a matched input. Unlike
// condition and prediction, action drops Cover and Crossover per §4.4's
// catalogue (actions are chosen, not matched or spliced).
package action

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// Action is the capability interface every action representation
// implements.
type Action interface {
	// Compute returns the selected discrete action index for input.
	Compute(input []float64) int
	Copy() Action
	Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool
	Print() string
	Save(w io.Writer) error
	Load(r io.Reader) error
}

// Tag selects a concrete Action representation.
type Tag int32

const (
	Integer Tag = iota
	Neural
)

func (t Tag) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Neural:
		return "Neural"
	default:
		return fmt.Sprintf("Tag(%d)", int32(t))
	}
}

// New performs the once-per-classifier dispatch. nActions bounds the
// Integer action's value and the Neural action's output width; both are
// fixed at construction since, unlike condition/prediction, action has no
// Cover call to size state from an observed input.
func New(tag Tag, nActions int, hp *params.Hyperparameters, rng *rand.Rand) (Action, error) {
	switch tag {
	case Integer:
		return newIntegerAction(nActions, rng), nil
	case Neural:
		return newNeuralAction(nActions, hp, rng)
	default:
		return nil, fmt.Errorf("action: unknown tag %d", tag)
	}
}
