package action_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/xcsf-go/core/classifier/action"
	"github.com/xcsf-go/core/params"
)

func testHyperparams() *params.Hyperparameters {
	return &params.Hyperparameters{
		PMutation:                  1.0,
		CondEta:                    0.1,
		CondNumHiddenNeurons:       5,
		CondMaxHiddenNeurons:       10,
		CondHiddenNeuronActivation: "ReLU",
	}
}

func TestIntegerActionWithinRange(t *testing.T) {
	hp := testHyperparams()
	rng := rand.New(rand.NewSource(1))
	a, err := action.New(action.Integer, 4, hp, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := a.Compute([]float64{0.1, 0.2})
	if v < 0 || v >= 4 {
		t.Fatalf("action out of range: %d", v)
	}
}

func TestIntegerActionMutateChangesValue(t *testing.T) {
	hp := testHyperparams()
	rng := rand.New(rand.NewSource(2))
	a, err := action.New(action.Integer, 8, hp, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := a.Compute(nil)
	changed := false
	for i := 0; i < 50 && !changed; i++ {
		changed = a.Mutate(hp, rng)
	}
	if !changed {
		t.Fatalf("mutate never reported a change across 50 attempts")
	}
	after := a.Compute(nil)
	if before == after {
		t.Fatalf("mutate reported a change but value is unchanged")
	}
}

func TestNeuralActionComputeIsValidIndex(t *testing.T) {
	hp := testHyperparams()
	rng := rand.New(rand.NewSource(3))
	a, err := action.New(action.Neural, 3, hp, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := a.Compute([]float64{0.5, -0.2, 0.1, 0.9})
	if v < 0 || v >= 3 {
		t.Fatalf("action out of range: %d", v)
	}
}

func TestEveryActionCopyIsIndependent(t *testing.T) {
	hp := testHyperparams()
	tags := []action.Tag{action.Integer, action.Neural}
	input := []float64{0.2, 0.4, -0.1}

	for _, tag := range tags {
		rng := rand.New(rand.NewSource(4))
		a, err := action.New(tag, 5, hp, rng)
		if err != nil {
			t.Fatalf("%s: New: %v", tag, err)
		}
		a.Compute(input) // force lazy net construction for Neural
		cp := a.Copy()
		want := cp.Compute(input)
		for i := 0; i < 50; i++ {
			a.Mutate(hp, rng)
		}
		if got := cp.Compute(input); got != want {
			t.Fatalf("%s: mutating the original changed the copy's action: got %d, want %d", tag, got, want)
		}
	}
}

func TestEveryActionSaveLoadRoundTrip(t *testing.T) {
	hp := testHyperparams()
	tags := []action.Tag{action.Integer, action.Neural}
	input := []float64{0.2, 0.4, -0.1}

	for _, tag := range tags {
		rng := rand.New(rand.NewSource(5))
		a, err := action.New(tag, 4, hp, rng)
		if err != nil {
			t.Fatalf("%s: New: %v", tag, err)
		}
		want := a.Compute(input)

		var buf bytes.Buffer
		if err := a.Save(&buf); err != nil {
			t.Fatalf("%s: Save: %v", tag, err)
		}
		reloaded, err := action.New(tag, 4, hp, rng)
		if err != nil {
			t.Fatalf("%s: New (reload): %v", tag, err)
		}
		if err := reloaded.Load(&buf); err != nil {
			t.Fatalf("%s: Load: %v", tag, err)
		}
		got := reloaded.Compute(input)
		if got != want {
			t.Fatalf("%s: reloaded action mismatch: got %d, want %d", tag, got, want)
		}
	}
}
