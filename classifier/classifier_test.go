package classifier_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/xcsf-go/core/classifier"
	"github.com/xcsf-go/core/params"
)

func testHyperparams(condType, predType, actType string) *params.Hyperparameters {
	return &params.Hyperparameters{
		CondType: condType,
		PredType: predType,
		ActType:  actType,
		LossFunc: "SquareLoss",

		InitFitness: 0.01,
		InitError:   1.0,

		SAMMin:    0.1,
		PMutation: 1.0,
		FMutation: 1.0,
		SMutation: 1.0,
		EMutation: 1.0,

		Beta: 0.2,

		CondMin:  -1,
		CondMax:  1,
		CondSmin: 0.1,
		CondEta:  0.1,

		CondNumHiddenNeurons:       5,
		CondMaxHiddenNeurons:       10,
		CondHiddenNeuronActivation: "ReLU",

		PredEta:                    0.2,
		PredX0:                     1.0,
		PredRLSLambda:              1.0,
		PredRLSScaleFactor:         1000,
		PredNumHiddenNeurons:       6,
		PredMaxHiddenNeurons:       12,
		PredHiddenNeuronActivation: "ReLU",

		GPNumCons:   3,
		GPInitDepth: 4,
		GPMaxLen:    32,
	}
}

func TestNewDispatchesEveryCombination(t *testing.T) {
	condTypes := []string{"TERNARY", "RECTANGLE", "ELLIPSOID", "GP_TREE", "NEURAL"}
	predTypes := []string{"CONSTANT", "NLMS_LINEAR", "RLS_LINEAR", "NEURAL"}
	actTypes := []string{"INTEGER", "NEURAL"}

	rng := rand.New(rand.NewSource(7))
	input := []float64{0.2, -0.1, 0.4}

	for _, ct := range condTypes {
		for _, pt := range predTypes {
			for _, at := range actTypes {
				hp := testHyperparams(ct, pt, at)
				consts := params.NewGPConstants(hp, rng)
				c, err := classifier.New(hp, consts, 4, rng)
				if err != nil {
					t.Fatalf("cond=%s pred=%s act=%s: New: %v", ct, pt, at, err)
				}
				c.Cover(input, hp, rng)
				if !c.Condition.Compute(input) {
					t.Fatalf("cond=%s pred=%s act=%s: covered condition does not match its own input", ct, pt, at)
				}
				_ = c.Prediction.Compute(input)
				av := c.Action.Compute(input)
				if av < 0 || av >= 4 {
					t.Fatalf("cond=%s pred=%s act=%s: action out of range: %d", ct, pt, at, av)
				}
			}
		}
	}
}

func TestClassifierRejectsUnknownTags(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	hp := testHyperparams("BOGUS", "CONSTANT", "INTEGER")
	if _, err := classifier.New(hp, params.GPConstants{}, 2, rng); err == nil {
		t.Fatalf("expected an error for an unknown COND_TYPE")
	}
}

func TestClassifierCopyIsDeep(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	hp := testHyperparams("TERNARY", "CONSTANT", "INTEGER")
	consts := params.NewGPConstants(hp, rng)
	input := []float64{0.1, 0.2}

	c, err := classifier.New(hp, consts, 3, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Cover(input, hp, rng)
	cp := c.Copy()

	cp.Fitness = 999
	cp.Prediction.Update(1.0, input)
	if c.Fitness == 999 {
		t.Fatalf("mutating the copy's fitness changed the original")
	}
}

func TestClassifierSaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	hp := testHyperparams("RECTANGLE", "NLMS_LINEAR", "INTEGER")
	consts := params.NewGPConstants(hp, rng)
	input := []float64{0.3, -0.2, 0.5}

	c, err := classifier.New(hp, consts, 5, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Cover(input, hp, rng)
	c.Fitness = 0.42
	c.Experience = 7
	c.Numerosity = 3

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := classifier.New(hp, consts, 5, rng)
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	if err := reloaded.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Fitness != 0.42 || reloaded.Experience != 7 || reloaded.Numerosity != 3 {
		t.Fatalf("bookkeeping fields did not round-trip: %+v", reloaded)
	}
	if !reloaded.Condition.Compute(input) {
		t.Fatalf("reloaded condition no longer matches the covering input")
	}
}
