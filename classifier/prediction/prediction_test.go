package prediction_test

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/xcsf-go/core/classifier/prediction"
	"github.com/xcsf-go/core/params"
)

func testHyperparams() *params.Hyperparameters {
	return &params.Hyperparameters{
		Beta:               0.2,
		InitFitness:         0.01,
		PredEta:             0.2,
		PredMomentum:        0.0,
		PredX0:              1.0,
		PredRLSLambda:       1.0,
		PredRLSScaleFactor:  1000,
		PredNumHiddenNeurons: 6,
		PredMaxHiddenNeurons: 12,
		PredHiddenNeuronActivation: "ReLU",
	}
}

func TestEveryPredictionConverges(t *testing.T) {
	hp := testHyperparams()
	tags := []prediction.Tag{
		prediction.Constant, prediction.NLMSLinear, prediction.NLMSQuadratic,
		prediction.RLSLinear, prediction.RLSQuadratic, prediction.Neural,
	}
	input := []float64{0.3, -0.4, 0.1}
	truth := 0.75

	for _, tag := range tags {
		rng := rand.New(rand.NewSource(1))
		p, err := prediction.New(tag, hp, rng)
		if err != nil {
			t.Fatalf("%s: New: %v", tag, err)
		}
		p.Cover(input, hp, rng)

		errBefore := math.Abs(truth - p.Compute(input)[0])
		for i := 0; i < 50; i++ {
			p.Update(truth, input)
		}
		errAfter := math.Abs(truth - p.Compute(input)[0])
		if errAfter >= errBefore {
			t.Fatalf("%s: error did not shrink after 50 updates: before=%v after=%v", tag, errBefore, errAfter)
		}
	}
}

func TestEveryPredictionSaveLoadRoundTrip(t *testing.T) {
	hp := testHyperparams()
	tags := []prediction.Tag{
		prediction.Constant, prediction.NLMSLinear, prediction.NLMSQuadratic,
		prediction.RLSLinear, prediction.RLSQuadratic, prediction.Neural,
	}
	input := []float64{0.3, -0.4, 0.1}

	for _, tag := range tags {
		rng := rand.New(rand.NewSource(2))
		p, err := prediction.New(tag, hp, rng)
		if err != nil {
			t.Fatalf("%s: New: %v", tag, err)
		}
		p.Cover(input, hp, rng)
		p.Update(0.5, input)
		want := p.Compute(input)[0]

		var buf bytes.Buffer
		if err := p.Save(&buf); err != nil {
			t.Fatalf("%s: Save: %v", tag, err)
		}
		reloaded, err := prediction.New(tag, hp, rng)
		if err != nil {
			t.Fatalf("%s: New (reload): %v", tag, err)
		}
		if err := reloaded.Load(&buf); err != nil {
			t.Fatalf("%s: Load: %v", tag, err)
		}
		got := reloaded.Compute(input)[0]
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s: reloaded prediction mismatch: got %v, want %v", tag, got, want)
		}
	}
}
