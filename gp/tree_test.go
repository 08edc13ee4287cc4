package gp

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/xcsf-go/core/params"
)

func testHyperparams() *params.Hyperparameters {
	return &params.Hyperparameters{
		SAMMin:    0.0001,
		PMutation: 0.1,
		GPMaxLen:  64,
	}
}

// TestEvalProtectedDivision is S2: DIV(IN:0, SUB(IN:0, IN:0)) on x=[3.0]
// must evaluate to 3.0 (zero denominator returns the numerator).
func TestEvalProtectedDivision(t *testing.T) {
	consts := params.GPConstants{}
	tree := &Tree{Code: []int{opDiv, 4, opSub, 4, 4}} // IN:0 is code 4 (no consts)
	got := tree.Eval([]float64{3.0}, consts)
	if got != 3.0 {
		t.Fatalf("protected division: got %v, want 3.0", got)
	}
}

func TestTraverseCoversWholeTree(t *testing.T) {
	consts := params.GPConstants{}
	tree := &Tree{Code: []int{opDiv, 4, opSub, 4, 4}}
	end := Traverse(tree.Code, 0)
	if end != len(tree.Code) {
		t.Fatalf("Traverse(0) = %d, want %d (whole tree)", end, len(tree.Code))
	}
}

func TestGrowProducesValidTree(t *testing.T) {
	hp := testHyperparams()
	rng := rand.New(rand.NewSource(1))
	consts := params.GPConstants{1.0, 2.0, 3.0}
	for i := 0; i < 200; i++ {
		tree := Grow(hp, consts, 2, 32, 5, rng)
		if len(tree.Code) == 0 || !isFunction(tree.Code[0]) {
			t.Fatalf("root must be a function, got code %v", tree.Code)
		}
		if len(tree.Code) > 32 {
			t.Fatalf("grown tree exceeds maxLen: %d", len(tree.Code))
		}
		if end := Traverse(tree.Code, 0); end != len(tree.Code) {
			t.Fatalf("Traverse(0) = %d, want %d", end, len(tree.Code))
		}
	}
}

// TestCrossoverPreservesValidity is S3: 1000 random pairs under a fixed
// seed, crossed over, asserting invariants 3 and 4 (every sub-tree
// position is valid, lengths stay within GPMaxLen).
func TestCrossoverPreservesValidity(t *testing.T) {
	hp := testHyperparams()
	rng := rand.New(rand.NewSource(99))
	consts := params.GPConstants{1.0, 2.0, 3.0}

	for i := 0; i < 1000; i++ {
		t1 := Grow(hp, consts, 3, hp.GPMaxLen, 4, rng)
		t2 := Grow(hp, consts, 3, hp.GPMaxLen, 4, rng)

		Crossover(t1, t2, hp, rng)

		for _, tree := range []*Tree{t1, t2} {
			if len(tree.Code) > hp.GPMaxLen {
				t.Fatalf("pair %d: tree exceeds GPMaxLen: %d", i, len(tree.Code))
			}
			if end := Traverse(tree.Code, 0); end != len(tree.Code) {
				t.Fatalf("pair %d: Traverse(0) = %d, want %d (invalid tree after crossover)", i, end, len(tree.Code))
			}
			if !isFunction(tree.Code[0]) {
				t.Fatalf("pair %d: root is not a function after crossover: %v", i, tree.Code)
			}
		}
	}
}

func TestMutatePreservesStructure(t *testing.T) {
	hp := testHyperparams()
	hp.PMutation = 1.0
	rng := rand.New(rand.NewSource(5))
	consts := params.GPConstants{1.0, 2.0}

	tree := Grow(hp, consts, 2, 32, 4, rng)
	before := append([]int(nil), tree.Code...)
	functionMask := make([]bool, len(before))
	for i, c := range before {
		functionMask[i] = isFunction(c)
	}

	tree.Mutate(hp, consts, 2, rng)

	if len(tree.Code) != len(before) {
		t.Fatalf("mutate changed tree length: %d vs %d", len(tree.Code), len(before))
	}
	for i, c := range tree.Code {
		if isFunction(c) != functionMask[i] {
			t.Fatalf("mutate changed node kind at %d: function=%v before, function=%v after", i, functionMask[i], isFunction(c))
		}
	}
}

func TestTreeSaveLoadRoundTrip(t *testing.T) {
	hp := testHyperparams()
	rng := rand.New(rand.NewSource(11))
	consts := params.GPConstants{1.0, 2.0, 3.0}
	tree := Grow(hp, consts, 2, 32, 4, rng)
	tree.Mutate(hp, consts, 2, rng) // perturb Rates away from its initial value

	var buf bytes.Buffer
	if err := tree.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Code) != len(tree.Code) {
		t.Fatalf("code length mismatch: got %d, want %d", len(got.Code), len(tree.Code))
	}
	for i := range tree.Code {
		if got.Code[i] != tree.Code[i] {
			t.Fatalf("code[%d] mismatch: got %d, want %d", i, got.Code[i], tree.Code[i])
		}
	}
	if len(got.Rates) != len(tree.Rates) || got.Rates[0] != tree.Rates[0] {
		t.Fatalf("rates mismatch: got %v, want %v", got.Rates, tree.Rates)
	}
}
