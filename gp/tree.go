// Package gp implements the GP-tree engine: a prefix-encoded arithmetic
// expression array with an O(n) sub-tree-bound traversal, a recursive
// evaluator, and growth/crossover/mutation operators.
//
// A node code c is interpreted as: c < 4 selects one of the four
// arithmetic functions (ADD=0, SUB=1, MUL=2, DIV=3); 4 <= c < 4+len(consts)
// selects the shared constant at index c-4; otherwise it selects the
// input variable at index c-4-len(consts). Every function has exactly two
// descendants in prefix order, so any sub-tree is a contiguous range.
package gp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
	"github.com/xcsf-go/core/sam"
)

const (
	opAdd = 0
	opSub = 1
	opMul = 2
	opDiv = 3
)

// Tree is a prefix-encoded GP expression: Code holds the node codes,
// cursor is carried through save/load for parity with callers that walk
// the tree incrementally, and Rates is the self-adapting mutation-rate
// vector (a single slot, the point-mutation probability mu[0]).
type Tree struct {
	Code   []int
	cursor int
	Rates  sam.Rates
}

var treeRateKinds = []sam.Kind{sam.RateSelect}

func isFunction(code int) bool { return code >= 0 && code < 4 }

// Grow recursively builds a random tree bounded by maxLen nodes and
// maxDepth levels. The root is forced to be a function; whenever growth
// would exceed maxLen the partial tree is discarded and growth restarts
// from scratch. nInputs is the number of addressable input variables (the
// condition/prediction dimensionality the tree will be evaluated against).
func Grow(hp *params.Hyperparameters, consts params.GPConstants, nInputs, maxLen, maxDepth int, rng *rand.Rand) *Tree {
	for {
		code := make([]int, 0, maxLen)
		code = append(code, rng.Intn(4)) // forced function root
		ok := growChild(&code, maxDepth-1, maxLen, consts, nInputs, rng) &&
			growChild(&code, maxDepth-1, maxLen, consts, nInputs, rng)
		if ok && len(code) <= maxLen {
			return &Tree{Code: code, Rates: sam.New(1, hp.PMutation)}
		}
	}
}

// growChild appends one node (and, if it is a function, its two
// descendants) to code. Returns false if maxLen was exceeded, signalling
// the caller to discard and retry.
func growChild(code *[]int, depth, maxLen int, consts params.GPConstants, nInputs int, rng *rand.Rand) bool {
	if len(*code) >= maxLen {
		return false
	}
	if depth <= 0 || rng.Float64() < 0.5 {
		*code = append(*code, terminalCode(consts, nInputs, rng))
		return true
	}
	*code = append(*code, rng.Intn(4))
	return growChild(code, depth-1, maxLen, consts, nInputs, rng) &&
		growChild(code, depth-1, maxLen, consts, nInputs, rng)
}

func terminalCode(consts params.GPConstants, nInputs int, rng *rand.Rand) int {
	if len(consts) > 0 && (nInputs == 0 || rng.Intn(2) == 0) {
		return 4 + rng.Intn(len(consts))
	}
	return 4 + len(consts) + rng.Intn(nInputs)
}

// Traverse returns the index one past the sub-tree rooted at p: p+1 for a
// terminal, or the far end of both descendants for a function. It is a
// pure function of code and p — it does not read or write any Tree state.
func Traverse(code []int, p int) int {
	if !isFunction(code[p]) {
		return p + 1
	}
	return Traverse(code, Traverse(code, p+1))
}

// Eval evaluates the tree against input vector x using the shared GP
// constants, returning the root's value. Division by an exactly-zero
// denominator is protected: the numerator is returned instead of NaN/Inf.
func (t *Tree) Eval(x []float64, consts params.GPConstants) float64 {
	v, _ := t.evalAt(0, x, consts)
	return v
}

func (t *Tree) evalAt(p int, x []float64, consts params.GPConstants) (float64, int) {
	c := t.Code[p]
	if !isFunction(c) {
		if c < 4+len(consts) {
			return consts[c-4], p + 1
		}
		return x[c-4-len(consts)], p + 1
	}
	left, next := t.evalAt(p+1, x, consts)
	right, next := t.evalAt(next, x, consts)
	switch c {
	case opAdd:
		return left + right, next
	case opSub:
		return left - right, next
	case opMul:
		return left * right, next
	default: // opDiv
		if right == 0 {
			return left, next
		}
		return left / right, next
	}
}

// Crossover splices a random contiguous sub-tree of t2 into a random
// position of t1 and vice versa, swapping the two ranges in place. Only
// non-root positions are picked, so both roots stay functions and both
// resulting trees remain valid (invariant 3). If either resulting tree
// would exceed GPMaxLen the swap is discarded and both trees are left
// unchanged.
func Crossover(t1, t2 *Tree, hp *params.Hyperparameters, rng *rand.Rand) {
	p1 := 1 + rng.Intn(len(t1.Code)-1)
	e1 := Traverse(t1.Code, p1)
	p2 := 1 + rng.Intn(len(t2.Code)-1)
	e2 := Traverse(t2.Code, p2)

	sub1 := append([]int(nil), t1.Code[p1:e1]...)
	sub2 := append([]int(nil), t2.Code[p2:e2]...)

	newLen1 := len(t1.Code) - len(sub1) + len(sub2)
	newLen2 := len(t2.Code) - len(sub2) + len(sub1)
	if newLen1 > hp.GPMaxLen || newLen2 > hp.GPMaxLen {
		return
	}

	t1.Code = spliceCode(t1.Code, p1, e1, sub2)
	t2.Code = spliceCode(t2.Code, p2, e2, sub1)
}

func spliceCode(code []int, from, to int, replacement []int) []int {
	out := make([]int, 0, len(code)-(to-from)+len(replacement))
	out = append(out, code[:from]...)
	out = append(out, replacement...)
	out = append(out, code[to:]...)
	return out
}

// Mutate resamples each node independently with probability mu[0]
// (self-adapted via SAM before the scan), replacing functions with
// functions and terminals with terminals so the tree stays structurally
// valid. Returns whether anything changed.
func (t *Tree) Mutate(hp *params.Hyperparameters, consts params.GPConstants, nInputs int, rng *rand.Rand) bool {
	t.Rates.Adapt(treeRateKinds, hp.SAMMin, rng)
	mu := t.Rates[0]
	changed := false
	for i, c := range t.Code {
		if rng.Float64() >= mu {
			continue
		}
		if isFunction(c) {
			t.Code[i] = rng.Intn(4)
		} else {
			t.Code[i] = terminalCode(consts, nInputs, rng)
		}
		if t.Code[i] != c {
			changed = true
		}
	}
	return changed
}

// Copy returns a deep copy.
func (t *Tree) Copy() *Tree {
	return &Tree{
		Code:   append([]int(nil), t.Code...),
		cursor: t.cursor,
		Rates:  t.Rates.Copy(),
	}
}

func (t *Tree) Print() string {
	return fmt.Sprintf("Tree{len=%d}", len(t.Code))
}

// Save writes (cursor, len, code[len]) followed by the Rates vector in the
// sam package's format (an int32 length, then the rates).
func (t *Tree) Save(w io.Writer) error {
	header := [2]int32{int32(t.cursor), int32(len(t.Code))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	code32 := make([]int32, len(t.Code))
	for i, c := range t.Code {
		code32[i] = int32(c)
	}
	if err := binary.Write(w, binary.LittleEndian, code32); err != nil {
		return err
	}
	return t.Rates.Save(w)
}

// Load mirrors Save exactly.
func Load(r io.Reader) (*Tree, error) {
	var header [2]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	cursor, n := int(header[0]), int(header[1])
	code32 := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, code32); err != nil {
		return nil, err
	}
	code := make([]int, n)
	for i, c := range code32 {
		code[i] = int(c)
	}
	rates, err := sam.Load(r)
	if err != nil {
		return nil, err
	}
	return &Tree{Code: code, cursor: cursor, Rates: rates}, nil
}
