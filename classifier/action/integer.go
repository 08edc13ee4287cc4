package action

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/xcsf-go/core/params"
)

// integerAction always returns a single fixed action index drawn at
// construction from [0, nActions). Mutate resamples it uniformly with
// probability hp.PMutation, mirroring the point-mutation treatment the
// other representations give a single discrete parameter.
type integerAction struct {
	nActions int
	value    int
}

func newIntegerAction(nActions int, rng *rand.Rand) *integerAction {
	a := &integerAction{nActions: nActions}
	if nActions > 0 {
		a.value = rng.Intn(nActions)
	}
	return a
}

func (a *integerAction) Compute(input []float64) int {
	return a.value
}

func (a *integerAction) Mutate(hp *params.Hyperparameters, rng *rand.Rand) bool {
	if a.nActions <= 1 || rng.Float64() >= hp.PMutation {
		return false
	}
	next := rng.Intn(a.nActions)
	if next == a.value {
		return false
	}
	a.value = next
	return true
}

func (a *integerAction) Copy() Action {
	return &integerAction{nActions: a.nActions, value: a.value}
}

func (a *integerAction) Print() string {
	return fmt.Sprintf("Integer{%d}", a.value)
}

func (a *integerAction) Save(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, [2]int32{int32(a.nActions), int32(a.value)})
}

func (a *integerAction) Load(r io.Reader) error {
	var buf [2]int32
	if err := binary.Read(r, binary.LittleEndian, &buf); err != nil {
		return err
	}
	a.nActions, a.value = int(buf[0]), int(buf[1])
	return nil
}
