package params

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// GPConstants is the ordered sequence of real-valued GP terminal constants
// shared by every GP tree in a run. It is drawn once uniformly in
// [CondMin, CondMax] and is immutable thereafter; trees reference it by
// index (see the node encoding in the gp package) rather than copying it.
type GPConstants []float64

// NewGPConstants draws hp.GPNumCons values uniformly from [hp.CondMin,
// hp.CondMax].
func NewGPConstants(hp *Hyperparameters, rng *rand.Rand) GPConstants {
	u := distuv.Uniform{Min: hp.CondMin, Max: hp.CondMax, Src: rng}
	consts := make(GPConstants, hp.GPNumCons)
	for i := range consts {
		consts[i] = u.Rand()
	}
	return consts
}
