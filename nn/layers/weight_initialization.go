package layers

import (
	"math"
	"math/rand"
)

// WeightInitialization produces a value for one weight of a layer based on
// the layer's (input, output) size. Some techniques use only one
// dimension, like He initialization.
type WeightInitialization interface {
	Generate(layerSize [2]int, rng *rand.Rand) float64
}

// RandomInitialization draws uniformly from [Min, Max].
type RandomInitialization struct {
	Min float64
	Max float64
}

func (r RandomInitialization) Generate(layerSize [2]int, rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// XavierNormalInitialization (Glorot) draws from a normal distribution
// scaled by fan-in+fan-out. Suited to tanh activations.
type XavierNormalInitialization struct{}

func (x XavierNormalInitialization) Generate(layerSize [2]int, rng *rand.Rand) float64 {
	return rng.NormFloat64() * math.Sqrt(2.0/float64(layerSize[0]+layerSize[1]))
}

// XavierUniformInitialization (Glorot) draws uniformly from a range scaled
// by fan-in+fan-out. Suited to sigmoid activations.
type XavierUniformInitialization struct{}

func (x XavierUniformInitialization) Generate(layerSize [2]int, rng *rand.Rand) float64 {
	limit := math.Sqrt(6.0 / float64(layerSize[0]+layerSize[1]))
	return (rng.Float64()*2 - 1.0) * limit
}

// HeInitialization draws from a normal distribution scaled by fan-in.
// Suited to ReLU activations, to account for the zeros in (-inf;0].
type HeInitialization struct{}

func (h HeInitialization) Generate(layerSize [2]int, rng *rand.Rand) float64 {
	return rng.NormFloat64() * math.Sqrt(2.0/float64(layerSize[0]))
}

// weightInitFor picks a conventional initialization scheme for a given
// activation name, falling back to Xavier-uniform.
func weightInitFor(actName string) WeightInitialization {
	switch actName {
	case "ReLU":
		return HeInitialization{}
	case "Tanh":
		return XavierNormalInitialization{}
	case "Sigmoid", "SELU":
		return XavierUniformInitialization{}
	default:
		return XavierUniformInitialization{}
	}
}
