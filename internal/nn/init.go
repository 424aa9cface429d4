package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/convnets/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
// Draws come from the process-wide math/rand source; use InitCNN with a
// seeded generator for reproducible weights.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)
	xavierFill(nil, t.Data(), fanIn, fanOut)
	return t
}

// xavierFill overwrites data with Xavier uniform draws from rng.
// A nil rng uses the global source.
func xavierFill(rng *rand.Rand, data []float32, fanIn, fanOut int) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	if rng == nil {
		for i := range data {
			//nolint:gosec // Using math/rand for weight initialization (not security-critical)
			data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
		}
		return
	}
	tensor.FillUniform(rng, data, -bound, bound)
}

// Zeros creates a tensor filled with zeros.
//
// This is used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// weightResetter is implemented by layers whose weights InitCNN redraws.
type weightResetter interface {
	resetWeights(rng *rand.Rand)
}

// Apply calls fn on every module in the tree rooted at m.
//
// Children are visited before their parent, in forward order.
func Apply[B tensor.Backend](m Module[B], fn func(Module[B])) {
	if c, ok := m.(Container[B]); ok {
		for _, child := range c.Children() {
			Apply(child.Module, fn)
		}
	}
	fn(m)
}

// InitCNN returns an Apply callback that redraws the weight of every
// Conv2D and Linear layer from the Xavier uniform distribution.
//
// Biases and all other modules are left unchanged. Shapes never change, so
// applying it any number of times leaves Forward output shapes intact.
//
// Example:
//
//	nn.Apply(model, nn.InitCNN[B](rand.New(rand.NewSource(seed))))
func InitCNN[B tensor.Backend](rng *rand.Rand) func(Module[B]) {
	return func(m Module[B]) {
		if r, ok := m.(weightResetter); ok {
			r.resetWeights(rng)
		}
	}
}
