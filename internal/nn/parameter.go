package nn

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// Parameter is a named weight tensor owned by a layer.
//
// The models never update parameters themselves. State dicts expose the
// live storage so an external loop or a checkpoint can write into it.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name   string // "weight" or "bias"
	tensor *tensor.Tensor[float32, B]
}

// NewParameter wraps an initialized tensor as a parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// NumElements returns the number of scalar weights in the parameter.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}
