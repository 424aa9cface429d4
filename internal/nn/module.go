// Package nn implements the neural network layers used by the convnets model definitions.
//
// This package provides building blocks for constructing convolutional classifiers:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters owned by a layer
//   - Conv2D, Linear: Layers with weights
//   - MaxPool2D, AvgPool2D, AdaptiveAvgPool2D, Flatten: Parameter-free reshaping layers
//   - ReLU, Sigmoid: Activations
//   - Sequential: Container for stacking layers
//   - LayerDesc, Build: Declarative layer tables with explicit shape threading
//   - Init routines, state dicts, and classification loss/accuracy
//
// Every layer is sized explicitly at construction. Shape inference happens
// once, at definition time, by threading a declared input shape through
// OutputShape; nothing is inferred lazily from the first forward pass.
package nn

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//   - OutputShape: Static shape inference without running kernels
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential[B](
//	    nn.NewConv2D(1, 6, 5, 5, 1, 2, true, backend),
//	    nn.NewSigmoid[B](),
//	    nn.NewAvgPool2D(2, 2, 0, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Forward panics on inputs the module cannot accept (wrong rank or
	// channel count). Use OutputShape to validate beforehand.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// This includes weights, biases, and any nested module parameters.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]

	// OutputShape returns the shape Forward would produce for an input of
	// the given shape, or an error wrapping tensor.ErrShapeMismatch.
	OutputShape(input tensor.Shape) (tensor.Shape, error)

	// String describes the module's configuration.
	String() string
}

// Child is a named sub-module of a Container.
type Child[B tensor.Backend] struct {
	Name   string
	Module Module[B]
}

// Container is implemented by modules that own sub-modules.
//
// Children are returned in forward order. Names are unique within the
// container and form the path segments of state dict keys.
type Container[B tensor.Backend] interface {
	Module[B]
	Children() []Child[B]
}
