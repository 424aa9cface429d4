// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Container is a Module with named sub-modules.
type Container[B tensor.Backend] = nn.Container[B]

// Child is a named sub-module of a Container.
type Child[B tensor.Backend] = nn.Child[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// HParams records the hyperparameters a classifier was built with.
type HParams = nn.HParams

// InputGeometry is the per-sample input shape a model is defined for.
type InputGeometry = nn.InputGeometry

// Errors.
var (
	ErrInvalidHParams      = nn.ErrInvalidHParams
	ErrInvalidLayer        = nn.ErrInvalidLayer
	ErrMissingParameter    = nn.ErrMissingParameter
	ErrUnexpectedParameter = nn.ErrUnexpectedParameter
)

// Layers

// Conv2D represents a 2D convolutional layer.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	backend := cpu.New()
//	conv := nn.NewConv2D(1, 6, 5, 5, 1, 2, true, backend)  // in=1, out=6, kernel=5x5, stride=1, padding=2
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, backend)
}

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a max pooling layer. Padded cells never win.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, padding, backend)
}

// AvgPool2D represents a 2D average pooling layer.
type AvgPool2D[B tensor.Backend] = nn.AvgPool2D[B]

// NewAvgPool2D creates an average pooling layer.
func NewAvgPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *AvgPool2D[B] {
	return nn.NewAvgPool2D(kernelSize, stride, padding, backend)
}

// AdaptiveAvgPool2D averages any spatial extent down to a fixed size.
type AdaptiveAvgPool2D[B tensor.Backend] = nn.AdaptiveAvgPool2D[B]

// NewAdaptiveAvgPool2D creates an adaptive average pooling layer.
func NewAdaptiveAvgPool2D[B tensor.Backend](outH, outW int, backend B) *AdaptiveAvgPool2D[B] {
	return nn.NewAdaptiveAvgPool2D(outH, outW, backend)
}

// Flatten collapses every dimension after the batch dimension.
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a Flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid is the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Sequential chains modules in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Declarative construction

// LayerDesc describes one layer without its input size.
type LayerDesc = nn.LayerDesc

// Kind identifies the layer a LayerDesc builds.
type Kind = nn.Kind

// Parameterless layer descriptors.
var (
	FlattenLayer = nn.FlattenLayer
	ReLULayer    = nn.ReLULayer
	SigmoidLayer = nn.SigmoidLayer
)

// Conv describes a square convolution with out output channels.
func Conv(out, kernel, stride, padding int) LayerDesc { return nn.Conv(out, kernel, stride, padding) }

// Dense describes a fully connected layer with out features.
func Dense(out int) LayerDesc { return nn.Dense(out) }

// MaxPool describes a square max pooling window.
func MaxPool(kernel, stride, padding int) LayerDesc { return nn.MaxPool(kernel, stride, padding) }

// AvgPool describes a square average pooling window.
func AvgPool(kernel, stride, padding int) LayerDesc { return nn.AvgPool(kernel, stride, padding) }

// GlobalAvgPool describes adaptive average pooling to 1x1.
func GlobalAvgPool() LayerDesc { return nn.GlobalAvgPool() }

// Build instantiates descs for inputs of shape in, sizing each layer from
// the output of the previous one. It returns the container and its output
// shape.
func Build[B tensor.Backend](descs []LayerDesc, in tensor.Shape, backend B) (*Sequential[B], tensor.Shape, error) {
	return nn.Build(descs, in, backend)
}

// Initialization

// Apply calls fn on every module of the tree rooted at m, children first.
func Apply[B tensor.Backend](m Module[B], fn func(Module[B])) {
	nn.Apply(m, fn)
}

// InitCNN returns an Apply visitor that redraws convolution and linear
// weights with Xavier uniform samples from rng.
func InitCNN[B tensor.Backend](rng *rand.Rand) func(Module[B]) {
	return nn.InitCNN[B](rng)
}

// State dicts

// NamedParameter pairs a parameter with its dotted path.
type NamedParameter[B tensor.Backend] = nn.NamedParameter[B]

// NamedParameters returns every parameter of m with its full path.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	return nn.NamedParameters(m)
}

// NumParameters returns the total number of scalar weights in m.
func NumParameters[B tensor.Backend](m Module[B]) int {
	return nn.NumParameters(m)
}

// StateDict maps parameter paths to their live storage.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(m)
}

// LoadStateDict copies stateDict into the parameters of m after
// validating names, shapes and dtypes.
func LoadStateDict[B tensor.Backend](m Module[B], stateDict map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(m, stateDict)
}

// Evaluation

// CrossEntropyLoss computes softmax cross-entropy on logits.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// CrossEntropy returns the mean loss of [N, classes] logits against targets.
func CrossEntropy[B tensor.Backend](criterion *CrossEntropyLoss, logits *tensor.Tensor[float32, B], targets []int) float64 {
	return nn.CrossEntropy(criterion, logits, targets)
}

// Accuracy returns the fraction of rows whose argmax equals the target.
func Accuracy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets []int) float64 {
	return nn.Accuracy(logits, targets)
}
