package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// window holds the geometry shared by the fixed-window pooling layers.
type window struct {
	kernelSize int
	stride     int
	padding    int
}

func newWindow(layer string, kernelSize, stride, padding int) window {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("%s: invalid kernel size %d", layer, kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("%s: invalid stride %d", layer, stride))
	}
	if padding < 0 || padding > kernelSize/2 {
		panic(fmt.Sprintf("%s: padding %d must be in [0, %d]", layer, padding, kernelSize/2))
	}
	return window{kernelSize: kernelSize, stride: stride, padding: padding}
}

func (w window) outputShape(layer string, input tensor.Shape) (tensor.Shape, error) {
	if len(input) != 4 {
		return nil, rankError(layer, 4, input)
	}
	outH := tensor.ConvOutputSize(input[2], w.kernelSize, w.stride, w.padding)
	outW := tensor.ConvOutputSize(input[3], w.kernelSize, w.stride, w.padding)
	if outH <= 0 || outW <= 0 {
		return nil, spatialError(layer, input, outH, outW)
	}
	return tensor.Shape{input[0], input[1], outH, outW}, nil
}

// MaxPool2D is a 2D max pooling layer.
//
// Selects the maximum value in each window. Padded cells never win, so
// padding only controls the output extent.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// Example:
//
//	// 3x3 window, stride 2, padding 1 halves an even extent: 48 -> 24
//	pool := nn.NewMaxPool2D(3, 2, 1, backend)
type MaxPool2D[B tensor.Backend] struct {
	window
	backend B
}

// NewMaxPool2D creates a new max pooling layer.
//
// Panics if padding exceeds half the kernel size.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	return &MaxPool2D[B]{
		window:  newWindow("maxpool2d", kernelSize, stride, padding),
		backend: backend,
	}
}

// OutputShape returns the pooled shape.
func (m *MaxPool2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	return m.outputShape("maxpool2d", input)
}

// Forward applies max pooling.
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	_, err := m.OutputShape(input.Shape())
	mustForward(err)

	out := m.backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride, m.padding)
	return tensor.New[float32, B](out, m.backend)
}

// Parameters returns nil (MaxPool2D has no trainable parameters).
func (m *MaxPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

func (m *MaxPool2D[B]) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d, padding=%d)", m.kernelSize, m.stride, m.padding)
}

// AvgPool2D is a 2D average pooling layer.
//
// Padded cells count as zeros in the divisor (count_include_pad).
type AvgPool2D[B tensor.Backend] struct {
	window
	backend B
}

// NewAvgPool2D creates a new average pooling layer.
func NewAvgPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *AvgPool2D[B] {
	return &AvgPool2D[B]{
		window:  newWindow("avgpool2d", kernelSize, stride, padding),
		backend: backend,
	}
}

// OutputShape returns the pooled shape.
func (a *AvgPool2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	return a.outputShape("avgpool2d", input)
}

// Forward applies average pooling.
func (a *AvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	_, err := a.OutputShape(input.Shape())
	mustForward(err)

	out := a.backend.AvgPool2D(input.Raw(), a.kernelSize, a.stride, a.padding)
	return tensor.New[float32, B](out, a.backend)
}

// Parameters returns nil.
func (a *AvgPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

func (a *AvgPool2D[B]) String() string {
	return fmt.Sprintf("AvgPool2D(kernel_size=%d, stride=%d, padding=%d)", a.kernelSize, a.stride, a.padding)
}

// AdaptiveAvgPool2D averages each channel down to a fixed output size,
// whatever the input extent.
//
// With output size (1, 1) it is global average pooling.
type AdaptiveAvgPool2D[B tensor.Backend] struct {
	outH, outW int
	backend    B
}

// NewAdaptiveAvgPool2D creates an adaptive average pooling layer.
func NewAdaptiveAvgPool2D[B tensor.Backend](outH, outW int, backend B) *AdaptiveAvgPool2D[B] {
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("adaptiveavgpool2d: invalid output size %dx%d", outH, outW))
	}
	return &AdaptiveAvgPool2D[B]{outH: outH, outW: outW, backend: backend}
}

// OutputShape returns [batch, channels, out_h, out_w].
func (a *AdaptiveAvgPool2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	if len(input) != 4 {
		return nil, rankError("adaptiveavgpool2d", 4, input)
	}
	if input[2] <= 0 || input[3] <= 0 {
		return nil, spatialError("adaptiveavgpool2d", input, a.outH, a.outW)
	}
	return tensor.Shape{input[0], input[1], a.outH, a.outW}, nil
}

// Forward applies adaptive average pooling.
func (a *AdaptiveAvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	_, err := a.OutputShape(input.Shape())
	mustForward(err)

	out := a.backend.AdaptiveAvgPool2D(input.Raw(), a.outH, a.outW)
	return tensor.New[float32, B](out, a.backend)
}

// Parameters returns nil.
func (a *AdaptiveAvgPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

func (a *AdaptiveAvgPool2D[B]) String() string {
	return fmt.Sprintf("AdaptiveAvgPool2D(output_size=(%d, %d))", a.outH, a.outW)
}

// Flatten collapses every dimension after the batch axis: [N, ...] -> [N, prod(...)].
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a new Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// OutputShape returns [batch, features].
func (f *Flatten[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	if len(input) < 2 {
		return nil, fmt.Errorf("flatten: expected at least 2D input, got shape %v: %w", input, tensor.ErrShapeMismatch)
	}
	features := 1
	for _, d := range input[1:] {
		features *= d
	}
	return tensor.Shape{input[0], features}, nil
}

// Forward reshapes the input; the result shares storage with it.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Flatten()
}

// Parameters returns nil.
func (f *Flatten[B]) Parameters() []*Parameter[B] {
	return nil
}

func (f *Flatten[B]) String() string {
	return "Flatten()"
}
