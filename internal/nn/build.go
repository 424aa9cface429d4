package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Kind identifies the layer a LayerDesc describes.
type Kind int

// Layer kinds understood by Build.
const (
	KindConv2D Kind = iota
	KindLinear
	KindMaxPool2D
	KindAvgPool2D
	KindAdaptiveAvgPool2D
	KindFlatten
	KindReLU
	KindSigmoid
)

var kindNames = [...]string{
	KindConv2D:            "conv2d",
	KindLinear:            "linear",
	KindMaxPool2D:         "maxpool2d",
	KindAvgPool2D:         "avgpool2d",
	KindAdaptiveAvgPool2D: "adaptiveavgpool2d",
	KindFlatten:           "flatten",
	KindReLU:              "relu",
	KindSigmoid:           "sigmoid",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ErrInvalidLayer is returned by Build for a descriptor it cannot construct.
var ErrInvalidLayer = errors.New("invalid layer descriptor")

// LayerDesc declares one layer of a network without fixing its input size.
//
// Input channels and features come from the shape Build threads through
// the table, so a descriptor only states what the layer produces.
//
// Field use by kind:
//   - Conv2D: Out, Kernel, Stride, Padding
//   - Linear: Out
//   - MaxPool2D, AvgPool2D: Kernel, Stride, Padding
//   - AdaptiveAvgPool2D: Out (square output size)
type LayerDesc struct {
	Kind    Kind
	Out     int
	Kernel  int
	Stride  int
	Padding int
}

// Conv describes a square convolution with bias.
func Conv(out, kernel, stride, padding int) LayerDesc {
	return LayerDesc{Kind: KindConv2D, Out: out, Kernel: kernel, Stride: stride, Padding: padding}
}

// Dense describes a fully connected layer.
func Dense(out int) LayerDesc {
	return LayerDesc{Kind: KindLinear, Out: out}
}

// MaxPool describes a square max pooling window.
func MaxPool(kernel, stride, padding int) LayerDesc {
	return LayerDesc{Kind: KindMaxPool2D, Kernel: kernel, Stride: stride, Padding: padding}
}

// AvgPool describes a square average pooling window.
func AvgPool(kernel, stride, padding int) LayerDesc {
	return LayerDesc{Kind: KindAvgPool2D, Kernel: kernel, Stride: stride, Padding: padding}
}

// GlobalAvgPool describes adaptive average pooling to 1x1.
func GlobalAvgPool() LayerDesc {
	return LayerDesc{Kind: KindAdaptiveAvgPool2D, Out: 1}
}

// Parameter-free descriptors.
var (
	FlattenLayer = LayerDesc{Kind: KindFlatten}
	ReLULayer    = LayerDesc{Kind: KindReLU}
	SigmoidLayer = LayerDesc{Kind: KindSigmoid}
)

// Build constructs a Sequential from descs for inputs of shape in.
//
// Each layer is sized from the shape produced by the layers before it, so
// the first Linear after a Flatten gets exactly the flattened feature
// count. Build returns the output shape of the whole stack, or an error
// naming the first descriptor that cannot accept its input.
func Build[B tensor.Backend](descs []LayerDesc, in tensor.Shape, backend B) (*Sequential[B], tensor.Shape, error) {
	seq := NewSequential[B]()
	shape := in.Clone()

	for i, d := range descs {
		layer, err := buildLayer(d, shape, backend)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d (%s): %w", i, d.Kind, err)
		}
		next, err := layer.OutputShape(shape)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d (%s): %w", i, d.Kind, err)
		}
		seq.Add(layer)
		shape = next
	}

	return seq, shape, nil
}

// buildLayer creates the layer d describes for an input of shape in.
// Descriptor values the constructors would panic on are reported as errors.
func buildLayer[B tensor.Backend](d LayerDesc, in tensor.Shape, backend B) (Module[B], error) {
	switch d.Kind {
	case KindConv2D:
		if len(in) != 4 {
			return nil, rankError("conv2d", 4, in)
		}
		if d.Out <= 0 || d.Kernel <= 0 || d.Stride <= 0 || d.Padding < 0 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidLayer, d)
		}
		return NewConv2D(in[1], d.Out, d.Kernel, d.Kernel, d.Stride, d.Padding, true, backend), nil
	case KindLinear:
		if len(in) != 2 {
			return nil, rankError("linear", 2, in)
		}
		if d.Out <= 0 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidLayer, d)
		}
		return NewLinear(in[1], d.Out, backend), nil
	case KindMaxPool2D, KindAvgPool2D:
		if d.Kernel <= 0 || d.Stride <= 0 || d.Padding < 0 || d.Padding > d.Kernel/2 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidLayer, d)
		}
		if d.Kind == KindMaxPool2D {
			return NewMaxPool2D(d.Kernel, d.Stride, d.Padding, backend), nil
		}
		return NewAvgPool2D(d.Kernel, d.Stride, d.Padding, backend), nil
	case KindAdaptiveAvgPool2D:
		if d.Out <= 0 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidLayer, d)
		}
		return NewAdaptiveAvgPool2D(d.Out, d.Out, backend), nil
	case KindFlatten:
		return NewFlatten[B](), nil
	case KindReLU:
		return NewReLU[B](), nil
	case KindSigmoid:
		return NewSigmoid[B](), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrInvalidLayer, d.Kind)
	}
}
