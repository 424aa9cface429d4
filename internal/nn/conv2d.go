package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/convnets/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Example:
//
//	// Create 2D conv: 1 channel -> 6 channels, 5x5 kernel, same padding
//	conv := nn.NewConv2D(1, 6, 5, 5, 1, 2, true, backend)
//
//	input := tensor.Zeros[float32](tensor.Shape{32, 1, 28, 28}, backend)
//	output := conv.Forward(input) // [32, 6, 28, 28]
type Conv2D[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int
	useBias     bool

	weight *Parameter[B] // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter[B] // [out_channels] or nil

	backend B
}

// NewConv2D creates a new 2D convolutional layer with Xavier initialization.
//
// Parameters:
//   - inChannels: Number of input channels
//   - outChannels: Number of output channels (number of filters)
//   - kernelH, kernelW: Kernel dimensions
//   - stride: Stride for convolution (commonly 1 or 2)
//   - padding: Zero padding to apply to input (commonly 0, 1, 2, 3)
//   - useBias: Whether to include bias term
//   - backend: Backend for computation
//
// Initialization:
//   - Weights: Xavier/Glorot uniform initialization
//   - Bias: Zeros
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	c := &Conv2D[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		useBias:     useBias,
		backend:     backend,
	}

	fanIn, fanOut := c.fans()
	weightShape := tensor.Shape{outChannels, inChannels, kernelH, kernelW}
	c.weight = NewParameter("weight", Xavier(fanIn, fanOut, weightShape, backend))

	if useBias {
		c.bias = NewParameter("bias", Zeros(tensor.Shape{outChannels}, backend))
	}

	return c
}

// fans returns the Xavier fan-in and fan-out of the kernel.
//
//	fan_in = in_channels * kernel_h * kernel_w
//	fan_out = out_channels * kernel_h * kernel_w
func (c *Conv2D[B]) fans() (int, int) {
	area := c.kernelSize[0] * c.kernelSize[1]
	return c.inChannels * area, c.outChannels * area
}

// resetWeights redraws the kernel from the Xavier uniform distribution.
// The bias is left untouched.
func (c *Conv2D[B]) resetWeights(rng *rand.Rand) {
	fanIn, fanOut := c.fans()
	xavierFill(rng, c.weight.Tensor().Data(), fanIn, fanOut)
}

// OutputShape returns [batch, out_channels, out_h, out_w] for a valid input.
func (c *Conv2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	if len(input) != 4 {
		return nil, rankError("conv2d", 4, input)
	}
	if input[1] != c.inChannels {
		return nil, fmt.Errorf("conv2d: input channels %d != expected %d: %w",
			input[1], c.inChannels, tensor.ErrShapeMismatch)
	}
	outH := tensor.ConvOutputSize(input[2], c.kernelSize[0], c.stride, c.padding)
	outW := tensor.ConvOutputSize(input[3], c.kernelSize[1], c.stride, c.padding)
	if outH <= 0 || outW <= 0 {
		return nil, spatialError("conv2d", input, outH, outW)
	}
	return tensor.Shape{input[0], c.outChannels, outH, outW}, nil
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	_, err := c.OutputShape(input.Shape())
	mustForward(err)

	outputRaw := c.backend.Conv2D(
		input.Raw(),
		c.weight.Tensor().Raw(),
		c.stride,
		c.padding,
	)
	output := tensor.New[float32, B](outputRaw, c.backend)

	if c.useBias {
		// [out_channels] -> [1, out_channels, 1, 1] broadcasts over batch and space.
		output = output.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1))
	}

	return output
}

// Parameters returns all trainable parameters.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.useBias {
		return []*Parameter[B]{c.weight, c.bias}
	}
	return []*Parameter[B]{c.weight}
}

// String returns a string representation of the layer.
func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=%d, padding=%d, bias=%v)",
		c.inChannels, c.outChannels,
		c.kernelSize[0], c.kernelSize[1],
		c.stride, c.padding, c.useBias)
}

// Weight returns the kernel parameter.
func (c *Conv2D[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter, or nil.
func (c *Conv2D[B]) Bias() *Parameter[B] {
	return c.bias
}

// OutChannels returns the number of output channels.
func (c *Conv2D[B]) OutChannels() int {
	return c.outChannels
}

// InChannels returns the number of input channels.
func (c *Conv2D[B]) InChannels() int {
	return c.inChannels
}

// KernelSize returns the kernel size [height, width].
func (c *Conv2D[B]) KernelSize() [2]int {
	return c.kernelSize
}

// Stride returns the stride.
func (c *Conv2D[B]) Stride() int {
	return c.stride
}

// Padding returns the padding.
func (c *Conv2D[B]) Padding() int {
	return c.padding
}
