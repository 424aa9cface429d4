package googlenet

import (
	"fmt"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// InceptionConfig holds the output channel counts of the four branches.
//
//	C1: 1x1 conv
//	C2: 1x1 reduce, then 3x3 conv
//	C3: 1x1 reduce, then 5x5 conv
//	C4: 1x1 conv after 3x3 max pooling
type InceptionConfig struct {
	C1 int
	C2 [2]int
	C3 [2]int
	C4 int
}

// OutChannels returns the channel count of the concatenated output.
func (c InceptionConfig) OutChannels() int {
	return c.C1 + c.C2[1] + c.C3[1] + c.C4
}

func (c InceptionConfig) String() string {
	return fmt.Sprintf("(%d, (%d, %d), (%d, %d), %d)", c.C1, c.C2[0], c.C2[1], c.C3[0], c.C3[1], c.C4)
}

// Inception is a four-branch block whose outputs are concatenated on the
// channel axis:
//
//	branch 1: conv1x1(c1) -> ReLU
//	branch 2: conv1x1(c2[0]) -> conv3x3 pad 1 (c2[1]) -> ReLU
//	branch 3: conv1x1(c3[0]) -> conv5x5 pad 2 (c3[1]) -> ReLU
//	branch 4: maxpool3x3 stride 1 pad 1 -> conv1x1(c4) -> ReLU
//
// Every branch reads the block input and preserves its height and width,
// so the output is [N, c1+c2[1]+c3[1]+c4, H, W].
type Inception[B tensor.Backend] struct {
	cfg        InceptionConfig
	inChannels int

	b1   *nn.Conv2D[B]
	b2r  *nn.Conv2D[B] // 1x1 reduce
	b2   *nn.Conv2D[B]
	b3r  *nn.Conv2D[B] // 1x1 reduce
	b3   *nn.Conv2D[B]
	b4p  *nn.MaxPool2D[B]
	b4   *nn.Conv2D[B]
	relu *nn.ReLU[B]
}

// NewInception creates an Inception block for inputs with inChannels channels.
//
// Panics if any channel count is not positive.
func NewInception[B tensor.Backend](inChannels int, cfg InceptionConfig, backend B) *Inception[B] {
	return &Inception[B]{
		cfg:        cfg,
		inChannels: inChannels,
		b1:         nn.NewConv2D(inChannels, cfg.C1, 1, 1, 1, 0, true, backend),
		b2r:        nn.NewConv2D(inChannels, cfg.C2[0], 1, 1, 1, 0, true, backend),
		b2:         nn.NewConv2D(cfg.C2[0], cfg.C2[1], 3, 3, 1, 1, true, backend),
		b3r:        nn.NewConv2D(inChannels, cfg.C3[0], 1, 1, 1, 0, true, backend),
		b3:         nn.NewConv2D(cfg.C3[0], cfg.C3[1], 5, 5, 1, 2, true, backend),
		b4p:        nn.NewMaxPool2D(3, 1, 1, backend),
		b4:         nn.NewConv2D(inChannels, cfg.C4, 1, 1, 1, 0, true, backend),
		relu:       nn.NewReLU[B](),
	}
}

// Config returns the branch channel configuration.
func (m *Inception[B]) Config() InceptionConfig {
	return m.cfg
}

// branchPaths lists each branch's modules in application order.
func (m *Inception[B]) branchPaths() [4][]nn.Module[B] {
	return [4][]nn.Module[B]{
		{m.b1, m.relu},
		{m.b2r, m.b2, m.relu},
		{m.b3r, m.b3, m.relu},
		{m.b4p, m.b4, m.relu},
	}
}

// OutputShape checks every branch and the concatenation without running
// any kernel.
func (m *Inception[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	var shapes []tensor.Shape
	for i, path := range m.branchPaths() {
		shape := input
		for _, layer := range path {
			next, err := layer.OutputShape(shape)
			if err != nil {
				return nil, fmt.Errorf("inception branch %d: %w", i+1, err)
			}
			shape = next
		}
		shapes = append(shapes, shape)
	}
	out, err := tensor.CatShape(shapes, 1)
	if err != nil {
		return nil, fmt.Errorf("inception: %w", err)
	}
	return out, nil
}

// Branches runs the four branches on x and returns their outputs in order.
func (m *Inception[B]) Branches(x *tensor.Tensor[float32, B]) [4]*tensor.Tensor[float32, B] {
	var outs [4]*tensor.Tensor[float32, B]
	for i, path := range m.branchPaths() {
		y := x
		for _, layer := range path {
			y = layer.Forward(y)
		}
		outs[i] = y
	}
	return outs
}

// Forward concatenates the branch outputs on the channel axis.
//
// Panics with a *tensor.ShapeError if the branches disagree on height or
// width, which means the block topology is broken.
func (m *Inception[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	branches := m.Branches(x)
	out, err := tensor.Cat(branches[:], 1)
	if err != nil {
		panic(fmt.Errorf("inception: %w", err))
	}
	return out
}

// Parameters returns the parameters of all branch convolutions.
func (m *Inception[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, c := range m.Children() {
		params = append(params, c.Module.Parameters()...)
	}
	return params
}

// Children returns the branch layers under their state dict names.
func (m *Inception[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{
		{Name: "b1", Module: m.b1},
		{Name: "b2_1", Module: m.b2r},
		{Name: "b2_2", Module: m.b2},
		{Name: "b3_1", Module: m.b3r},
		{Name: "b3_2", Module: m.b3},
		{Name: "b4_1", Module: m.b4p},
		{Name: "b4_2", Module: m.b4},
	}
}

func (m *Inception[B]) String() string {
	return fmt.Sprintf("Inception(in_channels=%d, out_channels=%d, config=%s)",
		m.inChannels, m.cfg.OutChannels(), m.cfg)
}
