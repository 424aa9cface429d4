// Package googlenet defines GoogLeNet: a convolutional stem, three stages
// of Inception blocks, global average pooling and a linear head.
//
// Architecture for a 1x96x96 input:
//
//	b1: conv7x7/2(64) ReLU maxpool3/2   -> [N,   64, 24, 24]
//	b2: 3x (conv1x1(64) ReLU)           -> [N,   64, 24, 24]
//	b3: 2x Inception, maxpool3/2        -> [N,  480, 12, 12]
//	b4: 5x Inception, maxpool3/2        -> [N,  832,  6,  6]
//	b5: 2x Inception, avgpool, flatten  -> [N, 1024]
//	head: Linear(1024, num_classes)     -> [N, num_classes]
//
// Global average pooling makes the head independent of the input extent,
// so a model built for one geometry accepts any input with the same
// channel count.
package googlenet

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// Name is the architecture identifier used in checkpoints and the registry.
const Name = "googlenet"

// Config configures a GoogLeNet.
type Config struct {
	nn.HParams
	Input nn.InputGeometry

	// Seed drives weight initialization.
	Seed int64
}

// DefaultConfig returns the FashionMNIST setup: 10 classes, lr 0.1,
// single-channel 96x96 inputs.
func DefaultConfig() Config {
	return Config{
		HParams: nn.HParams{LR: 0.1, NumClasses: 10},
		Input:   nn.InputGeometry{Channels: 1, Height: 96, Width: 96},
	}
}

// Validate reports unusable hyperparameters or input geometry.
func (c Config) Validate() error {
	if err := c.HParams.Validate(); err != nil {
		return err
	}
	return c.Input.Validate()
}

// GoogLeNet is the assembled network.
//
// The stages b1..b5 and the head live in one Sequential named "net", so
// parameter paths read like "net.2.0.b2_2.weight".
type GoogLeNet[B tensor.Backend] struct {
	cfg    Config
	net    *nn.Sequential[B]
	stages []nn.Child[B]
}

// New builds a GoogLeNet, threading cfg.Input through every stage to size
// each layer, then applies Xavier initialization seeded by cfg.Seed.
func New[B tensor.Backend](cfg Config, backend B) (*GoogLeNet[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("googlenet: %w", err)
	}

	builders := []struct {
		name  string
		build func(tensor.Shape, B) (*nn.Sequential[B], tensor.Shape, error)
	}{
		{"b1", B1[B]},
		{"b2", B2[B]},
		{"b3", B3[B]},
		{"b4", B4[B]},
		{"b5", B5[B]},
	}

	m := &GoogLeNet[B]{cfg: cfg, net: nn.NewSequential[B]()}
	shape := cfg.Input.Shape(1)
	for _, b := range builders {
		stage, out, err := b.build(shape, backend)
		if err != nil {
			return nil, fmt.Errorf("googlenet: stage %s: %w", b.name, err)
		}
		m.net.Add(stage)
		m.stages = append(m.stages, nn.Child[B]{Name: b.name, Module: stage})
		shape = out
	}

	head := nn.NewLinear(shape[1], cfg.NumClasses, backend)
	m.net.Add(head)
	m.stages = append(m.stages, nn.Child[B]{Name: "head", Module: head})

	m.Init(rand.New(rand.NewSource(cfg.Seed))) //nolint:gosec // weight init, not security-critical
	return m, nil
}

// Init redraws every convolution and linear weight from rng.
// Shapes are unchanged, so it may be applied any number of times.
func (m *GoogLeNet[B]) Init(rng *rand.Rand) {
	nn.Apply[B](m, nn.InitCNN[B](rng))
}

// Forward maps [N, C, H, W] images to [N, num_classes] logits.
//
// Panics if the input does not have the configured channel count or is
// too small for the stem.
func (m *GoogLeNet[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := m.OutputShape(x.Shape()); err != nil {
		panic(err)
	}
	return m.net.Forward(x)
}

// OutputShape returns [N, num_classes] for a valid input shape.
func (m *GoogLeNet[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	out, err := m.net.OutputShape(input)
	if err != nil {
		return nil, fmt.Errorf("googlenet: %w", err)
	}
	return out, nil
}

// Parameters returns every trainable parameter in forward order.
func (m *GoogLeNet[B]) Parameters() []*nn.Parameter[B] {
	return m.net.Parameters()
}

// Children exposes the stage container as "net".
func (m *GoogLeNet[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{{Name: "net", Module: m.net}}
}

// Stages returns b1..b5 and the head, in order.
func (m *GoogLeNet[B]) Stages() []nn.Child[B] {
	return append([]nn.Child[B](nil), m.stages...)
}

// HParams returns the hyperparameters the model was built with.
func (m *GoogLeNet[B]) HParams() nn.HParams {
	return m.cfg.HParams
}

// Input returns the geometry the model was built for.
func (m *GoogLeNet[B]) Input() nn.InputGeometry {
	return m.cfg.Input
}

// Arch returns the architecture identifier.
func (m *GoogLeNet[B]) Arch() string {
	return Name
}

func (m *GoogLeNet[B]) String() string {
	return nn.FormatTree("GoogLeNet", m.stages)
}
