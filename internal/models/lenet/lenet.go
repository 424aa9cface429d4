// Package lenet defines LeNet-5 with sigmoid activations and average pooling.
package lenet

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// Name is the architecture identifier used in checkpoints and the registry.
const Name = "lenet"

// layers is the LeNet layer table. Channel and feature counts flow from
// the declared input geometry.
//
// For a 1x32x32 input:
//
//	Conv 5x5 pad 2 -> 6      [N,  6, 32, 32]
//	Sigmoid, AvgPool 2/2     [N,  6, 16, 16]
//	Conv 5x5 -> 16           [N, 16, 12, 12]
//	Sigmoid, AvgPool 2/2     [N, 16,  6,  6]
//	Flatten                  [N, 576]
//	Linear 120, Sigmoid
//	Linear 100, Sigmoid
//	Linear num_classes       [N, num_classes]
func layers(numClasses int) []nn.LayerDesc {
	return []nn.LayerDesc{
		nn.Conv(6, 5, 1, 2), nn.SigmoidLayer,
		nn.AvgPool(2, 2, 0),
		nn.Conv(16, 5, 1, 0), nn.SigmoidLayer,
		nn.AvgPool(2, 2, 0),
		nn.FlattenLayer,
		nn.Dense(120), nn.SigmoidLayer,
		nn.Dense(100), nn.SigmoidLayer,
		nn.Dense(numClasses),
	}
}

// layerNames labels the table rows for summaries.
var layerNames = []string{
	"conv1", "sigmoid1", "pool1",
	"conv2", "sigmoid2", "pool2",
	"flatten",
	"fc1", "sigmoid3",
	"fc2", "sigmoid4",
	"fc3",
}

// Config configures a LeNet.
type Config struct {
	nn.HParams
	Input nn.InputGeometry

	// Seed drives weight initialization.
	Seed int64
}

// DefaultConfig returns the FashionMNIST setup: 10 classes, lr 0.1,
// single-channel 32x32 inputs.
func DefaultConfig() Config {
	return Config{
		HParams: nn.HParams{LR: 0.1, NumClasses: 10},
		Input:   nn.InputGeometry{Channels: 1, Height: 32, Width: 32},
	}
}

// Validate reports unusable hyperparameters or input geometry.
func (c Config) Validate() error {
	if err := c.HParams.Validate(); err != nil {
		return err
	}
	return c.Input.Validate()
}

// LeNet is a LeNet-5 classifier.
//
// The first Linear layer is sized for the configured input geometry, so
// Forward accepts exactly [N, C, H, W] with the configured C, H and W.
type LeNet[B tensor.Backend] struct {
	cfg Config
	net *nn.Sequential[B]
}

// New builds a LeNet for cfg.Input and applies Xavier initialization
// seeded by cfg.Seed.
//
// Inputs too small for the two valid-conv/pool rounds are rejected here.
func New[B tensor.Backend](cfg Config, backend B) (*LeNet[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("lenet: %w", err)
	}

	net, _, err := nn.Build(layers(cfg.NumClasses), cfg.Input.Shape(1), backend)
	if err != nil {
		return nil, fmt.Errorf("lenet: input %dx%dx%d: %w",
			cfg.Input.Channels, cfg.Input.Height, cfg.Input.Width, err)
	}

	m := &LeNet[B]{cfg: cfg, net: net}
	m.Init(rand.New(rand.NewSource(cfg.Seed))) //nolint:gosec // weight init, not security-critical
	return m, nil
}

// Init redraws every convolution and linear weight from rng.
func (m *LeNet[B]) Init(rng *rand.Rand) {
	nn.Apply[B](m, nn.InitCNN[B](rng))
}

// Forward maps [N, C, H, W] images to [N, num_classes] logits.
func (m *LeNet[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := m.OutputShape(x.Shape()); err != nil {
		panic(err)
	}
	return m.net.Forward(x)
}

// OutputShape returns [N, num_classes] for inputs of the configured geometry.
func (m *LeNet[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	out, err := m.net.OutputShape(input)
	if err != nil {
		return nil, fmt.Errorf("lenet: %w", err)
	}
	return out, nil
}

// Parameters returns every trainable parameter in forward order.
func (m *LeNet[B]) Parameters() []*nn.Parameter[B] {
	return m.net.Parameters()
}

// Children exposes the layer stack as "net".
func (m *LeNet[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{{Name: "net", Module: m.net}}
}

// Stages returns the layers under readable names.
func (m *LeNet[B]) Stages() []nn.Child[B] {
	children := m.net.Children()
	for i := range children {
		children[i].Name = layerNames[i]
	}
	return children
}

// HParams returns the hyperparameters the model was built with.
func (m *LeNet[B]) HParams() nn.HParams {
	return m.cfg.HParams
}

// Input returns the geometry the model was built for.
func (m *LeNet[B]) Input() nn.InputGeometry {
	return m.cfg.Input
}

// Arch returns the architecture identifier.
func (m *LeNet[B]) Arch() string {
	return Name
}

func (m *LeNet[B]) String() string {
	return nn.FormatTree("LeNet", m.Stages())
}
