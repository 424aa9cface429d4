// Package models ties the architectures together: a common Classifier
// interface, a name-based registry, per-stage summaries and checkpoints.
package models

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/born-ml/convnets/internal/models/googlenet"
	"github.com/born-ml/convnets/internal/models/lenet"
	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// ErrUnknownModel is returned for architecture names not in the registry.
var ErrUnknownModel = errors.New("unknown model")

// Classifier is an image classifier mapping [N, C, H, W] images to
// [N, num_classes] logits.
type Classifier[B tensor.Backend] interface {
	nn.Container[B]

	// Init redraws every convolution and linear weight from rng.
	Init(rng *rand.Rand)

	// Stages returns the top-level building blocks under readable names.
	Stages() []nn.Child[B]

	HParams() nn.HParams
	Input() nn.InputGeometry

	// Arch returns the registry name of the architecture.
	Arch() string
}

// Config is the architecture-independent model configuration.
type Config struct {
	nn.HParams
	Input nn.InputGeometry
	Seed  int64
}

// Names lists the registered architectures.
func Names() []string {
	return []string{lenet.Name, googlenet.Name}
}

// DefaultConfig returns the default configuration for the named model.
func DefaultConfig(name string) (Config, error) {
	switch name {
	case lenet.Name:
		c := lenet.DefaultConfig()
		return Config{HParams: c.HParams, Input: c.Input, Seed: c.Seed}, nil
	case googlenet.Name:
		c := googlenet.DefaultConfig()
		return Config{HParams: c.HParams, Input: c.Input, Seed: c.Seed}, nil
	default:
		return Config{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownModel, name, Names())
	}
}

// New builds the named model on backend.
func New[B tensor.Backend](name string, cfg Config, backend B) (Classifier[B], error) {
	switch name {
	case lenet.Name:
		m, err := lenet.New(lenet.Config{HParams: cfg.HParams, Input: cfg.Input, Seed: cfg.Seed}, backend)
		if err != nil {
			return nil, err
		}
		return m, nil
	case googlenet.Name:
		m, err := googlenet.New(googlenet.Config{HParams: cfg.HParams, Input: cfg.Input, Seed: cfg.Seed}, backend)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownModel, name, Names())
	}
}
