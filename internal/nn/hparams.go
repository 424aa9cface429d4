package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// ErrInvalidHParams is returned when a model is configured with unusable
// hyperparameters.
var ErrInvalidHParams = errors.New("invalid hyperparameters")

// HParams records the hyperparameters a classifier was constructed with.
//
// The network never reads LR; it is kept for the training loop.
type HParams struct {
	LR         float64 `yaml:"lr" json:"lr"`
	NumClasses int     `yaml:"num_classes" json:"num_classes"`
}

// Validate reports a non-positive class count or a negative learning rate.
func (h HParams) Validate() error {
	if h.NumClasses <= 0 {
		return fmt.Errorf("%w: num_classes must be positive, got %d", ErrInvalidHParams, h.NumClasses)
	}
	if h.LR < 0 {
		return fmt.Errorf("%w: lr must be non-negative, got %g", ErrInvalidHParams, h.LR)
	}
	return nil
}

// InputGeometry is the per-sample input shape a model is defined for.
type InputGeometry struct {
	Channels int `yaml:"in_channels" json:"in_channels"`
	Height   int `yaml:"height" json:"height"`
	Width    int `yaml:"width" json:"width"`
}

// Validate reports any non-positive dimension.
func (g InputGeometry) Validate() error {
	if g.Channels <= 0 || g.Height <= 0 || g.Width <= 0 {
		return fmt.Errorf("%w: input geometry %dx%dx%d must be positive",
			ErrInvalidHParams, g.Channels, g.Height, g.Width)
	}
	return nil
}

// Shape returns the NCHW shape of a batch of the given size.
func (g InputGeometry) Shape(batch int) tensor.Shape {
	return tensor.Shape{batch, g.Channels, g.Height, g.Width}
}
