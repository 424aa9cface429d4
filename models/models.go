// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/models/googlenet"
	"github.com/born-ml/convnets/internal/models/lenet"
	"github.com/born-ml/convnets/internal/tensor"
)

// Classifier maps [N, C, H, W] images to [N, num_classes] logits.
type Classifier[B tensor.Backend] = models.Classifier[B]

// Config is the architecture-independent model configuration.
type Config = models.Config

// Errors.
var (
	ErrUnknownModel = models.ErrUnknownModel
	ErrArchMismatch = models.ErrArchMismatch
)

// Names lists the registered architectures.
func Names() []string {
	return models.Names()
}

// DefaultConfig returns the default configuration for the named model.
func DefaultConfig(name string) (Config, error) {
	return models.DefaultConfig(name)
}

// New builds the named model ("lenet" or "googlenet") on backend.
func New[B tensor.Backend](name string, cfg Config, backend B) (Classifier[B], error) {
	return models.New(name, cfg, backend)
}

// LeNet

// LeNet is LeNet-5 with sigmoid activations and average pooling.
type LeNet[B tensor.Backend] = lenet.LeNet[B]

// LeNetConfig configures a LeNet.
type LeNetConfig = lenet.Config

// DefaultLeNetConfig returns 10 classes, lr 0.1 and 1x32x32 inputs.
func DefaultLeNetConfig() LeNetConfig {
	return lenet.DefaultConfig()
}

// NewLeNet builds a LeNet for cfg.Input.
func NewLeNet[B tensor.Backend](cfg LeNetConfig, backend B) (*LeNet[B], error) {
	return lenet.New(cfg, backend)
}

// GoogLeNet

// GoogLeNet is the Inception network: stem, three Inception stages,
// global average pooling and a linear head.
type GoogLeNet[B tensor.Backend] = googlenet.GoogLeNet[B]

// GoogLeNetConfig configures a GoogLeNet.
type GoogLeNetConfig = googlenet.Config

// DefaultGoogLeNetConfig returns 10 classes, lr 0.1 and 1x96x96 inputs.
func DefaultGoogLeNetConfig() GoogLeNetConfig {
	return googlenet.DefaultConfig()
}

// NewGoogLeNet builds a GoogLeNet for cfg.Input.
func NewGoogLeNet[B tensor.Backend](cfg GoogLeNetConfig, backend B) (*GoogLeNet[B], error) {
	return googlenet.New(cfg, backend)
}

// Inception is the four-branch block whose outputs are concatenated
// along the channel dimension.
type Inception[B tensor.Backend] = googlenet.Inception[B]

// InceptionConfig holds the branch widths c1, (c2a, c2b), (c3a, c3b), c4.
type InceptionConfig = googlenet.InceptionConfig

// NewInception creates an Inception block for inChannels input channels.
func NewInception[B tensor.Backend](inChannels int, cfg InceptionConfig, backend B) *Inception[B] {
	return googlenet.NewInception(inChannels, cfg, backend)
}
