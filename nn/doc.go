// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers and building blocks of the convnets models.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D, Linear, MaxPool2D, AvgPool2D, AdaptiveAvgPool2D, Flatten
//   - Activations: ReLU, Sigmoid
//   - Containers: Sequential, plus the declarative LayerDesc table and Build
//   - Initialization: Xavier, InitCNN, Apply
//   - State dicts: NamedParameters, StateDict, LoadStateDict, NumParameters
//   - Evaluation: CrossEntropy, Accuracy (forward only)
//
// # Basic Usage
//
//	backend := cpu.New()
//
//	// Layer sizes follow from the declared input shape.
//	net, out, err := nn.Build([]nn.LayerDesc{
//	    nn.Conv(6, 5, 1, 2), nn.SigmoidLayer,
//	    nn.AvgPool(2, 2, 0),
//	    nn.FlattenLayer,
//	    nn.Dense(10),
//	}, tensor.Shape{1, 1, 28, 28}, backend)
//
//	logits := net.Forward(x) // out == [1, 10]
//
// Forward panics on inputs a layer cannot accept. OutputShape reports the
// same problem as an error wrapping tensor.ErrShapeMismatch without running
// any kernel.
package nn
