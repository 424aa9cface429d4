// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides the LeNet and GoogLeNet image classifiers.
//
// # Basic Usage
//
//	backend := cpu.New()
//
//	m, err := models.NewGoogLeNet(models.DefaultGoogLeNetConfig(), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	x := tensor.Randn[float32](tensor.Shape{2, 1, 96, 96}, backend)
//	logits := m.Forward(x) // [2, 10]
//
// Models can also be built by name through New, inspected with Summarize,
// and persisted with SaveCheckpoint and LoadCheckpoint (SafeTensors files
// carrying the architecture name, a checkpoint id and a SHA-256 of the
// weights).
package models
