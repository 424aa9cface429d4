// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/tensor"
)

// Summary is the stage-by-stage shape and parameter report of a model.
type Summary = models.Summary

// StageSummary describes one top-level stage.
type StageSummary = models.StageSummary

// Summarize threads input through the stages of m by shape inference.
//
// Example:
//
//	s, err := models.Summarize(m, tensor.Shape{1, 1, 96, 96})
//	fmt.Print(s)
func Summarize[B tensor.Backend](m Classifier[B], input tensor.Shape) (*Summary, error) {
	return models.Summarize(m, input)
}

// CheckpointInfo describes a checkpoint file.
type CheckpointInfo = models.CheckpointInfo

// SaveCheckpoint writes the weights of m to a SafeTensors file.
func SaveCheckpoint[B tensor.Backend](path string, m Classifier[B]) (*CheckpointInfo, error) {
	return models.SaveCheckpoint(path, m)
}

// LoadCheckpoint restores the weights of m from path after verifying the
// checksum and the architecture.
func LoadCheckpoint[B tensor.Backend](path string, m Classifier[B]) (*CheckpointInfo, error) {
	return models.LoadCheckpoint(path, m)
}

// ReadCheckpointInfo reads and verifies a checkpoint without loading it.
func ReadCheckpointInfo(path string) (*CheckpointInfo, error) {
	return models.ReadCheckpointInfo(path)
}
