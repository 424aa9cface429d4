// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models_test

import (
	"path/filepath"
	"testing"

	"github.com/born-ml/convnets/backend/cpu"
	"github.com/born-ml/convnets/models"
	"github.com/born-ml/convnets/nn"
	"github.com/born-ml/convnets/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeNetForward(t *testing.T) {
	backend := cpu.New()
	m, err := models.NewLeNet(models.DefaultLeNetConfig(), backend)
	require.NoError(t, err)

	out := m.Forward(tensor.Randn[float32](tensor.Shape{1, 1, 32, 32}, backend))
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 10}))
}

func TestInceptionChannels(t *testing.T) {
	backend := cpu.NewWithWorkers(1)
	block := models.NewInception(192, models.InceptionConfig{
		C1: 64, C2: [2]int{96, 128}, C3: [2]int{16, 32}, C4: 32,
	}, backend)

	out, err := block.OutputShape(tensor.Shape{1, 192, 28, 28})
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{1, 256, 28, 28}))
	assert.Equal(t, 163696, nn.NumParameters[*cpu.Backend](block))
}

func TestRegistryAndCheckpoint(t *testing.T) {
	backend := cpu.New()
	cfg, err := models.DefaultConfig("googlenet")
	require.NoError(t, err)

	m, err := models.New("googlenet", cfg, backend)
	require.NoError(t, err)

	s, err := models.Summarize(m, tensor.Shape{1, 1, 96, 96})
	require.NoError(t, err)
	assert.Equal(t, 5848442, s.Total)

	path := filepath.Join(t.TempDir(), "googlenet.safetensors")
	saved, err := models.SaveCheckpoint(path, m)
	require.NoError(t, err)

	info, err := models.ReadCheckpointInfo(path)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, info.ID)
	assert.Equal(t, "googlenet", info.Arch)

	_, err = models.New("resnet", cfg, backend)
	assert.ErrorIs(t, err, models.ErrUnknownModel)
}
