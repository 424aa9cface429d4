// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/convnets/backend/cpu"
	"github.com/born-ml/convnets/nn"
	"github.com/born-ml/convnets/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name   string
		module nn.Module[*cpu.Backend]
		in     tensor.Shape
		out    tensor.Shape
	}{
		{"Linear", nn.NewLinear(10, 5, backend), tensor.Shape{2, 10}, tensor.Shape{2, 5}},
		{"Conv2D", nn.NewConv2D(3, 4, 3, 3, 1, 1, true, backend), tensor.Shape{1, 3, 8, 8}, tensor.Shape{1, 4, 8, 8}},
		{"MaxPool2D", nn.NewMaxPool2D(3, 2, 1, backend), tensor.Shape{1, 2, 8, 8}, tensor.Shape{1, 2, 4, 4}},
		{"AvgPool2D", nn.NewAvgPool2D(2, 2, 0, backend), tensor.Shape{1, 2, 8, 8}, tensor.Shape{1, 2, 4, 4}},
		{"AdaptiveAvgPool2D", nn.NewAdaptiveAvgPool2D(1, 1, backend), tensor.Shape{1, 2, 5, 7}, tensor.Shape{1, 2, 1, 1}},
		{"Sequential", nn.NewSequential[*cpu.Backend](
			nn.NewLinear(10, 5, backend),
			nn.NewReLU[*cpu.Backend](),
			nn.NewSigmoid[*cpu.Backend](),
		), tensor.Shape{2, 10}, tensor.Shape{2, 5}},
		{"Flatten", nn.NewFlatten[*cpu.Backend](), tensor.Shape{2, 3, 4, 4}, tensor.Shape{2, 48}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := tt.module.OutputShape(tt.in)
			require.NoError(t, err)
			assert.True(t, want.Equal(tt.out), "OutputShape = %v", want)

			got := tt.module.Forward(tensor.Randn[float32](tt.in, backend))
			assert.True(t, got.Shape().Equal(tt.out), "Forward = %v", got.Shape())
		})
	}
}

func TestBuildAndStateDict(t *testing.T) {
	backend := cpu.New()
	net, out, err := nn.Build([]nn.LayerDesc{
		nn.Conv(4, 3, 1, 1), nn.ReLULayer,
		nn.MaxPool(2, 2, 0),
		nn.GlobalAvgPool(), nn.FlattenLayer,
		nn.Dense(3),
	}, tensor.Shape{1, 2, 8, 8}, backend)
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{1, 3}))

	nn.Apply[*cpu.Backend](net, nn.InitCNN[*cpu.Backend](rand.New(rand.NewSource(1))))

	sd := nn.StateDict[*cpu.Backend](net)
	assert.Len(t, sd, 4)
	assert.Contains(t, sd, "0.weight")
	assert.Contains(t, sd, "5.bias")
	assert.Equal(t, 4*2*9+4+4*3+3, nn.NumParameters[*cpu.Backend](net))

	require.NoError(t, nn.LoadStateDict[*cpu.Backend](net, sd))
	delete(sd, "5.bias")
	assert.ErrorIs(t, nn.LoadStateDict[*cpu.Backend](net, sd), nn.ErrMissingParameter)

	_, _, err = nn.Build([]nn.LayerDesc{nn.Dense(3)}, tensor.Shape{1, 2, 8, 8}, backend)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestCrossEntropy(t *testing.T) {
	backend := cpu.New()
	logits, err := tensor.FromSlice([]float32{0, 1, 10, 0}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	loss := nn.CrossEntropy(nn.NewCrossEntropyLoss(), logits, []int{0, 0})
	assert.InDelta(t, 0.65667, loss, 1e-3)
	assert.InDelta(t, 0.5, nn.Accuracy(logits, []int{0, 0}), 1e-12)
}
