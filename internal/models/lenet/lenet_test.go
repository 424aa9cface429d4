package lenet

import (
	"math/rand"
	"testing"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendT = *cpu.CPUBackend

func TestLeNet_ForwardScenario(t *testing.T) {
	backend := cpu.New()
	model, err := New(DefaultConfig(), backend)
	require.NoError(t, err)

	x := tensor.RandnWith[float32](rand.New(rand.NewSource(1)), tensor.Shape{1, 1, 32, 32}, backend)
	out := model.Forward(x)

	assert.True(t, out.Shape().Equal(tensor.Shape{1, 10}), "got %v", out.Shape())
}

func TestLeNet_ParameterCount(t *testing.T) {
	model, err := New(DefaultConfig(), cpu.New())
	require.NoError(t, err)

	// 156 + 2416 + 69240 + 12100 + 1010
	assert.Equal(t, 84922, nn.NumParameters[backendT](model))
	assert.Len(t, model.Parameters(), 10)
}

func TestLeNet_Geometries(t *testing.T) {
	tests := []struct {
		name     string
		input    nn.InputGeometry
		classes  int
		batch    int
		features int
	}{
		{"fashion mnist resized", nn.InputGeometry{Channels: 1, Height: 32, Width: 32}, 10, 4, 576},
		{"mnist native", nn.InputGeometry{Channels: 1, Height: 28, Width: 28}, 10, 2, 400},
		{"rgb non-square", nn.InputGeometry{Channels: 3, Height: 40, Width: 36}, 7, 3, 16 * 8 * 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Input = tt.input
			cfg.NumClasses = tt.classes

			model, err := New(cfg, cpu.New())
			require.NoError(t, err)

			fc1, ok := model.Stages()[7].Module.(*nn.Linear[backendT])
			require.True(t, ok)
			assert.Equal(t, tt.features, fc1.InFeatures())

			out := model.Forward(tensor.Zeros[float32](tt.input.Shape(tt.batch), cpu.New()))
			assert.True(t, out.Shape().Equal(tensor.Shape{tt.batch, tt.classes}))
		})
	}
}

func TestLeNet_RejectsOtherGeometry(t *testing.T) {
	model, err := New(DefaultConfig(), cpu.New())
	require.NoError(t, err)

	_, err = model.OutputShape(tensor.Shape{1, 1, 64, 64})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	assert.Panics(t, func() {
		model.Forward(tensor.Zeros[float32](tensor.Shape{1, 1, 28, 28}, cpu.New()))
	})

	cfg := DefaultConfig()
	cfg.Input.Height, cfg.Input.Width = 8, 8
	_, err = New(cfg, cpu.New())
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestLeNet_SigmoidBoundsHiddenActivations(t *testing.T) {
	backend := cpu.New()
	model, err := New(DefaultConfig(), backend)
	require.NoError(t, err)

	x := tensor.RandnWith[float32](rand.New(rand.NewSource(3)), tensor.Shape{2, 1, 32, 32}, backend)
	// Run up to and including the last hidden sigmoid.
	for _, stage := range model.Stages()[:11] {
		x = stage.Module.Forward(x)
	}
	require.True(t, x.Shape().Equal(tensor.Shape{2, 100}))
	for _, v := range x.Data() {
		require.Greater(t, v, float32(0))
		require.Less(t, v, float32(1))
	}
}

func TestLeNet_ReinitKeepsShapes(t *testing.T) {
	backend := cpu.New()
	model, err := New(DefaultConfig(), backend)
	require.NoError(t, err)

	x := tensor.Zeros[float32](tensor.Shape{3, 1, 32, 32}, backend)
	before := model.Forward(x).Shape()
	w := append([]float32(nil), model.Parameters()[0].Tensor().Data()...)

	model.Init(rand.New(rand.NewSource(99)))
	model.Init(rand.New(rand.NewSource(100)))

	assert.True(t, model.Forward(x).Shape().Equal(before))
	assert.NotEqual(t, w, model.Parameters()[0].Tensor().Data())
}

func TestLeNet_Metadata(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LR = 0.05
	model, err := New(cfg, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, nn.HParams{LR: 0.05, NumClasses: 10}, model.HParams())
	assert.Equal(t, Name, model.Arch())
	assert.Contains(t, nn.StateDict[backendT](model), "net.11.bias")
	assert.Contains(t, model.String(), "(fc3): Linear(in_features=100, out_features=10, bias=true)")

	cfg.LR = -1
	_, err = New(cfg, cpu.New())
	assert.ErrorIs(t, err, nn.ErrInvalidHParams)
}
