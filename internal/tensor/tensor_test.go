package tensor_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 4, tensor.Float32.Size())
	assert.Equal(t, 8, tensor.Float64.Size())
	assert.Equal(t, "float32", tensor.Float32.String())
	assert.Equal(t, "float64", tensor.Float64.String())
}

func TestShape_NumElementsAndStrides(t *testing.T) {
	s := tensor.Shape{2, 3, 4, 5}
	assert.Equal(t, 120, s.NumElements())
	assert.Equal(t, []int{60, 20, 5, 1}, s.ComputeStrides())
	assert.Equal(t, 1, tensor.Shape{}.NumElements())

	require.Error(t, tensor.Shape{2, 0}.Validate())
	require.NoError(t, s.Validate())

	assert.True(t, s.WithDim(1, 7).Equal(tensor.Shape{2, 7, 4, 5}))
	assert.True(t, s.Equal(tensor.Shape{2, 3, 4, 5}), "WithDim must not mutate the receiver")
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false, false},
		{"conv bias", tensor.Shape{2, 6, 4, 4}, tensor.Shape{1, 6, 1, 1}, tensor.Shape{2, 6, 4, 4}, true, false},
		{"linear bias", tensor.Shape{8, 120}, tensor.Shape{1, 120}, tensor.Shape{8, 120}, true, false},
		{"rank extend", tensor.Shape{8, 120}, tensor.Shape{120}, tensor.Shape{8, 120}, true, false},
		{"incompatible", tensor.Shape{3, 4}, tensor.Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestConvOutputSize(t *testing.T) {
	assert.Equal(t, 48, tensor.ConvOutputSize(96, 7, 2, 3))
	assert.Equal(t, 24, tensor.ConvOutputSize(48, 3, 2, 1))
	assert.Equal(t, 28, tensor.ConvOutputSize(28, 3, 1, 1))
	assert.Equal(t, 12, tensor.ConvOutputSize(16, 5, 1, 0))
}

func TestFromSliceAndAt(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, float32(6), x.At(1, 2))

	x.Set(42, 0, 1)
	assert.Equal(t, float32(42), x.Data()[1])

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 3}, backend)
	require.Error(t, err)

	assert.Panics(t, func() { x.At(2, 0) })
}

func TestClone_IsDeep(t *testing.T) {
	backend := cpu.New()
	x := tensor.Full[float32](tensor.Shape{4}, 1, backend)
	y := x.Clone()
	y.Data()[0] = 9
	assert.Equal(t, float32(1), x.Data()[0])
}

func TestReshapeAndFlatten(t *testing.T) {
	backend := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{8, 16, 6, 6}, backend)

	assert.True(t, x.Reshape(8, -1).Shape().Equal(tensor.Shape{8, 576}))
	assert.True(t, x.Flatten().Shape().Equal(tensor.Shape{8, 576}))
	assert.Panics(t, func() { x.Reshape(7, -1) })
	assert.Panics(t, func() { x.Reshape(-1, -1) })
	assert.Panics(t, func() { tensor.Zeros[float32](tensor.Shape{4}, backend).Flatten() })
}

func TestRandnWith_Deterministic(t *testing.T) {
	backend := cpu.New()
	a := tensor.RandnWith[float32](rand.New(rand.NewSource(7)), tensor.Shape{3, 5}, backend)
	b := tensor.RandnWith[float32](rand.New(rand.NewSource(7)), tensor.Shape{3, 5}, backend)
	assert.Equal(t, a.Data(), b.Data())
}

func TestUniform_Bounds(t *testing.T) {
	backend := cpu.New()
	u := tensor.Uniform[float64](rand.New(rand.NewSource(1)), tensor.Shape{1000}, -0.5, 0.5, backend)
	for _, v := range u.Data() {
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 0.5)
	}
}
