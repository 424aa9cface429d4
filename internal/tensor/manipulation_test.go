package tensor_test

import (
	"errors"
	"testing"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatShape(t *testing.T) {
	got, err := tensor.CatShape([]tensor.Shape{
		{1, 64, 28, 28},
		{1, 128, 28, 28},
		{1, 32, 28, 28},
		{1, 32, 28, 28},
	}, 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(tensor.Shape{1, 256, 28, 28}), "got %v", got)
}

func TestCatShape_SpatialMismatch(t *testing.T) {
	_, err := tensor.CatShape([]tensor.Shape{
		{1, 64, 28, 28},
		{1, 128, 27, 28},
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))

	var shapeErr *tensor.ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "cat", shapeErr.Op)
	assert.Equal(t, 2, shapeErr.Dim)
	assert.Contains(t, err.Error(), "dimension 2")
}

func TestCatShape_RankMismatch(t *testing.T) {
	_, err := tensor.CatShape([]tensor.Shape{{1, 2, 3}, {1, 2}}, 1)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = tensor.CatShape([]tensor.Shape{{1, 2}}, 5)
	require.Error(t, err)

	_, err = tensor.CatShape(nil, 0)
	require.Error(t, err)
}

func TestCat_ChannelAxis(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 1, 1, 2}, backend)
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{10, 20, 30, 40, 50, 60, 70, 80}, tensor.Shape{2, 2, 1, 2}, backend)
	require.NoError(t, err)

	c, err := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{a, b}, 1)
	require.NoError(t, err)
	assert.True(t, c.Shape().Equal(tensor.Shape{2, 3, 1, 2}))
	assert.Equal(t, []float32{1, 2, 10, 20, 30, 40, 3, 4, 50, 60, 70, 80}, c.Data())
}

func TestCat_RejectsMismatchBeforeCopy(t *testing.T) {
	backend := cpu.New()
	a := tensor.Zeros[float32](tensor.Shape{1, 4, 8, 8}, backend)
	b := tensor.Zeros[float32](tensor.Shape{1, 4, 7, 7}, backend)

	_, err := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{a, b}, 1)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}
