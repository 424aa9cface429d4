package nn

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendT = *cpu.CPUBackend

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor[float32, backendT] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, cpu.New())
	require.NoError(t, err)
	return x
}

// TestParameter tests Parameter creation and methods.
func TestParameter(t *testing.T) {
	data := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})
	param := NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Equal(t, 3, param.NumElements())
}

func TestConv2D_ForwardAddsBias(t *testing.T) {
	backend := cpu.New()

	// 1x1 kernel, 1 -> 2 channels: channel 0 doubles, channel 1 negates.
	conv := NewConv2D(1, 2, 1, 1, 1, 0, true, backend)
	copy(conv.Weight().Tensor().Data(), []float32{2, -1})
	copy(conv.Bias().Tensor().Data(), []float32{0.5, 1})

	input := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	output := conv.Forward(input)

	require.True(t, output.Shape().Equal(tensor.Shape{1, 2, 2, 2}))
	assert.Equal(t, []float32{
		2.5, 4.5, 6.5, 8.5,
		0, -1, -2, -3,
	}, output.Data())
}

func TestConv2D_Shapes(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name                    string
		in, out, k, stride, pad int
		input, want             tensor.Shape
	}{
		{"stem", 3, 64, 7, 2, 3, tensor.Shape{2, 3, 96, 96}, tensor.Shape{2, 64, 48, 48}},
		{"same 3x3", 64, 192, 3, 1, 1, tensor.Shape{1, 64, 24, 24}, tensor.Shape{1, 192, 24, 24}},
		{"lenet valid 5x5", 6, 16, 5, 1, 0, tensor.Shape{1, 6, 16, 16}, tensor.Shape{1, 16, 12, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConv2D(tt.in, tt.out, tt.k, tt.k, tt.stride, tt.pad, true, backend)
			got, err := conv.OutputShape(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			assert.Len(t, conv.Parameters(), 2)
		})
	}
}

func TestConv2D_RejectsBadInput(t *testing.T) {
	conv := NewConv2D(3, 8, 3, 3, 1, 1, true, cpu.New())

	_, err := conv.OutputShape(tensor.Shape{1, 4, 8, 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
	assert.Contains(t, err.Error(), "input channels 4 != expected 3")

	_, err = conv.OutputShape(tensor.Shape{4, 8, 8})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	assert.Panics(t, func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{1, 4, 8, 8}, cpu.New()))
	})
	assert.Panics(t, func() { NewConv2D(0, 8, 3, 3, 1, 1, true, cpu.New()) })
}

func TestLinear_Forward(t *testing.T) {
	layer := NewLinear(2, 3, cpu.New())
	copy(layer.Weight().Tensor().Data(), []float32{1, 2, 3, 4, 5, 6})
	copy(layer.Bias().Tensor().Data(), []float32{1, 1, 1})

	input := fromSlice(t, []float32{1, 1, 2, 0}, tensor.Shape{2, 2})
	output := layer.Forward(input)

	require.True(t, output.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{4, 8, 12, 3, 7, 11}, output.Data())

	_, err := layer.OutputShape(tensor.Shape{2, 5})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestPoolingLayers(t *testing.T) {
	backend := cpu.New()
	input := tensor.Zeros[float32](tensor.Shape{2, 4, 12, 12}, backend)

	maxPool := NewMaxPool2D(3, 2, 1, backend)
	assert.True(t, maxPool.Forward(input).Shape().Equal(tensor.Shape{2, 4, 6, 6}))

	avgPool := NewAvgPool2D(2, 2, 0, backend)
	assert.True(t, avgPool.Forward(input).Shape().Equal(tensor.Shape{2, 4, 6, 6}))

	global := NewAdaptiveAvgPool2D(1, 1, backend)
	assert.True(t, global.Forward(input).Shape().Equal(tensor.Shape{2, 4, 1, 1}))

	_, err := maxPool.OutputShape(tensor.Shape{1, 1, 12})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = NewAvgPool2D(5, 1, 0, backend).OutputShape(tensor.Shape{1, 1, 3, 3})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	assert.Panics(t, func() { NewMaxPool2D(3, 1, 2, backend) })
	assert.Empty(t, maxPool.Parameters())
}

func TestFlatten(t *testing.T) {
	x := tensor.Zeros[float32](tensor.Shape{2, 16, 6, 6}, cpu.New())
	f := NewFlatten[backendT]()

	assert.True(t, f.Forward(x).Shape().Equal(tensor.Shape{2, 576}))

	got, err := f.OutputShape(tensor.Shape{3, 1024, 1, 1})
	require.NoError(t, err)
	assert.True(t, got.Equal(tensor.Shape{3, 1024}))

	_, err = f.OutputShape(tensor.Shape{5})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestActivations(t *testing.T) {
	x := fromSlice(t, []float32{-1, 0, 2}, tensor.Shape{1, 3})

	assert.Equal(t, []float32{0, 0, 2}, NewReLU[backendT]().Forward(x).Data())

	sig := NewSigmoid[backendT]().Forward(x).Data()
	assert.InDelta(t, 1/(1+math.E), sig[0], 1e-6)
	assert.InDelta(t, 0.5, sig[1], 1e-6)
	// Input is not modified.
	assert.Equal(t, []float32{-1, 0, 2}, x.Data())
}

func TestSequential(t *testing.T) {
	backend := cpu.New()
	seq := NewSequential[backendT](
		NewConv2D(1, 2, 3, 3, 1, 1, true, backend),
		NewReLU[backendT](),
		NewFlatten[backendT](),
		NewLinear(2*4*4, 3, backend),
	)

	assert.Equal(t, 4, seq.Len())
	assert.Len(t, seq.Parameters(), 4)

	out, err := seq.OutputShape(tensor.Shape{5, 1, 4, 4})
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{5, 3}))
	assert.True(t, seq.Forward(tensor.Zeros[float32](tensor.Shape{5, 1, 4, 4}, backend)).Shape().Equal(out))

	_, err = seq.OutputShape(tensor.Shape{5, 1, 5, 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer 3")

	children := seq.Children()
	require.Len(t, children, 4)
	assert.Equal(t, "2", children[2].Name)

	assert.Equal(t, "Sequential(\n"+
		"  (0): Conv2D(in_channels=1, out_channels=2, kernel_size=(3, 3), stride=1, padding=1, bias=true)\n"+
		"  (1): ReLU()\n"+
		"  (2): Flatten()\n"+
		"  (3): Linear(in_features=32, out_features=3, bias=true)\n"+
		")", seq.String())

	assert.Panics(t, func() { seq.Module(4) })
}

func TestBuild(t *testing.T) {
	backend := cpu.New()
	descs := []LayerDesc{
		Conv(6, 5, 1, 2), SigmoidLayer, AvgPool(2, 2, 0),
		Conv(16, 5, 1, 0), SigmoidLayer, AvgPool(2, 2, 0),
		FlattenLayer,
		Dense(120), SigmoidLayer,
		Dense(10),
	}

	seq, out, err := Build(descs, tensor.Shape{1, 1, 28, 28}, backend)
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{1, 10}))
	assert.Equal(t, len(descs), seq.Len())

	// The first dense layer is sized from the flattened 16x5x5 map.
	dense, ok := seq.Module(7).(*Linear[backendT])
	require.True(t, ok)
	assert.Equal(t, 400, dense.InFeatures())

	_, _, err = Build([]LayerDesc{Dense(10)}, tensor.Shape{1, 1, 28, 28}, backend)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, _, err = Build([]LayerDesc{Conv(0, 3, 1, 1)}, tensor.Shape{1, 1, 8, 8}, backend)
	assert.ErrorIs(t, err, ErrInvalidLayer)

	_, _, err = Build([]LayerDesc{{Kind: Kind(99)}}, tensor.Shape{1, 1, 8, 8}, backend)
	assert.ErrorIs(t, err, ErrInvalidLayer)

	_, _, err = Build([]LayerDesc{Conv(4, 5, 1, 0), Conv(4, 5, 1, 0)}, tensor.Shape{1, 1, 6, 6}, backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer 1 (conv2d)")
}

func TestInitCNN(t *testing.T) {
	backend := cpu.New()
	build := func() *Sequential[backendT] {
		return NewSequential[backendT](
			NewConv2D(3, 4, 3, 3, 1, 1, true, backend),
			NewReLU[backendT](),
			NewSequential[backendT](NewFlatten[backendT](), NewLinear(64, 5, backend)),
		)
	}

	a, b := build(), build()
	copy(a.Module(0).Parameters()[1].Tensor().Data(), []float32{1, 2, 3, 4})

	Apply(a, InitCNN[backendT](rand.New(rand.NewSource(7))))
	Apply(b, InitCNN[backendT](rand.New(rand.NewSource(7))))

	pa, pb := a.Parameters(), b.Parameters()
	require.Len(t, pa, 4)
	assert.Equal(t, pa[0].Tensor().Data(), pb[0].Tensor().Data())
	assert.Equal(t, pa[2].Tensor().Data(), pb[2].Tensor().Data())

	// Biases are untouched.
	assert.Equal(t, []float32{1, 2, 3, 4}, pa[1].Tensor().Data())

	bound := float32(math.Sqrt(6.0 / float64(3*9+4*9)))
	for _, v := range pa[0].Tensor().Data() {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
	}

	out, err := a.OutputShape(tensor.Shape{2, 3, 4, 4})
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{2, 5}))
}

func TestApplyVisitsChildrenFirst(t *testing.T) {
	backend := cpu.New()
	inner := NewSequential[backendT](NewReLU[backendT]())
	outer := NewSequential[backendT](NewConv2D(1, 1, 1, 1, 1, 0, false, backend), inner)

	var order []string
	Apply[backendT](outer, func(m Module[backendT]) {
		order = append(order, m.String()[:4])
	})

	assert.Equal(t, []string{"Conv", "ReLU", "Sequ", "Sequ"}, order)
}

func TestStateDict(t *testing.T) {
	backend := cpu.New()
	build := func() *Sequential[backendT] {
		return NewSequential[backendT](
			NewConv2D(1, 2, 3, 3, 1, 1, true, backend),
			NewReLU[backendT](),
			NewSequential[backendT](NewFlatten[backendT](), NewLinear(8, 2, backend)),
		)
	}
	src, dst := build(), build()

	sd := StateDict[backendT](src)
	assert.Len(t, sd, 4)
	for _, key := range []string{"0.weight", "0.bias", "2.1.weight", "2.1.bias"} {
		assert.Contains(t, sd, key)
	}
	assert.Equal(t, 2*9+2+16+2, NumParameters[backendT](src))

	require.NoError(t, LoadStateDict[backendT](dst, sd))
	assert.Equal(t, src.Parameters()[0].Tensor().Data(), dst.Parameters()[0].Tensor().Data())
	assert.Equal(t, src.Parameters()[2].Tensor().Data(), dst.Parameters()[2].Tensor().Data())

	// Loaded values are copies.
	src.Parameters()[0].Tensor().Data()[0] = 42
	assert.NotEqual(t, float32(42), dst.Parameters()[0].Tensor().Data()[0])
}

func TestLoadStateDict_Errors(t *testing.T) {
	backend := cpu.New()
	model := NewSequential[backendT](NewLinear(2, 2, backend))
	before := append([]float32(nil), model.Parameters()[0].Tensor().Data()...)

	good := StateDict[backendT](NewSequential[backendT](NewLinear(2, 2, backend)))

	missing := map[string]*tensor.RawTensor{"0.weight": good["0.weight"]}
	assert.ErrorIs(t, LoadStateDict[backendT](model, missing), ErrMissingParameter)

	extra := map[string]*tensor.RawTensor{"0.weight": good["0.weight"], "0.bias": good["0.bias"], "1.weight": good["0.bias"]}
	assert.ErrorIs(t, LoadStateDict[backendT](model, extra), ErrUnexpectedParameter)

	wrong := map[string]*tensor.RawTensor{"0.weight": good["0.bias"], "0.bias": good["0.bias"]}
	assert.ErrorIs(t, LoadStateDict[backendT](model, wrong), tensor.ErrShapeMismatch)

	// Failed loads leave the model untouched.
	assert.Equal(t, before, model.Parameters()[0].Tensor().Data())
}

func TestCrossEntropyAndAccuracy(t *testing.T) {
	criterion := NewCrossEntropyLoss()

	uniform := fromSlice(t, make([]float32, 2*10), tensor.Shape{2, 10})
	assert.InDelta(t, math.Log(10), CrossEntropy(criterion, uniform, []int{3, 7}), 1e-9)

	logits := fromSlice(t, []float32{
		1000, 0, 0,
		0, 0, 5,
	}, tensor.Shape{2, 3})
	loss := CrossEntropy(criterion, logits, []int{0, 1})
	assert.False(t, math.IsInf(loss, 0) || math.IsNaN(loss))
	// Row 0 contributes ~0, row 1 contributes ~5 + log(1 + 2e^-5).
	assert.InDelta(t, (5+math.Log(1+2*math.Exp(-5)))/2, loss, 1e-6)

	assert.InDelta(t, 0.5, Accuracy(logits, []int{0, 1}), 1e-12)
	assert.InDelta(t, 1.0, Accuracy(logits, []int{0, 2}), 1e-12)

	assert.Panics(t, func() { CrossEntropy(criterion, logits, []int{0, 3}) })
	assert.Panics(t, func() { Accuracy(logits, []int{0}) })
}
