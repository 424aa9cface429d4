// Package cpu implements the CPU backend with goroutine fan-out and gonum BLAS.
package cpu

import (
	"fmt"

	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Matrix products (Linear and the im2col form of Conv2D) run through gonum's
// BLAS; pooling and element-wise kernels are plain Go loops fanned out over
// NCHW planes.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend using one worker per CPU.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism config.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Workers returns the number of worker goroutines kernels may use.
func (cpu *CPUBackend) Workers() int {
	if !cpu.parallel.Enabled {
		return 1
	}
	return cpu.parallel.NumWorkers
}

// float is the element constraint for the CPU kernels.
type float interface {
	float32 | float64
}

// view returns the typed data of r.
func view[T float](r *tensor.RawTensor) []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	default:
		panic("unsupported type")
	}
}

// alloc creates an output tensor or panics with an op-prefixed message.
func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create output tensor: %v", op, err))
	}
	return out
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("add: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("add: %v", err))
	}

	result := cpu.alloc("add", outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		addBroadcast[float32](result, a, b, outShape, needsBroadcast)
	case tensor.Float64:
		addBroadcast[float64](result, a, b, outShape, needsBroadcast)
	default:
		panic(fmt.Sprintf("add: unsupported dtype %s", a.DType()))
	}

	return result
}

func addBroadcast[T float](result, a, b *tensor.RawTensor, outShape tensor.Shape, needsBroadcast bool) {
	dst := view[T](result)
	aData := view[T](a)
	bData := view[T](b)

	if !needsBroadcast {
		for i := range dst {
			dst[i] = aData[i] + bData[i]
		}
		return
	}

	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	index := make([]int, len(outShape))

	for i := range dst {
		aOff, bOff := 0, 0
		for d, idx := range index {
			aOff += idx * aStrides[d]
			bOff += idx * bStrides[d]
		}
		dst[i] = aData[aOff] + bData[bOff]

		// Advance the multi-dimensional index (row-major).
		for d := len(index) - 1; d >= 0; d-- {
			index[d]++
			if index[d] < outShape[d] {
				break
			}
			index[d] = 0
		}
	}
}

// broadcastStrides returns strides of shape aligned to outShape, with zero
// stride on broadcast (size 1 or missing) dimensions.
func broadcastStrides(shape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	own := shape.ComputeStrides()
	offset := len(outShape) - len(shape)
	for d := range shape {
		if shape[d] != 1 {
			strides[d+offset] = own[d]
		}
	}
	return strides
}
