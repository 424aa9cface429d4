package cpu

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Cat concatenates tensors along the specified dimension.
//
// All tensors must share rank, dtype, and every dimension except dim.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	// Inception branch outputs [N, c_i, H, W] -> [N, sum(c_i), H, W]
//	out := backend.Cat([]*tensor.RawTensor{b1, b2, b3, b4}, 1)
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	ndim := len(tensors[0].Shape())
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}

	shapes := make([]tensor.Shape, len(tensors))
	for i, t := range tensors {
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		shapes[i] = t.Shape()
	}

	outShape, err := tensor.CatShape(shapes, dim)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	result := cpu.alloc("cat", outShape, dtype)

	switch dtype {
	case tensor.Float32:
		cat[float32](tensors, result, dim)
	case tensor.Float64:
		cat[float64](tensors, result, dim)
	default:
		panic(fmt.Sprintf("cat: unsupported dtype %s", dtype))
	}

	return result
}

// cat copies each input's contiguous block per outer index.
//
// With outer = prod(shape[:dim]) and inner = prod(shape[dim+1:]), input i
// contributes shape_i[dim]*inner elements to every outer row.
func cat[T float](tensors []*tensor.RawTensor, result *tensor.RawTensor, dim int) {
	outShape := result.Shape()
	dst := view[T](result)

	outer := 1
	for d := 0; d < dim; d++ {
		outer *= outShape[d]
	}
	inner := 1
	for d := dim + 1; d < len(outShape); d++ {
		inner *= outShape[d]
	}
	rowSize := outShape[dim] * inner

	offset := 0
	for _, t := range tensors {
		src := view[T](t)
		block := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			copy(dst[o*rowSize+offset:o*rowSize+offset+block], src[o*block:(o+1)*block])
		}
		offset += block
	}
}

// Reshape returns a view of t with a new shape holding the same elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return out
}

// Transpose swaps the axes of a 2D tensor, materializing the result.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got shape %v", shape))
	}

	result := cpu.alloc("transpose", tensor.Shape{shape[1], shape[0]}, t.DType())

	switch t.DType() {
	case tensor.Float32:
		transpose2d(view[float32](result), view[float32](t), shape[0], shape[1])
	case tensor.Float64:
		transpose2d(view[float64](result), view[float64](t), shape[0], shape[1])
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}
	return result
}

func transpose2d[T float](dst, src []T, rows, cols int) {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
}
