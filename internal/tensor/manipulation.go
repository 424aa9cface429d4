package tensor

import "fmt"

// Reshape returns a tensor with the same data and a new shape.
//
// At most one dimension may be -1; it is inferred from the element count.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{8, 16, 6, 6}, backend)
//	y := x.Reshape(8, -1) // [8, 576]
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	shape, err := resolveShape(dims, t.NumElements())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return New[T, B](t.backend.Reshape(t.raw, shape), t.backend)
}

// Flatten collapses every dimension after the first into one:
// [N, d1, d2, ...] -> [N, d1*d2*...].
func (t *Tensor[T, B]) Flatten() *Tensor[T, B] {
	shape := t.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got shape %v", shape))
	}
	return t.Reshape(shape[0], -1)
}

func resolveShape(dims []int, numElements int) (Shape, error) {
	shape := make(Shape, len(dims))
	inferred := -1
	known := 1
	for i, d := range dims {
		switch {
		case d == -1:
			if inferred >= 0 {
				return nil, fmt.Errorf("only one dimension can be inferred, got %v", dims)
			}
			inferred = i
		case d <= 0:
			return nil, fmt.Errorf("invalid dimension %d in %v", d, dims)
		default:
			known *= d
		}
		shape[i] = d
	}
	if inferred >= 0 {
		if numElements%known != 0 {
			return nil, fmt.Errorf("cannot infer dimension of %v for %d elements", dims, numElements)
		}
		shape[inferred] = numElements / known
	}
	if shape.NumElements() != numElements {
		return nil, fmt.Errorf("shape %v does not hold %d elements", shape, numElements)
	}
	return shape, nil
}

// CatShape returns the shape produced by concatenating shapes along dim.
//
// Every shape must have the same rank and agree on all dimensions except
// dim. A disagreement is reported as a *ShapeError wrapping ErrShapeMismatch.
func CatShape(shapes []Shape, dim int) (Shape, error) {
	if len(shapes) == 0 {
		return nil, fmt.Errorf("cat: at least one tensor required")
	}
	first := shapes[0]
	if dim < 0 || dim >= len(first) {
		return nil, fmt.Errorf("cat: dimension %d out of range for rank %d", dim, len(first))
	}

	out := first.Clone()
	for _, s := range shapes[1:] {
		if len(s) != len(first) {
			return nil, &ShapeError{Op: "cat", Dim: -1, Shapes: shapes}
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				return nil, &ShapeError{Op: "cat", Dim: d, Shapes: shapes}
			}
		}
		out[dim] += s[dim]
	}
	return out, nil
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation
// dimension. The shapes are validated before any data is copied.
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{1, 64, 28, 28}, backend)
//	b := tensor.Zeros[float32](Shape{1, 128, 28, 28}, backend)
//	c, err := tensor.Cat([]*Tensor[float32, B]{a, b}, 1) // [1, 192, 28, 28]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) (*Tensor[T, B], error) {
	shapes := make([]Shape, len(tensors))
	for i, t := range tensors {
		shapes[i] = t.Shape()
	}
	if _, err := CatShape(shapes, dim); err != nil {
		return nil, err
	}

	if len(tensors) == 1 {
		return tensors[0].Clone(), nil
	}

	rawTensors := make([]*RawTensor, len(tensors))
	backend := tensors[0].backend
	for i, t := range tensors {
		rawTensors[i] = t.raw
	}

	return New[T, B](backend.Cat(rawTensors, dim), backend), nil
}
