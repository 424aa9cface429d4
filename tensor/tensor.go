// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API of the convnets models.
//
// Tensors are NCHW, row-major and dense. A Tensor[T, B] pairs the element
// type T (float32 or float64) with the compute backend B that runs its
// operations.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Randn[float32](tensor.Shape{2, 1, 96, 96}, backend)
//	fmt.Println(x.Shape()) // [2 1 96 96]
package tensor

import (
	"math/rand"

	"github.com/born-ml/convnets/internal/tensor"
)

// DType is a constraint for tensor element types: float32 or float64.
type DType = tensor.DType

// DataType represents the element type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device the models run on.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 96, 96} is a batch of two 3-channel 96×96 images.
type Shape = tensor.Shape

// RawTensor is the untyped storage behind a Tensor.
//
// Most users should use Tensor[T, B] instead. State dicts and
// checkpoints exchange RawTensors.
type RawTensor = tensor.RawTensor

// Tensor is a generic type-safe tensor.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// ShapeError describes incompatible tensor shapes.
type ShapeError = tensor.ShapeError

// ErrShapeMismatch is wrapped by every shape validation error.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor of N(0, 1) samples.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Randn[float32](tensor.Shape{1, 1, 32, 32}, backend)
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b)
}

// RandnWith creates a tensor of N(0, 1) samples drawn from rng.
func RandnWith[T DType, B Backend](rng *rand.Rand, shape Shape, b B) *Tensor[T, B] {
	return tensor.RandnWith[T, B](rng, shape, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	backend := cpu.New()
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// NewRaw creates a zeroed raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Cat concatenates tensors along dim.
//
// Every other dimension must match; otherwise Cat returns a *ShapeError
// and allocates nothing.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) (*Tensor[T, B], error) {
	return tensor.Cat(tensors, dim)
}

// CatShape returns the shape Cat would produce, or a *ShapeError.
func CatShape(shapes []Shape, dim int) (Shape, error) {
	return tensor.CatShape(shapes, dim)
}
