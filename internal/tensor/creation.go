package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype, b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	// Data is already zero-initialized by make()
	return New[T, B](raw, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1) using the
// package-level math/rand source.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3, 96, 96}, backend)
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return RandnWith[T](rand.New(rand.NewSource(rand.Int63())), shape, b) //nolint:gosec // G404: ML uses math/rand intentionally
}

// RandnWith creates a tensor with values drawn from N(0, 1) using rng.
// Uses the Box-Muller transform.
func RandnWith[T DType, B Backend](rng *rand.Rand, shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()

	for i := 0; i < len(data); i += 2 {
		u1 := 1.0 - rng.Float64() // (0, 1], keeps Log finite
		u2 := rng.Float64()
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = T(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = T(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return t
}

// Uniform creates a tensor with values drawn from U(low, high) using rng.
func Uniform[T DType, B Backend](rng *rand.Rand, shape Shape, low, high float64, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	FillUniform(rng, t.Data(), low, high)
	return t
}

// FillUniform overwrites data with values drawn from U(low, high).
func FillUniform[T DType](rng *rand.Rand, data []T, low, high float64) {
	span := high - low
	for i := range data {
		data[i] = T(low + rng.Float64()*span)
	}
}
