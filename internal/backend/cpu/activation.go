package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

// ReLU applies f(x) = max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x,
		func(v float32) float32 { return max(v, 0) },
		func(v float64) float64 { return max(v, 0) },
	)
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x,
		func(v float32) float32 { return float32(1.0 / (1.0 + math.Exp(-float64(v)))) },
		func(v float64) float64 { return 1.0 / (1.0 + math.Exp(-v)) },
	)
}

// unary maps an element-wise function over x into a fresh tensor.
func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f32 func(float32) float32, f64 func(float64) float64) *tensor.RawTensor {
	result := cpu.alloc(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		mapChunks(view[float32](result), view[float32](x), f32, cpu.parallel)
	case tensor.Float64:
		mapChunks(view[float64](result), view[float64](x), f64, cpu.parallel)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}
	return result
}

// mapChunks applies f over src in fixed-size chunks so the goroutine
// fan-out is amortized over many elements.
func mapChunks[T float](dst, src []T, f func(T) T, cfg parallel.Config) {
	const chunk = 4096
	chunks := (len(src) + chunk - 1) / chunk
	parallel.For(chunks, func(i int) {
		end := min((i+1)*chunk, len(src))
		for j := i * chunk; j < end; j++ {
			dst[j] = f(src[j])
		}
	}, cfg.Coarse())
}
