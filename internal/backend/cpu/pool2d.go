package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height + 2*padding - kernelSize) / stride + 1
//	out_width  = (width + 2*padding - kernelSize) / stride + 1
//
// Padded positions never win the max. padding must not exceed
// kernelSize/2 so every window overlaps the input.
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	g := cpu.poolGeometry("maxpool2d", input, kernelSize, stride, padding)
	output := cpu.alloc("maxpool2d", tensor.Shape{g.N, g.C, g.HOut, g.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		maxpool2d[float32](output, input, g, cpu.parallel)
	case tensor.Float64:
		maxpool2d[float64](output, input, g, cpu.parallel)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

// AvgPool2D performs 2D average pooling.
//
// Output size follows the MaxPool2D formula. Zero padding counts toward
// the divisor, so a window hanging over the border averages in zeros.
func (cpu *CPUBackend) AvgPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	g := cpu.poolGeometry("avgpool2d", input, kernelSize, stride, padding)
	output := cpu.alloc("avgpool2d", tensor.Shape{g.N, g.C, g.HOut, g.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		avgpool2d[float32](output, input, g, cpu.parallel)
	case tensor.Float64:
		avgpool2d[float64](output, input, g, cpu.parallel)
	default:
		panic(fmt.Sprintf("avgpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

// AdaptiveAvgPool2D averages each plane down to an outH x outW grid.
//
// Output cell i along an axis of extent L covers input range
// [floor(i*L/out), ceil((i+1)*L/out)), so cells may overlap when L is not a
// multiple of out. With out = 1 this is global average pooling.
func (cpu *CPUBackend) AdaptiveAvgPool2D(input *tensor.RawTensor, outH, outW int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("adaptive_avgpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("adaptive_avgpool2d: invalid output size %dx%d", outH, outW))
	}

	g := poolGeometry{
		N: inputShape[0], C: inputShape[1], H: inputShape[2], W: inputShape[3],
		HOut: outH, WOut: outW,
	}
	output := cpu.alloc("adaptive_avgpool2d", tensor.Shape{g.N, g.C, outH, outW}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		adaptiveAvgPool2d[float32](output, input, g, cpu.parallel)
	case tensor.Float64:
		adaptiveAvgPool2d[float64](output, input, g, cpu.parallel)
	default:
		panic(fmt.Sprintf("adaptive_avgpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

// poolGeometry holds the dimensions of one pooling call.
type poolGeometry struct {
	N, C, H, W                  int
	HOut, WOut                  int
	kernelSize, stride, padding int
}

func (cpu *CPUBackend) poolGeometry(op string, input *tensor.RawTensor, kernelSize, stride, padding int) poolGeometry {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %dD", op, len(inputShape)))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("%s: invalid kernel size %d", op, kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("%s: invalid stride %d", op, stride))
	}
	if padding < 0 || padding > kernelSize/2 {
		panic(fmt.Sprintf("%s: padding %d must be in [0, %d]", op, padding, kernelSize/2))
	}

	g := poolGeometry{
		N: inputShape[0], C: inputShape[1], H: inputShape[2], W: inputShape[3],
		kernelSize: kernelSize, stride: stride, padding: padding,
	}
	g.HOut = tensor.ConvOutputSize(g.H, kernelSize, stride, padding)
	g.WOut = tensor.ConvOutputSize(g.W, kernelSize, stride, padding)

	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("%s: invalid output dimensions %dx%d (kernel=%d, stride=%d, padding=%d, input=%dx%d)",
			op, g.HOut, g.WOut, kernelSize, stride, padding, g.H, g.W))
	}
	return g
}

func maxpool2d[T float](output, input *tensor.RawTensor, g poolGeometry, cfg parallel.Config) {
	inputData := view[T](input)
	outputData := view[T](output)
	negInf := T(math.Inf(-1))

	parallel.ForBatch(g.N, g.C, func(n, c int) {
		// Pre-slice planes: eliminates per-element offset arithmetic
		plane := inputData[(n*g.C+c)*g.H*g.W : (n*g.C+c+1)*g.H*g.W]
		outPlane := outputData[(n*g.C+c)*g.HOut*g.WOut : (n*g.C+c+1)*g.HOut*g.WOut]

		for oh := 0; oh < g.HOut; oh++ {
			hStart := max(oh*g.stride-g.padding, 0)
			hEnd := min(oh*g.stride-g.padding+g.kernelSize, g.H)

			for ow := 0; ow < g.WOut; ow++ {
				wStart := max(ow*g.stride-g.padding, 0)
				wEnd := min(ow*g.stride-g.padding+g.kernelSize, g.W)

				maxVal := negInf
				for h := hStart; h < hEnd; h++ {
					rowData := plane[h*g.W : (h+1)*g.W]
					for w := wStart; w < wEnd; w++ {
						if rowData[w] > maxVal {
							maxVal = rowData[w]
						}
					}
				}
				outPlane[oh*g.WOut+ow] = maxVal
			}
		}
	}, cfg)
}

func avgpool2d[T float](output, input *tensor.RawTensor, g poolGeometry, cfg parallel.Config) {
	inputData := view[T](input)
	outputData := view[T](output)

	parallel.ForBatch(g.N, g.C, func(n, c int) {
		plane := inputData[(n*g.C+c)*g.H*g.W : (n*g.C+c+1)*g.H*g.W]
		outPlane := outputData[(n*g.C+c)*g.HOut*g.WOut : (n*g.C+c+1)*g.HOut*g.WOut]

		for oh := 0; oh < g.HOut; oh++ {
			hStart := oh*g.stride - g.padding
			hEnd := min(hStart+g.kernelSize, g.H+g.padding)

			for ow := 0; ow < g.WOut; ow++ {
				wStart := ow*g.stride - g.padding
				wEnd := min(wStart+g.kernelSize, g.W+g.padding)
				divisor := T((hEnd - hStart) * (wEnd - wStart))

				var sum T
				for h := max(hStart, 0); h < min(hEnd, g.H); h++ {
					rowData := plane[h*g.W : (h+1)*g.W]
					for w := max(wStart, 0); w < min(wEnd, g.W); w++ {
						sum += rowData[w]
					}
				}
				outPlane[oh*g.WOut+ow] = sum / divisor
			}
		}
	}, cfg)
}

func adaptiveAvgPool2d[T float](output, input *tensor.RawTensor, g poolGeometry, cfg parallel.Config) {
	inputData := view[T](input)
	outputData := view[T](output)

	parallel.ForBatch(g.N, g.C, func(n, c int) {
		plane := inputData[(n*g.C+c)*g.H*g.W : (n*g.C+c+1)*g.H*g.W]
		outPlane := outputData[(n*g.C+c)*g.HOut*g.WOut : (n*g.C+c+1)*g.HOut*g.WOut]

		for oh := 0; oh < g.HOut; oh++ {
			hStart := oh * g.H / g.HOut
			hEnd := ((oh+1)*g.H + g.HOut - 1) / g.HOut

			for ow := 0; ow < g.WOut; ow++ {
				wStart := ow * g.W / g.WOut
				wEnd := ((ow+1)*g.W + g.WOut - 1) / g.WOut

				var sum T
				for h := hStart; h < hEnd; h++ {
					rowData := plane[h*g.W : (h+1)*g.W]
					for w := wStart; w < wEnd; w++ {
						sum += rowData[w]
					}
				}
				outPlane[oh*g.WOut+ow] = sum / T((hEnd-hStart)*(wEnd-wStart))
			}
		}
	}, cfg)
}
