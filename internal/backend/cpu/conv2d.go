package cpu

import (
	"fmt"

	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

// Conv2D performs 2D convolution using im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Parameters:
//   - input: Input tensor [N, C_in, H, W]
//   - kernel: Convolution kernel [C_out, C_in, K_h, K_w]
//   - stride: Stride for convolution
//   - padding: Zero padding applied to every spatial border
//
// Algorithm (per batch sample, samples run in parallel):
//  1. Im2col: [C_in, H, W] -> col [C_in*K_h*K_w, H_out*W_out]
//  2. GEMM:   kernel [C_out, C_in*K_h*K_w] @ col -> [C_out, H_out*W_out]
//
// The GEMM result is already in NCHW order for the sample, so no
// rearrangement pass is needed.
//
// Reference: "High Performance Convolutional Neural Networks for Document Processing"
// (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("conv2d: dtype mismatch input=%s kernel=%s", input.DType(), kernel.DType()))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride=%d padding=%d", stride, padding))
	}

	g := convGeometry{
		N:       inputShape[0],
		CIn:     inputShape[1],
		H:       inputShape[2],
		W:       inputShape[3],
		COut:    kernelShape[0],
		KH:      kernelShape[2],
		KW:      kernelShape[3],
		stride:  stride,
		padding: padding,
	}

	if g.CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", g.CIn, kernelShape[1]))
	}

	g.HOut = tensor.ConvOutputSize(g.H, g.KH, stride, padding)
	g.WOut = tensor.ConvOutputSize(g.W, g.KW, stride, padding)
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", g.HOut, g.WOut))
	}

	output := cpu.alloc("conv2d", tensor.Shape{g.N, g.COut, g.HOut, g.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		conv2d[float32](output, input, kernel, g, cpu.parallel)
	case tensor.Float64:
		conv2d[float64](output, input, kernel, g, cpu.parallel)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// convGeometry holds the dimensions of one Conv2D call.
type convGeometry struct {
	N, CIn, H, W    int
	COut, KH, KW    int
	HOut, WOut      int
	stride, padding int
}

func conv2d[T float](output, input, kernel *tensor.RawTensor, g convGeometry, cfg parallel.Config) {
	inputData := view[T](input)
	kernelData := view[T](kernel)
	outputData := view[T](output)

	colRows := g.CIn * g.KH * g.KW
	colCols := g.HOut * g.WOut
	inPlane := g.CIn * g.H * g.W
	outPlane := g.COut * colCols

	parallel.For(g.N, func(n int) {
		// 1x1 stride-1 unpadded convolutions read the input plane directly.
		var col []T
		if g.KH == 1 && g.KW == 1 && g.stride == 1 && g.padding == 0 {
			col = inputData[n*inPlane : (n+1)*inPlane]
		} else {
			col = make([]T, colRows*colCols)
			im2col(col, inputData[n*inPlane:(n+1)*inPlane], g)
		}
		gemm(g.COut, colCols, colRows, kernelData, col, outputData[n*outPlane:(n+1)*outPlane])
	}, cfg.Coarse())
}

// im2col transforms one input sample [C, H, W] into a column matrix.
//
// Output: col [C * K_h * K_w, H_out * W_out], row-major.
//
// Row (c, kh, kw) holds, for every output position, the input value that
// kernel tap multiplies; positions falling in the padding read zero.
func im2col[T float](col, sample []T, g convGeometry) {
	outSize := g.HOut * g.WOut
	row := 0
	for c := 0; c < g.CIn; c++ {
		plane := sample[c*g.H*g.W : (c+1)*g.H*g.W]
		for kh := 0; kh < g.KH; kh++ {
			for kw := 0; kw < g.KW; kw++ {
				dst := col[row*outSize : (row+1)*outSize]
				idx := 0
				for oh := 0; oh < g.HOut; oh++ {
					h := oh*g.stride - g.padding + kh
					if h < 0 || h >= g.H {
						for ow := 0; ow < g.WOut; ow++ {
							dst[idx] = 0
							idx++
						}
						continue
					}
					rowData := plane[h*g.W : (h+1)*g.W]
					for ow := 0; ow < g.WOut; ow++ {
						w := ow*g.stride - g.padding + kw
						if w >= 0 && w < g.W {
							dst[idx] = rowData[w]
						} else {
							dst[idx] = 0
						}
						idx++
					}
				}
				row++
			}
		}
	}
}
