// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col convolutions and matrix products on gonum BLAS
//   - Max, average and adaptive average pooling with padding
//   - Float32 and Float64 support
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnets/backend/cpu"
//	    "github.com/born-ml/convnets/models"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    m, err := models.NewGoogLeNet(models.DefaultGoogLeNetConfig(), backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// allocates its own output and does not share mutable state.
package cpu
