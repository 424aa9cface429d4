// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/convnets/internal/tensor"

// Backend is the compute interface behind every tensor operation.
//
// Implementations:
//   - backend/cpu: pure Go, im2col convolutions over gonum BLAS
//
// Example:
//
//	import (
//	    "github.com/born-ml/convnets/tensor"
//	    "github.com/born-ml/convnets/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
type Backend = tensor.Backend
