package serialization

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Format constants.
const (
	MetadataKey     = "__metadata__" // Header entry holding string metadata
	ChecksumKey     = "sha256"       // Metadata key of the data section checksum
	HeaderAlignment = 8              // Header JSON is space-padded to this multiple
)

// SafeTensors dtype names.
const (
	DTypeFloat32 = "F32"
	DTypeFloat64 = "F64"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta describes a tensor in a decoded file.
type TensorMeta struct {
	Name   string // Tensor name (e.g., "net.0.weight")
	DType  tensor.DataType
	Shape  tensor.Shape
	Offset int64 // Offset in the data section
	Size   int64 // Size in bytes
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32, nil
	case tensor.Float64:
		return DTypeFloat64, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedDType, dt)
	}
}

// dtypeFromSafeTensors converts a SafeTensors dtype string to tensor.DataType.
func dtypeFromSafeTensors(s string) (tensor.DataType, error) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, nil
	case DTypeFloat64:
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}
