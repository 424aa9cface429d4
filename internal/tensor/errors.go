package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when tensors cannot be combined because of
// incompatible shapes.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError describes a shape incompatibility detected by an operation.
type ShapeError struct {
	Op     string  // Operation that rejected the shapes (e.g., "cat")
	Dim    int     // Offending dimension, or -1 for a rank mismatch
	Shapes []Shape // Shapes involved, in argument order
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Dim < 0 {
		return fmt.Sprintf("%s: rank mismatch between shapes %v", e.Op, e.Shapes)
	}
	return fmt.Sprintf("%s: shapes %v disagree at dimension %d", e.Op, e.Shapes, e.Dim)
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
