package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Errors returned by state dict loading.
var (
	ErrMissingParameter    = errors.New("missing parameter")
	ErrUnexpectedParameter = errors.New("unexpected parameter")
)

// rankError reports an input of the wrong rank for layer.
func rankError(layer string, want int, got tensor.Shape) error {
	return fmt.Errorf("%s: expected %dD input, got shape %v: %w", layer, want, got, tensor.ErrShapeMismatch)
}

// spatialError reports a window that does not fit the input extent.
func spatialError(layer string, in tensor.Shape, outH, outW int) error {
	return fmt.Errorf("%s: input %v too small (output would be %dx%d): %w",
		layer, in, outH, outW, tensor.ErrShapeMismatch)
}

// mustForward panics with err if it is non-nil. Forward paths use it to
// fail fast with the same message OutputShape would return.
func mustForward(err error) {
	if err != nil {
		panic(err)
	}
}
