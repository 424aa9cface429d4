package nn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/convnets/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input, creating a
// sequential pipeline of transformations.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
//	output := model.Forward(input)
//
// Children are named by their index ("0", "1", ...), so state dict keys
// look like "2.weight".
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input

	for _, module := range s.modules {
		output = module.Forward(output)
	}

	return output
}

// OutputShape threads the input shape through every module.
//
// The returned error names the index of the first module that rejects
// its input.
func (s *Sequential[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	shape := input
	for i, module := range s.modules {
		next, err := module.OutputShape(shape)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		shape = next
	}
	return shape, nil
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]

	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}

	return params
}

// Children returns the modules named by index.
func (s *Sequential[B]) Children() []Child[B] {
	children := make([]Child[B], len(s.modules))
	for i, module := range s.modules {
		children[i] = Child[B]{Name: strconv.Itoa(i), Module: module}
	}
	return children
}

// Add appends a module to the sequence.
//
// This allows building models incrementally:
//
//	model := nn.NewSequential[B]()
//	model.Add(nn.NewLinear(784, 128, backend))
//	model.Add(nn.NewReLU[B]())
func (s *Sequential[B]) Add(module Module[B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic(fmt.Sprintf("sequential: index %d out of bounds [0, %d)", index, len(s.modules)))
	}
	return s.modules[index]
}

// String prints the module tree, one child per line.
func (s *Sequential[B]) String() string {
	return FormatTree("Sequential", s.Children())
}

// FormatTree renders a container and its named children with nested
// indentation:
//
//	Sequential(
//	  (0): Conv2D(...)
//	  (1): ReLU()
//	)
func FormatTree[B tensor.Backend](name string, children []Child[B]) string {
	if len(children) == 0 {
		return name + "()"
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(\n")
	for _, child := range children {
		body := strings.ReplaceAll(child.Module.String(), "\n", "\n  ")
		fmt.Fprintf(&sb, "  (%s): %s\n", child.Name, body)
	}
	sb.WriteString(")")
	return sb.String()
}
