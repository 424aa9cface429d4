package nn

import (
	"fmt"
	"sort"

	"github.com/born-ml/convnets/internal/tensor"
)

// NamedParameter pairs a parameter with its dotted path in the module tree.
type NamedParameter[B tensor.Backend] struct {
	Name      string
	Parameter *Parameter[B]
}

// NamedParameters walks m and returns every parameter with its full path.
//
// Paths join container child names with the parameter's own name, e.g.
// "net.2.3.b2_2.weight". Order follows the forward order of the tree.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	var out []NamedParameter[B]
	collectParameters(m, "", &out)
	return out
}

func collectParameters[B tensor.Backend](m Module[B], prefix string, out *[]NamedParameter[B]) {
	if c, ok := m.(Container[B]); ok {
		for _, child := range c.Children() {
			collectParameters(child.Module, prefix+child.Name+".", out)
		}
		return
	}
	for _, p := range m.Parameters() {
		*out = append(*out, NamedParameter[B]{Name: prefix + p.Name(), Parameter: p})
	}
}

// NumParameters returns the total number of scalar weights in m.
func NumParameters[B tensor.Backend](m Module[B]) int {
	total := 0
	for _, p := range m.Parameters() {
		total += p.NumElements()
	}
	return total
}

// StateDict returns a map of parameter paths to raw tensors.
//
// The tensors are the live parameter storage, not copies.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	named := NamedParameters(m)
	stateDict := make(map[string]*tensor.RawTensor, len(named))
	for _, np := range named {
		stateDict[np.Name] = np.Parameter.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict copies the values in stateDict into the parameters of m.
//
// Every parameter of m must be present with the same shape and dtype, and
// stateDict must not hold keys m does not own. Nothing is written unless
// the whole dict validates.
func LoadStateDict[B tensor.Backend](m Module[B], stateDict map[string]*tensor.RawTensor) error {
	named := NamedParameters(m)
	seen := make(map[string]bool, len(named))

	for _, np := range named {
		raw, ok := stateDict[np.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParameter, np.Name)
		}
		want := np.Parameter.Tensor()
		if !raw.Shape().Equal(want.Shape()) {
			return fmt.Errorf("%s: shape mismatch: expected %v, got %v: %w",
				np.Name, want.Shape(), raw.Shape(), tensor.ErrShapeMismatch)
		}
		if raw.DType() != want.DType() {
			return fmt.Errorf("%s: dtype mismatch: expected %v, got %v", np.Name, want.DType(), raw.DType())
		}
		seen[np.Name] = true
	}

	if len(seen) != len(stateDict) {
		var extra []string
		for name := range stateDict {
			if !seen[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("%w: %v", ErrUnexpectedParameter, extra)
	}

	for _, np := range named {
		copy(np.Parameter.Tensor().Raw().Data(), stateDict[np.Name].Data())
	}
	return nil
}
