package nn

import (
	"fmt"
	"strings"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input. The first error
// stops the chain and is returned unchanged.
//
// Example:
//
//	model := nn.NewSequential[Backend](
//	    nn.NewLinear(3, 64, backend, nn.WithBias(false)),
//	    nn.NewSwish[Backend](),
//	    nn.NewLinear(64, 16, backend, nn.WithBias(false)),
//	)
//
//	output, err := model.Forward(input)
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
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	output := input

	for _, module := range s.modules {
		var err error
		output, err = module.Forward(output)
		if err != nil {
			return nil, err
		}
	}

	return output, nil
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]

	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}

	return params
}

// Add appends a module to the sequence.
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
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// String lists the children with their indices, PyTorch style.
func (s *Sequential[B]) String() string {
	var sb strings.Builder
	sb.WriteString("Sequential(\n")
	for i, module := range s.modules {
		fmt.Fprintf(&sb, "  (%d): %v\n", i, module)
	}
	sb.WriteString(")")
	return sb.String()
}

// StateDict returns a map of parameter names to raw tensors.
//
// Parameters are prefixed with their module index ("0.weight",
// "2.weight", ...). Modules without state, such as activations, still
// occupy an index.
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)

	for i, module := range s.modules {
		stateful, ok := module.(Stateful)
		if !ok {
			continue
		}
		for name, raw := range stateful.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}

	return stateDict
}

// LoadStateDict loads parameters from a state dictionary keyed as
// StateDict produces them. On error every module keeps its previous
// weights.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	snap := Snapshot(s)
	for i, module := range s.modules {
		stateful, ok := module.(Stateful)
		if !ok {
			continue
		}

		prefix := fmt.Sprintf("%d.", i)
		moduleStateDict := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if name, found := strings.CutPrefix(key, prefix); found {
				moduleStateDict[name] = raw
			}
		}

		if err := stateful.LoadStateDict(moduleStateDict); err != nil {
			Restore(s, snap)
			return fmt.Errorf("failed to load module %d: %w", i, err)
		}
	}

	return nil
}
