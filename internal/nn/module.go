// Package nn implements the neural network building blocks of the scene
// decoders.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named weight tensors
//   - Linear: Fully connected layer (optionally bias-free)
//   - Activations: ReLU, Swish, Mish, SELU
//   - Sequential: Container for stacking layers
//   - FusedMLP: Dense ReLU network delegated to a fused engine
//   - OneBlob and Frequency encodings
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
// Shape errors are returned, never panicked.
package nn

import (
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential[Backend](
//	    nn.NewLinear(3, 64, backend, nn.WithBias(false)),
//	    nn.NewSwish[Backend](),
//	    nn.NewLinear(64, 16, backend, nn.WithBias(false)),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Returns an error wrapping tensor.ErrShapeMismatch when the input
	// does not have the shape the module expects.
	Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)

	// Parameters returns all trainable parameters of this module.
	// Returns nil for modules without parameters (e.g., activations).
	Parameters() []*Parameter[B]
}

// Stateful is implemented by modules whose weights can be exported and
// restored by name.
type Stateful interface {
	// StateDict returns parameter names mapped to their raw tensors.
	// The tensors alias module memory.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies weights from stateDict into the module.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Snapshot returns deep copies of the weights of s, for Restore.
func Snapshot(s Stateful) map[string]*tensor.RawTensor {
	current := s.StateDict()
	snap := make(map[string]*tensor.RawTensor, len(current))
	for name, raw := range current {
		snap[name] = raw.Clone()
	}
	return snap
}

// Restore copies the weights saved by Snapshot back into s.
func Restore(s Stateful, snap map[string]*tensor.RawTensor) {
	for name, raw := range s.StateDict() {
		if saved, ok := snap[name]; ok {
			copy(raw.Data(), saved.Data())
		}
	}
}
