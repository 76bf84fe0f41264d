package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Shape-dependent operations return ErrShapeMismatch (wrapped with the
// offending shapes) instead of panicking, so that a bad embedding width
// reaches the caller of a network's Forward as an ordinary error.
//
// Elementwise activations are not part of this interface; backends
// advertise them through the capability interfaces in package nn.
//
// Implementations:
//   - CPU: Pure Go, row-parallel (internal/backend/cpu)
type Backend interface {
	// MatMul performs 2-D matrix multiplication: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) (*RawTensor, error)

	// Transpose swaps the two axes of a 2-D tensor.
	Transpose(t *RawTensor) (*RawTensor, error)

	// Cat concatenates tensors along dim. All other dimensions must match.
	Cat(tensors []*RawTensor, dim int) (*RawTensor, error)

	// Narrow returns length consecutive entries of x along dim starting at
	// start, as a new contiguous tensor.
	Narrow(x *RawTensor, dim, start, length int) (*RawTensor, error)

	// Metadata
	Name() string
	Device() Device
}
