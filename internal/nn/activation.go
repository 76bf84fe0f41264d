package nn

import (
	"errors"
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// ErrUnsupported is returned when the backend lacks a kernel a module needs.
var ErrUnsupported = errors.New("nn: operation not supported by backend")

// ReLUBackend is an interface for backends that support ReLU activation.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// SwishBackend is an interface for backends that support Swish activation.
type SwishBackend interface {
	Swish(*tensor.RawTensor) *tensor.RawTensor
}

// MishBackend is an interface for backends that support Mish activation.
type MishBackend interface {
	Mish(*tensor.RawTensor) *tensor.RawTensor
}

// SELUBackend is an interface for backends that support SELU activation.
type SELUBackend interface {
	SELU(*tensor.RawTensor) *tensor.RawTensor
}

// activate looks up the kernel with pick and applies it to x.
func activate[B tensor.Backend](
	x *tensor.Tensor[float32, B],
	name string,
	pick func(backend any) (func(*tensor.RawTensor) *tensor.RawTensor, bool),
) (*tensor.Tensor[float32, B], error) {
	backend := x.Backend()
	kernel, ok := pick(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupported, name, backend.Name())
	}
	return tensor.New[float32, B](kernel(x.Raw()), backend), nil
}

func pickReLU(b any) (func(*tensor.RawTensor) *tensor.RawTensor, bool) {
	k, ok := b.(ReLUBackend)
	if !ok {
		return nil, false
	}
	return k.ReLU, true
}

func pickSwish(b any) (func(*tensor.RawTensor) *tensor.RawTensor, bool) {
	k, ok := b.(SwishBackend)
	if !ok {
		return nil, false
	}
	return k.Swish, true
}

func pickMish(b any) (func(*tensor.RawTensor) *tensor.RawTensor, bool) {
	k, ok := b.(MishBackend)
	if !ok {
		return nil, false
	}
	return k.Mish, true
}

func pickSELU(b any) (func(*tensor.RawTensor) *tensor.RawTensor, bool) {
	k, ok := b.(SELUBackend)
	if !ok {
		return nil, false
	}
	return k.SELU, true
}

// mustActivate backs the functional forms. Activations are total, so the
// only failure is a backend without the kernel, which is a programming
// error.
func mustActivate[B tensor.Backend](
	x *tensor.Tensor[float32, B],
	name string,
	pick func(backend any) (func(*tensor.RawTensor) *tensor.RawTensor, bool),
) *tensor.Tensor[float32, B] {
	out, err := activate(x, name, pick)
	if err != nil {
		panic(err)
	}
	return out
}

// SwishFunc applies x * sigmoid(x) element-wise.
// Panics if the backend does not implement SwishBackend.
func SwishFunc[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return mustActivate(x, "Swish", pickSwish)
}

// MishFunc applies x * tanh(softplus(x)) element-wise.
// Panics if the backend does not implement MishBackend.
func MishFunc[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return mustActivate(x, "Mish", pickMish)
}

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x). It is the hidden
// activation of FusedMLP, so Linear and ReLU modules in a Sequential
// rebuild a fused network layer by layer.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return activate(input, "ReLU", pickReLU)
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

func (r *ReLU[B]) String() string { return "ReLU()" }

// Swish is the sigmoid-gated linear unit: f(x) = x * sigmoid(x).
//
// Swish(0) = 0; it tends to x for large positive input and to 0 for large
// negative input.
//
// Example:
//
//	swish := nn.NewSwish[Backend]()
//	output, _ := swish.Forward(input)
type Swish[B tensor.Backend] struct{}

// NewSwish creates a new Swish activation module.
func NewSwish[B tensor.Backend]() *Swish[B] {
	return &Swish[B]{}
}

// Forward applies Swish activation.
func (s *Swish[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return activate(input, "Swish", pickSwish)
}

// Parameters returns nil (Swish has no trainable parameters).
func (s *Swish[B]) Parameters() []*Parameter[B] {
	return nil
}

func (s *Swish[B]) String() string { return "Swish()" }

// Mish is the softplus-tanh gated unit: f(x) = x * tanh(softplus(x)).
//
// Mish(0) = 0; it is bounded below (minimum ≈ -0.31) and tends to x for
// large positive input.
type Mish[B tensor.Backend] struct{}

// NewMish creates a new Mish activation module.
func NewMish[B tensor.Backend]() *Mish[B] {
	return &Mish[B]{}
}

// Forward applies Mish activation.
func (m *Mish[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return activate(input, "Mish", pickMish)
}

// Parameters returns nil (Mish has no trainable parameters).
func (m *Mish[B]) Parameters() []*Parameter[B] {
	return nil
}

func (m *Mish[B]) String() string { return "Mish()" }

// SELU is the scaled exponential linear unit with the constants of
// torch.nn.SELU (alpha ≈ 1.6733, scale ≈ 1.0507).
type SELU[B tensor.Backend] struct{}

// NewSELU creates a new SELU activation module.
func NewSELU[B tensor.Backend]() *SELU[B] {
	return &SELU[B]{}
}

// Forward applies SELU activation.
func (s *SELU[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return activate(input, "SELU", pickSELU)
}

// Parameters returns nil (SELU has no trainable parameters).
func (s *SELU[B]) Parameters() []*Parameter[B] {
	return nil
}

func (s *SELU[B]) String() string { return "SELU()" }
