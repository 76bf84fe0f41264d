package nn

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Parameter represents a named weight tensor of a neural network.
//
// Parameters are created by their layer and only change when the caller
// loads new weights or writes to Tensor().Data() directly.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "weight")
	tensor *tensor.Tensor[float32, B] // The parameter tensor
}

// NewParameter creates a new parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// NumElements returns the number of scalars in the parameter.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// load copies raw into the parameter after checking its shape.
// Float64 sources are narrowed to float32.
func (p *Parameter[B]) load(raw *tensor.RawTensor) error {
	want := p.tensor.Shape()
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", p.name, want, raw.Shape())
	}

	dst := p.tensor.Data()
	switch raw.DType() {
	case tensor.Float32:
		copy(dst, raw.AsFloat32())
	case tensor.Float64:
		for i, v := range raw.AsFloat64() {
			dst[i] = float32(v)
		}
	default:
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", p.name, raw.DType())
	}
	return nil
}
