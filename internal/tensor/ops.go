package tensor

import "errors"

// MatMul performs matrix multiplication: (M, K) @ (K, N) → (M, N).
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{3, 4}, backend)
//	b := tensor.Zeros[float32](Shape{4, 5}, backend)
//	c, err := a.MatMul(b) // Shape: [3, 5]
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) (*Tensor[T, B], error) {
	result, err := t.backend.MatMul(t.raw, other.raw)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// Transpose swaps the axes of a 2-D tensor.
func (t *Tensor[T, B]) Transpose() (*Tensor[T, B], error) {
	result, err := t.backend.Transpose(t.raw)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) (*Tensor[T, B], error) {
	result, err := t.raw.Reshape(Shape(newShape))
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// Narrow returns length consecutive entries along dim starting at start.
// Negative dim counts from the last axis.
//
// Example:
//
//	h := sdf.Forward(x)          // [batch, 16]
//	sdf, _ := h.Narrow(-1, 0, 1) // [batch, 1]
//	geo, _ := h.Narrow(-1, 1, 15)
func (t *Tensor[T, B]) Narrow(dim, start, length int) (*Tensor[T, B], error) {
	result, err := t.backend.Narrow(t.raw, dim, start, length)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, t.backend), nil
}

// Cat concatenates tensors along dim. Negative dim counts from the last
// axis. A single input is returned as a copy.
//
// Example:
//
//	x, err := tensor.Cat(-1, embed, embedPos) // [batch, inCh+posCh]
func Cat[T DType, B Backend](dim int, tensors ...*Tensor[T, B]) (*Tensor[T, B], error) {
	if len(tensors) == 0 {
		return nil, errors.New("cat: at least one tensor required")
	}

	if len(tensors) == 1 {
		return tensors[0].Clone(), nil
	}

	rawTensors := make([]*RawTensor, len(tensors))
	backend := tensors[0].backend
	for i, t := range tensors {
		rawTensors[i] = t.raw
	}

	result, err := backend.Cat(rawTensors, dim)
	if err != nil {
		return nil, err
	}
	return New[T, B](result, backend), nil
}
