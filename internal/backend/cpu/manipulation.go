package cpu

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Transpose swaps the axes of a 2-D tensor.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) (*tensor.RawTensor, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: transpose: expected 2D tensor, got %v", tensor.ErrShapeMismatch, shape)
	}
	rows, cols := shape[0], shape[1]

	result, err := tensor.NewRaw(tensor.Shape{cols, rows}, t.DType(), cpu.device)
	if err != nil {
		return nil, fmt.Errorf("transpose: %w", err)
	}

	switch t.DType() {
	case tensor.Float32:
		transpose2D(result.AsFloat32(), t.AsFloat32(), rows, cols)
	case tensor.Float64:
		transpose2D(result.AsFloat64(), t.AsFloat64(), rows, cols)
	default:
		return nil, fmt.Errorf("transpose: unsupported dtype %s", t.DType())
	}
	return result, nil
}

func transpose2D[T tensor.DType](dst, src []T, rows, cols int) {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must share rank and dtype, and match on every dimension
// except dim. Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	// [4, 3] ++ [4, 12] along -1 -> [4, 15]
//	out, err := backend.Cat([]*tensor.RawTensor{embed, embedPos}, -1)
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) (*tensor.RawTensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			return nil, fmt.Errorf("%w: cat: tensor %d has shape %v, expected rank %d",
				tensor.ErrShapeMismatch, i, tShape, ndim)
		}
		if t.DType() != dtype {
			return nil, fmt.Errorf("%w: cat: tensor %d has dtype %s, expected %s",
				tensor.ErrDTypeMismatch, i, t.DType(), dtype)
		}

		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				return nil, fmt.Errorf("%w: cat: tensor %d has shape %v, expected %v outside dimension %d",
					tensor.ErrShapeMismatch, i, tShape, shape, dim)
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim

	result, err := tensor.NewRaw(outShape, dtype, cpu.device)
	if err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}

	// Row-major layout: for every index over the leading dims, each input
	// contributes one contiguous block of shape[dim]*inner elements.
	outer, inner := splitAround(outShape, dim)
	elem := dtype.Size()
	out := result.Data()
	outBlock := totalDim * inner * elem

	offset := 0
	for _, t := range tensors {
		block := t.Shape()[dim] * inner * elem
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(out[o*outBlock+offset:o*outBlock+offset+block], src[o*block:(o+1)*block])
		}
		offset += block
	}

	return result, nil
}

// Narrow returns length consecutive entries of x along dim, starting at
// start, as a new contiguous tensor.
//
// Example:
//
//	// h: [batch, 16] -> sdf [batch, 1], geo [batch, 15]
//	sdf, _ := backend.Narrow(h, -1, 0, 1)
//	geo, _ := backend.Narrow(h, -1, 1, 15)
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) (*tensor.RawTensor, error) {
	shape := x.Shape()
	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		return nil, fmt.Errorf("narrow: %w", err)
	}
	if start < 0 || length <= 0 || start+length > shape[dim] {
		return nil, fmt.Errorf("%w: narrow: range [%d, %d) out of bounds for dimension %d of %v",
			tensor.ErrShapeMismatch, start, start+length, dim, shape)
	}

	outShape := shape.Clone()
	outShape[dim] = length

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		return nil, fmt.Errorf("narrow: %w", err)
	}

	outer, inner := splitAround(shape, dim)
	elem := x.DType().Size()
	srcBlock := shape[dim] * inner * elem
	dstBlock := length * inner * elem
	skip := start * inner * elem

	src := x.Data()
	dst := result.Data()
	for o := 0; o < outer; o++ {
		copy(dst[o*dstBlock:(o+1)*dstBlock], src[o*srcBlock+skip:o*srcBlock+skip+dstBlock])
	}

	return result, nil
}

// splitAround returns the element counts before and after dim.
func splitAround(shape tensor.Shape, dim int) (outer, inner int) {
	outer, inner = 1, 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	return outer, inner
}
