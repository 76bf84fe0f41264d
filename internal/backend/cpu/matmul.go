package cpu

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/parallel"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
// Output rows are computed in parallel.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		return nil, fmt.Errorf("%w: matmul: only 2D tensors supported, got %v and %v",
			tensor.ErrShapeMismatch, aShape, bShape)
	}
	if a.DType() != b.DType() {
		return nil, fmt.Errorf("%w: matmul: %s @ %s", tensor.ErrDTypeMismatch, a.DType(), b.DType())
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		return nil, fmt.Errorf("%w: matmul [%d,%d] @ [%d,%d]", tensor.ErrShapeMismatch, m, k, kAlt, n)
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		return nil, fmt.Errorf("matmul: failed to create result tensor: %w", err)
	}

	switch a.DType() {
	case tensor.Float32:
		matmulRows(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n, cpu.parallel)
	case tensor.Float64:
		matmulRows(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n, cpu.parallel)
	default:
		return nil, fmt.Errorf("matmul: unsupported dtype %s", a.DType())
	}

	return result, nil
}

// matmulRows computes C = A @ B with the i-k-j loop order so the inner loop
// walks B and C contiguously. c must be zeroed.
func matmulRows[T tensor.DType](c, a, b []T, m, k, n int, cfg parallel.Config) {
	parallel.ForRange(m, func(start, end int) {
		for i := start; i < end; i++ {
			row := c[i*n : (i+1)*n]
			for kIdx := 0; kIdx < k; kIdx++ {
				aik := a[i*k+kIdx]
				if aik == 0 {
					continue
				}
				bRow := b[kIdx*n : (kIdx+1)*n]
				for j := range row {
					row[j] += aik * bRow[j]
				}
			}
		}
	}, cfg)
}
