package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pallab007Saha/Own-co-slam/internal/parallel"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

func rawF32(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(tensor.Shape(shape), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestMatMul(t *testing.T) {
	backend := New()

	// [2,3] @ [3,2]
	a := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := rawF32(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)

	c, err := backend.MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, c.AsFloat32())
}

func TestMatMul_Float64(t *testing.T) {
	backend := New()

	a, err := tensor.NewRaw(tensor.Shape{1, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(a.AsFloat64(), []float64{0.5, -2})
	b, err := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(b.AsFloat64(), []float64{4, 1})

	c, err := backend.MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, c.AsFloat64())
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	backend := New()

	a := rawF32(t, make([]float32, 6), 2, 3)
	b := rawF32(t, make([]float32, 8), 4, 2)

	_, err := backend.MatMul(a, b)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	vec := rawF32(t, make([]float32, 3), 3)
	_, err = backend.MatMul(a, vec)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestMatMul_ParallelMatchesSequential(t *testing.T) {
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2})
	seq := NewWithConfig(parallel.Sequential())

	m, k, n := 37, 11, 5
	aData := make([]float32, m*k)
	for i := range aData {
		aData[i] = float32(i%7) - 3
	}
	bData := make([]float32, k*n)
	for i := range bData {
		bData[i] = float32(i%5) * 0.25
	}
	a := rawF32(t, aData, m, k)
	b := rawF32(t, bData, k, n)

	got, err := par.MatMul(a, b)
	require.NoError(t, err)
	want, err := seq.MatMul(a, b)
	require.NoError(t, err)

	assert.Equal(t, want.AsFloat32(), got.AsFloat32())
}

func TestTranspose(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	y, err := backend.Transpose(x)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, y.AsFloat32())

	_, err = backend.Transpose(rawF32(t, make([]float32, 3), 3))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestCat_LastDim(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4}, 2, 2)
	b := rawF32(t, []float32{5, 6}, 2, 1)
	c := rawF32(t, []float32{7, 8, 9, 10, 11, 12}, 2, 3)

	out, err := backend.Cat([]*tensor.RawTensor{a, b, c}, -1)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 6}, out.Shape())
	assert.Equal(t, []float32{1, 2, 5, 7, 8, 9, 3, 4, 6, 10, 11, 12}, out.AsFloat32())
}

func TestCat_FirstDim(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2}, 1, 2)
	b := rawF32(t, []float32{3, 4, 5, 6}, 2, 2)

	out, err := backend.Cat([]*tensor.RawTensor{a, b}, 0)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, out.AsFloat32())
}

func TestCat_Errors(t *testing.T) {
	backend := New()

	a := rawF32(t, make([]float32, 4), 2, 2)
	b := rawF32(t, make([]float32, 3), 3, 1)

	_, err := backend.Cat([]*tensor.RawTensor{a, b}, -1)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch, "batch dimension differs")

	_, err = backend.Cat([]*tensor.RawTensor{a, a}, 2)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch, "dim out of range")

	f64, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	_, err = backend.Cat([]*tensor.RawTensor{a, f64}, -1)
	assert.ErrorIs(t, err, tensor.ErrDTypeMismatch)

	_, err = backend.Cat(nil, 0)
	require.Error(t, err)
}

func TestNarrow(t *testing.T) {
	backend := New()

	// [2, 4]
	x := rawF32(t, []float32{0, 1, 2, 3, 10, 11, 12, 13}, 2, 4)

	first, err := backend.Narrow(x, -1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1}, first.Shape())
	assert.Equal(t, []float32{0, 10}, first.AsFloat32())

	rest, err := backend.Narrow(x, 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 11, 12, 13}, rest.AsFloat32())

	row, err := backend.Narrow(x, 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 11, 12, 13}, row.AsFloat32())

	// Result must not alias the source.
	first.AsFloat32()[0] = 99
	assert.Equal(t, float32(0), x.AsFloat32()[0])
}

func TestNarrow_OutOfBounds(t *testing.T) {
	backend := New()
	x := rawF32(t, make([]float32, 8), 2, 4)

	for _, tc := range []struct{ start, length int }{{3, 2}, {-1, 1}, {0, 0}, {0, 5}} {
		_, err := backend.Narrow(x, -1, tc.start, tc.length)
		assert.ErrorIs(t, err, tensor.ErrShapeMismatch, "start=%d length=%d", tc.start, tc.length)
	}
}

func TestActivations_KnownValues(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{-2, -1, 0, 1, 2}, 5)

	sig := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	softplus := func(v float64) float64 { return math.Log1p(math.Exp(v)) }

	tests := []struct {
		name string
		op   func(*tensor.RawTensor) *tensor.RawTensor
		ref  func(float64) float64
	}{
		{"relu", backend.ReLU, func(v float64) float64 { return math.Max(v, 0) }},
		{"swish", backend.Swish, func(v float64) float64 { return v * sig(v) }},
		{"mish", backend.Mish, func(v float64) float64 { return v * math.Tanh(softplus(v)) }},
		{"selu", backend.SELU, func(v float64) float64 {
			if v > 0 {
				return seluScale * v
			}
			return seluScale * seluAlpha * (math.Exp(v) - 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.op(x)
			require.Equal(t, x.Shape(), out.Shape())
			for i, v := range x.AsFloat32() {
				assert.InDelta(t, tt.ref(float64(v)), float64(out.AsFloat32()[i]), 1e-5, "%s(%v)", tt.name, v)
			}
		})
	}
}

func TestActivations_ZeroAtOrigin(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{0}, 1)

	assert.Equal(t, float32(0), backend.Swish(x).AsFloat32()[0])
	assert.Equal(t, float32(0), backend.Mish(x).AsFloat32()[0])
	assert.Equal(t, float32(0), backend.SELU(x).AsFloat32()[0])
}

func TestActivations_StableForLargeInputs(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{-1e4, -500, -90, 90, 500, 1e4}, 6)

	for name, op := range map[string]func(*tensor.RawTensor) *tensor.RawTensor{
		"swish": backend.Swish,
		"mish":  backend.Mish,
		"selu":  backend.SELU,
	} {
		for i, v := range op(x).AsFloat32() {
			f := float64(v)
			assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "%s(%v) = %v", name, x.AsFloat32()[i], v)
		}
	}

	swish := backend.Swish(x).AsFloat32()
	mish := backend.Mish(x).AsFloat32()
	// Identity for large positive input, vanishing for large negative input.
	assert.InDelta(t, 1e4, swish[5], 1e-2)
	assert.InDelta(t, 1e4, mish[5], 1e-2)
	assert.InDelta(t, 0, swish[0], 1e-6)
	assert.InDelta(t, 0, mish[0], 1e-6)
}

func TestActivations_Float64(t *testing.T) {
	backend := New()
	x, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(x.AsFloat64(), []float64{-1, 0, 1})

	out := backend.Mish(x).AsFloat64()
	assert.InDelta(t, -0.30340146137, out[0], 1e-9)
	assert.Equal(t, 0.0, out[1])
	assert.InDelta(t, 0.86509838826, out[2], 1e-9)
}
