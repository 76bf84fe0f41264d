package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pallab007Saha/Own-co-slam/internal/backend/cpu"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

func TestOneBlobEncoding(t *testing.T) {
	backend := cpu.New()
	enc := NewOneBlobEncoding[*cpu.CPUBackend](4)
	assert.Equal(t, 12, enc.OutputDims(3))

	x := fromSlice(t, backend, []float32{0.125, 0.5, 0.875, 0, 1, 0.375}, 2, 3)
	out, err := enc.Forward(x)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, 12}, out.Shape())

	// 0.125 is the centre of bin 0.
	assert.InDelta(t, 1.0, out.At(0, 0), 1e-6)
	// Neighbouring bin is one sigma away.
	assert.InDelta(t, math.Exp(-0.5), out.At(0, 1), 1e-6)
	// Peak moves with the coordinate: 0.875 is the centre of bin 3.
	assert.InDelta(t, 1.0, out.At(0, 2*4+3), 1e-6)

	for _, v := range out.Data() {
		assert.Greater(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestOneBlobEncoding_Errors(t *testing.T) {
	assert.Panics(t, func() { NewOneBlobEncoding[*cpu.CPUBackend](0) })

	backend := cpu.New()
	_, err := NewOneBlobEncoding[*cpu.CPUBackend](2).Forward(fromSlice(t, backend, []float32{1, 2}, 2))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestFrequencyEncoding(t *testing.T) {
	backend := cpu.New()
	enc := NewFrequencyEncoding[*cpu.CPUBackend](2, true)
	assert.Equal(t, 10, enc.OutputDims(2))

	x := fromSlice(t, backend, []float32{0.5, 0.25}, 1, 2)
	out, err := enc.Forward(x)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 10}, out.Shape())

	want := []float64{
		0.5, math.Sin(math.Pi * 0.5), math.Cos(math.Pi * 0.5), math.Sin(2 * math.Pi * 0.5), math.Cos(2 * math.Pi * 0.5),
		0.25, math.Sin(math.Pi * 0.25), math.Cos(math.Pi * 0.25), math.Sin(2 * math.Pi * 0.25), math.Cos(2 * math.Pi * 0.25),
	}
	for i, w := range want {
		assert.InDelta(t, w, out.Data()[i], 1e-6, "index %d", i)
	}
}

func TestFrequencyEncoding_WithoutInput(t *testing.T) {
	backend := cpu.New()
	enc := NewFrequencyEncoding[*cpu.CPUBackend](3, false)

	out, err := enc.Forward(fromSlice(t, backend, []float32{0, 0, 0}, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 18}, out.Shape())

	// sin(0) = 0, cos(0) = 1 for every octave.
	for i, v := range out.Data() {
		if i%2 == 0 {
			assert.Equal(t, float32(0), v)
		} else {
			assert.Equal(t, float32(1), v)
		}
	}

	_, err = NewFrequencyEncoding[*cpu.CPUBackend](0, false).Forward(fromSlice(t, backend, []float32{1}, 1, 1))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}
