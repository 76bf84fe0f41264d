package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend satisfies Backend for tests that never dispatch an op.
type stubBackend struct{}

var errStub = errors.New("stub backend")

func (stubBackend) MatMul(_, _ *RawTensor) (*RawTensor, error) { return nil, errStub }
func (stubBackend) Transpose(_ *RawTensor) (*RawTensor, error) { return nil, errStub }
func (stubBackend) Cat(_ []*RawTensor, _ int) (*RawTensor, error) { return nil, errStub }
func (stubBackend) Narrow(_ *RawTensor, _, _, _ int) (*RawTensor, error) { return nil, errStub }
func (stubBackend) Name() string { return "stub" }
func (stubBackend) Device() Device { return CPU }

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, "float64", Float64.String())
}

func TestShape(t *testing.T) {
	s := Shape{4, 16}
	assert.Equal(t, 64, s.NumElements())
	assert.Equal(t, []int{16, 1}, s.ComputeStrides())
	assert.Equal(t, 16, s.Last())
	assert.True(t, s.Equal(Shape{4, 16}))
	assert.False(t, s.Equal(Shape{4, 16, 1}))
	assert.Equal(t, 1, Shape{}.NumElements())

	clone := s.Clone()
	clone[0] = 9
	assert.Equal(t, 4, s[0], "Clone must not alias")

	require.Error(t, Shape{3, 0}.Validate())
	require.NoError(t, s.Validate())
}

func TestShapeNormalizeDim(t *testing.T) {
	s := Shape{2, 3, 5}

	tests := []struct {
		in   int
		want int
		ok   bool
	}{
		{0, 0, true},
		{2, 2, true},
		{-1, 2, true},
		{-3, 0, true},
		{3, 0, false},
		{-4, 0, false},
	}

	for _, tt := range tests {
		got, err := s.NormalizeDim(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrShapeMismatch, "dim %d", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "dim %d", tt.in)
	}
}

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, stubBackend{})
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, Float32, x.DType())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, float32(2), x.At(0, 1))

	x.Set(42, 1, 0)
	assert.Equal(t, float32(42), x.Data()[3])

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2}, stubBackend{})
	require.Error(t, err)
}

func TestAtOutOfBoundsPanics(t *testing.T) {
	x := Zeros[float64](Shape{2, 2}, stubBackend{})
	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })
}

func TestCloneIsDeep(t *testing.T) {
	x := Full[float32](Shape{2, 2}, 0.5, stubBackend{})
	y := x.Clone()
	y.Set(3, 0, 0)

	assert.Equal(t, float32(0.5), x.At(0, 0))
	assert.Equal(t, float32(3), y.At(0, 0))
}

func TestReshape(t *testing.T) {
	x := Ones[float32](Shape{2, 6}, stubBackend{})

	y, err := x.Reshape(3, 4)
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 4}, y.Shape())

	_, err = x.Reshape(5, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewRawFromBytes(t *testing.T) {
	raw, err := NewRawFromBytes(Shape{2}, Float32, CPU, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x40})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, raw.AsFloat32())

	_, err = NewRawFromBytes(Shape{3}, Float32, CPU, make([]byte, 8))
	require.Error(t, err)
}

func TestCatSingleReturnsCopy(t *testing.T) {
	x := Ones[float32](Shape{2, 2}, stubBackend{})

	y, err := Cat(-1, x)
	require.NoError(t, err)
	y.Set(7, 0, 0)
	assert.Equal(t, float32(1), x.At(0, 0))

	_, err = Cat[float32, stubBackend](-1)
	require.Error(t, err)
}

func TestOpsPropagateBackendErrors(t *testing.T) {
	x := Ones[float32](Shape{2, 2}, stubBackend{})

	_, err := x.MatMul(x)
	assert.ErrorIs(t, err, errStub)
	_, err = x.Narrow(-1, 0, 1)
	assert.ErrorIs(t, err, errStub)
	_, err = Cat(-1, x, x)
	assert.ErrorIs(t, err, errStub)
}
