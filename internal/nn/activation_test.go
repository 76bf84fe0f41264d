package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pallab007Saha/Own-co-slam/internal/backend/cpu"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// bareBackend has the tensor.Backend methods but no activation kernels.
type bareBackend struct {
	cpu *cpu.CPUBackend
}

func (b bareBackend) MatMul(x, y *tensor.RawTensor) (*tensor.RawTensor, error) { return b.cpu.MatMul(x, y) }
func (b bareBackend) Transpose(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return b.cpu.Transpose(x)
}
func (b bareBackend) Cat(ts []*tensor.RawTensor, dim int) (*tensor.RawTensor, error) {
	return b.cpu.Cat(ts, dim)
}
func (b bareBackend) Narrow(x *tensor.RawTensor, dim, start, length int) (*tensor.RawTensor, error) {
	return b.cpu.Narrow(x, dim, start, length)
}
func (b bareBackend) Name() string          { return "bare" }
func (b bareBackend) Device() tensor.Device { return tensor.CPU }

func TestActivationModules(t *testing.T) {
	backend := cpu.New()
	input := fromSlice(t, backend, []float32{-2, -1, 0, 1, 2}, 5)

	sigmoid := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	softplus := func(x float64) float64 { return math.Log1p(math.Exp(x)) }

	tests := []struct {
		name   string
		module Module[*cpu.CPUBackend]
		ref    func(float64) float64
	}{
		{"ReLU", NewReLU[*cpu.CPUBackend](), func(x float64) float64 { return math.Max(0, x) }},
		{"Swish", NewSwish[*cpu.CPUBackend](), func(x float64) float64 { return x * sigmoid(x) }},
		{"Mish", NewMish[*cpu.CPUBackend](), func(x float64) float64 { return x * math.Tanh(softplus(x)) }},
		{"SELU", NewSELU[*cpu.CPUBackend](), func(x float64) float64 {
			const alpha, scale = 1.6732632423543772, 1.0507009873554805
			if x > 0 {
				return scale * x
			}
			return scale * alpha * (math.Exp(x) - 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.module.Forward(input)
			require.NoError(t, err)
			require.Equal(t, input.Shape(), out.Shape())
			assert.Nil(t, tt.module.Parameters())

			for i, x := range input.Data() {
				assert.InDelta(t, tt.ref(float64(x)), float64(out.Data()[i]), 1e-5, "%s(%v)", tt.name, x)
			}
			assert.Equal(t, tt.name+"()", tt.module.(interface{ String() string }).String())
		})
	}
}

func TestActivationFuncs(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, backend, []float32{0}, 1, 1)

	assert.Equal(t, float32(0), SwishFunc(x).At(0, 0))
	assert.Equal(t, float32(0), MishFunc(x).At(0, 0))
}

func TestSwishMish_Asymptotics(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, backend, []float32{-1000, -50, -5, 5, 50, 1000}, 6)

	for name, f := range map[string]func(*cpuTensor) *cpuTensor{
		"swish": SwishFunc[*cpu.CPUBackend],
		"mish":  MishFunc[*cpu.CPUBackend],
	} {
		out := f(x).Data()
		for i := range out {
			v := float64(out[i])
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s(%v) = %v", name, x.Data()[i], v)
			// Bounded below.
			assert.Greater(t, v, -0.5, "%s(%v)", name, x.Data()[i])
		}
		// Increasing for large positive input.
		assert.Less(t, out[3], out[4], name)
		assert.Less(t, out[4], out[5], name)
		assert.InDelta(t, 1000, out[5], 1e-3, name)
	}
}

func TestActivation_UnsupportedBackend(t *testing.T) {
	backend := bareBackend{cpu: cpu.New()}
	x, err := tensor.FromSlice([]float32{1}, tensor.Shape{1}, backend)
	require.NoError(t, err)

	_, err = NewMish[bareBackend]().Forward(x)
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Panics(t, func() { SwishFunc(x) })
}
