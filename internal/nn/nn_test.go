package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/Pallab007Saha/Own-co-slam/internal/backend/cpu"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

type cpuTensor = tensor.Tensor[float32, *cpu.CPUBackend]

func fromSlice(t *testing.T, backend *cpu.CPUBackend, data []float32, shape ...int) *cpuTensor {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), backend)
	require.NoError(t, err)
	return x
}

func TestParameter(t *testing.T) {
	backend := cpu.New()
	data := fromSlice(t, backend, []float32{1, 2, 3}, 3)

	param := NewParameter("test_param", data)
	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Equal(t, 3, param.NumElements())
}

func TestParameter_Load(t *testing.T) {
	backend := cpu.New()
	param := NewParameter("w", Zeros(tensor.Shape{2}, backend))

	f64, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(f64.AsFloat64(), []float64{0.5, -1.5})
	require.NoError(t, param.load(f64))
	assert.Equal(t, []float32{0.5, -1.5}, param.Tensor().Data())

	wrong, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	assert.ErrorContains(t, param.load(wrong), "shape mismatch")
}

func TestKaimingUniform_Bounds(t *testing.T) {
	backend := cpu.New()
	fanIn := 16
	bound := float32(1 / math.Sqrt(float64(fanIn)))

	w := KaimingUniform(fanIn, tensor.Shape{64, fanIn}, rand.NewSource(1), backend)
	assert.Equal(t, tensor.Shape{64, fanIn}, w.Shape())

	var nonZero int
	for _, v := range w.Data() {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
		if v != 0 {
			nonZero++
		}
	}
	assert.Positive(t, nonZero)
}

func TestUniform_Seeded(t *testing.T) {
	backend := cpu.New()

	a := Uniform(tensor.Shape{8}, -1, 1, rand.NewSource(7), backend)
	b := Uniform(tensor.Shape{8}, -1, 1, rand.NewSource(7), backend)
	c := Uniform(tensor.Shape{8}, -1, 1, rand.NewSource(8), backend)

	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := NewLinear(3, 2, backend, WithBias(false))

	copy(layer.Weight().Tensor().Data(), []float32{
		1, 0, -1,
		2, 1, 0,
	})

	x := fromSlice(t, backend, []float32{1, 2, 3, 0, 1, 0}, 2, 3)
	y, err := layer.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.Equal(t, []float32{-2, 4, 0, 1}, y.Data())
	assert.Nil(t, layer.Bias())
	assert.Len(t, layer.Parameters(), 1)
}

func TestLinear_ForwardWithBias(t *testing.T) {
	backend := cpu.New()
	layer := NewLinear(2, 2, backend)
	require.NotNil(t, layer.Bias())
	assert.Len(t, layer.Parameters(), 2)

	copy(layer.Weight().Tensor().Data(), []float32{1, 0, 0, 1})
	copy(layer.Bias().Tensor().Data(), []float32{10, 20})

	y, err := layer.Forward(fromSlice(t, backend, []float32{1, 2, 3, 4}, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 22, 13, 24}, y.Data())
}

func TestLinear_ShapeMismatch(t *testing.T) {
	backend := cpu.New()
	layer := NewLinear(3, 2, backend, WithBias(false))

	_, err := layer.Forward(fromSlice(t, backend, make([]float32, 8), 2, 4))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = layer.Forward(fromSlice(t, backend, make([]float32, 3), 3))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestLinear_SeededSourceIsDeterministic(t *testing.T) {
	backend := cpu.New()
	a := NewLinear(4, 3, backend, WithBias(false), WithSource(rand.NewSource(3)))
	b := NewLinear(4, 3, backend, WithBias(false), WithSource(rand.NewSource(3)))

	assert.Equal(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data())
}

func TestLinear_StateDict(t *testing.T) {
	backend := cpu.New()
	src := NewLinear(3, 2, backend)
	dst := NewLinear(3, 2, backend)

	state := src.StateDict()
	assert.Len(t, state, 2)
	require.NoError(t, dst.LoadStateDict(state))

	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())
	assert.Equal(t, src.Bias().Tensor().Data(), dst.Bias().Tensor().Data())

	// Loading copies; the source is not aliased.
	dst.Weight().Tensor().Data()[0] = 100
	assert.NotEqual(t, float32(100), src.Weight().Tensor().Data()[0])

	err := dst.LoadStateDict(map[string]*tensor.RawTensor{"weight": state["weight"]})
	assert.ErrorContains(t, err, "missing bias")

	err = dst.LoadStateDict(map[string]*tensor.RawTensor{})
	assert.ErrorContains(t, err, "missing weight")
}

func TestLinear_String(t *testing.T) {
	layer := NewLinear(3, 64, cpu.New(), WithBias(false))
	assert.Equal(t, "Linear(in_features=3, out_features=64, bias=false)", layer.String())
}

func TestSequential(t *testing.T) {
	backend := cpu.New()
	first := NewLinear(2, 2, backend, WithBias(false))
	last := NewLinear(2, 1, backend, WithBias(false))
	copy(first.Weight().Tensor().Data(), []float32{1, 0, 0, -1})
	copy(last.Weight().Tensor().Data(), []float32{1, 1})

	model := NewSequential[*cpu.CPUBackend](first, NewReLU[*cpu.CPUBackend](), last)
	assert.Equal(t, 3, model.Len())
	assert.Same(t, first, model.Module(0))

	// [3, 4] -> [3, -4] -> relu [3, 0] -> 3
	y, err := model.Forward(fromSlice(t, backend, []float32{3, 4}, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, y.Data())

	params := model.Parameters()
	require.Len(t, params, 2)
	assert.Same(t, first.Weight(), params[0])
	assert.Same(t, last.Weight(), params[1])
}

func TestSequential_ErrorStopsChain(t *testing.T) {
	backend := cpu.New()
	model := NewSequential[*cpu.CPUBackend](
		NewLinear(2, 3, backend, WithBias(false)),
		NewLinear(4, 1, backend, WithBias(false)),
	)

	_, err := model.Forward(fromSlice(t, backend, []float32{1, 2}, 1, 2))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestSequential_StateDict(t *testing.T) {
	backend := cpu.New()
	build := func() *Sequential[*cpu.CPUBackend] {
		return NewSequential[*cpu.CPUBackend](
			NewLinear(3, 4, backend, WithBias(false)),
			NewSwish[*cpu.CPUBackend](),
			NewLinear(4, 2, backend, WithBias(false)),
		)
	}
	src, dst := build(), build()

	state := src.StateDict()
	assert.Len(t, state, 2)
	assert.Contains(t, state, "0.weight")
	assert.Contains(t, state, "2.weight")

	require.NoError(t, dst.LoadStateDict(state))
	assert.Equal(t, src.Parameters()[1].Tensor().Data(), dst.Parameters()[1].Tensor().Data())

	delete(state, "2.weight")
	err := dst.LoadStateDict(state)
	assert.ErrorContains(t, err, "failed to load module 2")
}

func TestSequential_LoadStateDictIsAtomic(t *testing.T) {
	backend := cpu.New()
	build := func(seed uint64) *Sequential[*cpu.CPUBackend] {
		src := rand.NewSource(seed)
		return NewSequential[*cpu.CPUBackend](
			NewLinear(3, 4, backend, WithBias(false), WithSource(src)),
			NewMish[*cpu.CPUBackend](),
			NewLinear(4, 2, backend, WithBias(false), WithSource(src)),
		)
	}
	src, dst := build(1), build(2)
	before := Snapshot(dst)

	// Module 0 loads before module 2 fails.
	state := src.StateDict()
	state["2.weight"] = state["0.weight"]
	err := dst.LoadStateDict(state)
	require.ErrorContains(t, err, "failed to load module 2")
	assert.ErrorContains(t, err, "shape mismatch")

	for key, raw := range dst.StateDict() {
		assert.Equal(t, before[key].Data(), raw.Data(), key)
	}
}

func TestLinear_LoadStateDictKeepsWeightOnBadBias(t *testing.T) {
	backend := cpu.New()
	src := NewLinear(2, 3, backend, WithSource(rand.NewSource(1)))
	dst := NewLinear(2, 3, backend, WithSource(rand.NewSource(2)))
	weight := append([]float32(nil), dst.Weight().Tensor().Data()...)

	state := src.StateDict()
	state["bias"] = state["weight"]
	assert.ErrorContains(t, dst.LoadStateDict(state), "shape mismatch")
	assert.Equal(t, weight, dst.Weight().Tensor().Data())
}

func TestSnapshotRestore(t *testing.T) {
	layer := NewLinear(2, 2, cpu.New(), WithBias(false))
	copy(layer.Weight().Tensor().Data(), []float32{1, 2, 3, 4})

	snap := Snapshot(layer)
	layer.Weight().Tensor().Data()[0] = 9
	assert.Equal(t, []float32{1, 2, 3, 4}, snap["weight"].AsFloat32())

	Restore(layer, snap)
	assert.Equal(t, []float32{1, 2, 3, 4}, layer.Weight().Tensor().Data())
}

func TestSequential_String(t *testing.T) {
	backend := cpu.New()
	model := NewSequential[*cpu.CPUBackend](
		NewLinear(3, 4, backend, WithBias(false)),
		NewMish[*cpu.CPUBackend](),
	)

	want := "Sequential(\n" +
		"  (0): Linear(in_features=3, out_features=4, bias=false)\n" +
		"  (1): Mish()\n" +
		")"
	assert.Equal(t, want, model.String())
}
