package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/Pallab007Saha/Own-co-slam/internal/parallel"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// SELU constants (Klambauer et al., 2017), identical to torch.nn.SELU.
const (
	seluAlpha = 1.6732632423543772848170429916717
	seluScale = 1.0507009873554804934193349852946
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, "relu", relu32, relu64)
}

// Swish computes x * sigmoid(x) element-wise.
func (cpu *CPUBackend) Swish(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, "swish", swish32, swish64)
}

// Mish computes x * tanh(softplus(x)) element-wise.
func (cpu *CPUBackend) Mish(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, "mish", mish32, mish64)
}

// SELU computes scale * (x if x > 0 else alpha * (exp(x) - 1)) element-wise.
func (cpu *CPUBackend) SELU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, "selu", selu32, selu64)
}

// unary applies a scalar function to every element of x, returning a new
// tensor of the same shape.
func (cpu *CPUBackend) unary(
	x *tensor.RawTensor,
	name string,
	f32 func(float32) float32,
	f64 func(float64) float64,
) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		apply(result.AsFloat32(), x.AsFloat32(), f32, cpu.parallel)
	case tensor.Float64:
		apply(result.AsFloat64(), x.AsFloat64(), f64, cpu.parallel)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

func apply[T tensor.DType](dst, src []T, f func(T) T, cfg parallel.Config) {
	parallel.ForRange(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	}, cfg)
}

func relu32(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

func relu64(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// sigmoid32 never evaluates exp of a positive argument, so it cannot
// overflow for large |x|.
func sigmoid32(x float32) float32 {
	if x >= 0 {
		return 1 / (1 + math32.Exp(-x))
	}
	e := math32.Exp(x)
	return e / (1 + e)
}

func sigmoid64(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// softplus32 uses max(x, 0) + log1p(exp(-|x|)).
func softplus32(x float32) float32 {
	return relu32(x) + math32.Log1p(math32.Exp(-math32.Abs(x)))
}

func softplus64(x float64) float64 {
	return relu64(x) + math.Log1p(math.Exp(-math.Abs(x)))
}

func swish32(x float32) float32 { return x * sigmoid32(x) }
func swish64(x float64) float64 { return x * sigmoid64(x) }

func mish32(x float32) float32 { return x * math32.Tanh(softplus32(x)) }
func mish64(x float64) float64 { return x * math.Tanh(softplus64(x)) }

func selu32(x float32) float32 {
	if x > 0 {
		return seluScale * x
	}
	return seluScale * seluAlpha * math32.Expm1(x)
}

func selu64(x float64) float64 {
	if x > 0 {
		return seluScale * x
	}
	return seluScale * seluAlpha * math.Expm1(x)
}
