package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Uniform creates a tensor with values drawn from U(low, high).
//
// Samples are taken from src in row-major order, so a seeded source gives
// reproducible weights. A nil src uses the global generator of
// golang.org/x/exp/rand.
func Uniform[B tensor.Backend](shape tensor.Shape, low, high float64, src rand.Source, backend B) *tensor.Tensor[float32, B] {
	dist := distuv.Uniform{
		Min: low,
		Max: high,
		Src: src,
	}

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32(dist.Rand())
	}
	return t
}

// KaimingUniform initializes a weight with fan-in fanIn the way PyTorch's
// nn.Linear does by default (kaiming_uniform_ with a = sqrt(5)):
//
//	U(-1/sqrt(fan_in), 1/sqrt(fan_in))
func KaimingUniform[B tensor.Backend](fanIn int, shape tensor.Shape, src rand.Source, backend B) *tensor.Tensor[float32, B] {
	bound := 1 / math.Sqrt(float64(fanIn))
	return Uniform(shape, -bound, bound, src, backend)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
