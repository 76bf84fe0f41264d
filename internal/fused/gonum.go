package fused

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gonum runs the MLP on the CPU with gonum dense products.
//
// Each layer is one mat.Dense.Mul against the transposed weight view
// followed by an in-place Apply of the activation. Gonum computes in
// float64; results are rounded back to float32.
type Gonum struct{}

// NewGonum returns the CPU engine.
func NewGonum() *Gonum {
	return &Gonum{}
}

// Name returns the engine name.
func (g *Gonum) Name() string {
	return EngineGonum
}

// Forward runs x through every layer.
func (g *Gonum) Forward(x []float32, batch int, layers []Layer) ([]float32, error) {
	if err := checkInput(x, batch, layers); err != nil {
		return nil, err
	}

	h := mat.NewDense(batch, layers[0].In, widen(x))
	for i, l := range layers {
		if len(l.Weights) != l.In*l.Out {
			return nil, fmt.Errorf("fused: layer %d has %d weights, expected %d x %d", i, len(l.Weights), l.Out, l.In)
		}
		if _, c := h.Dims(); c != l.In {
			return nil, fmt.Errorf("fused: layer %d expects %d inputs, got %d", i, l.In, c)
		}

		w := mat.NewDense(l.Out, l.In, widen(l.Weights))
		out := mat.NewDense(batch, l.Out, nil)
		out.Mul(h, w.T())
		if l.Activation == ReLU {
			out.Apply(relu, out)
		}
		h = out
	}

	return narrow(h.RawMatrix().Data), nil
}

// Close releases nothing; the gonum engine holds no resources.
func (g *Gonum) Close() error {
	return nil
}

func relu(_, _ int, v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

func widen(src []float32) []float64 {
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}

func narrow(src []float64) []float32 {
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = float32(v)
	}
	return dst
}
