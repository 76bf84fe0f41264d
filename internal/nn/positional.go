package nn

import (
	"fmt"
	"math"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// OneBlobEncoding encodes each input coordinate with a Gaussian kernel
// evaluated at nBins bin centres (Müller et al., "Neural Importance
// Sampling"). It produces the embed_pos input of the scene decoders.
//
// Inputs are expected in [0, 1]. For input shape [batch, dims] the output
// shape is [batch, dims*nBins], with all bins of coordinate 0 first.
//
//	out[b, d*nBins+i] = exp(-(x[b,d] - (i+0.5)/nBins)² / (2σ²)),  σ = 1/nBins
//
// Example:
//
//	enc := nn.NewOneBlobEncoding[Backend](4)
//	embedPos, err := enc.Forward(points) // [batch, 3] -> [batch, 12]
type OneBlobEncoding[B tensor.Backend] struct {
	nBins int
}

// NewOneBlobEncoding creates a one-blob encoding with nBins bins per
// coordinate.
//
// Panics if nBins is not positive.
func NewOneBlobEncoding[B tensor.Backend](nBins int) *OneBlobEncoding[B] {
	if nBins <= 0 {
		panic(fmt.Sprintf("OneBlobEncoding: nBins must be positive, got %d", nBins))
	}
	return &OneBlobEncoding[B]{nBins: nBins}
}

// OutputDims returns the encoded width for inputDims coordinates.
func (e *OneBlobEncoding[B]) OutputDims(inputDims int) int {
	return inputDims * e.nBins
}

// Forward encodes a [batch, dims] tensor.
func (e *OneBlobEncoding[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: one-blob encoding: expected 2D input, got %v", tensor.ErrShapeMismatch, shape)
	}
	batch, dims := shape[0], shape[1]

	sigma := 1 / float64(e.nBins)
	denom := 2 * sigma * sigma

	src := input.Data()
	out := make([]float32, batch*dims*e.nBins)
	for b := 0; b < batch; b++ {
		for d := 0; d < dims; d++ {
			x := float64(src[b*dims+d])
			base := (b*dims + d) * e.nBins
			for i := 0; i < e.nBins; i++ {
				diff := x - (float64(i)+0.5)/float64(e.nBins)
				out[base+i] = float32(math.Exp(-diff * diff / denom))
			}
		}
	}

	return tensor.FromSlice(out, tensor.Shape{batch, dims * e.nBins}, input.Backend())
}

// Parameters returns nil (the encoding is fixed).
func (e *OneBlobEncoding[B]) Parameters() []*Parameter[B] {
	return nil
}

func (e *OneBlobEncoding[B]) String() string {
	return fmt.Sprintf("OneBlobEncoding(n_bins=%d)", e.nBins)
}

// FrequencyEncoding is the NeRF positional encoding:
//
//	[x, sin(2⁰πx), cos(2⁰πx), ..., sin(2^(L-1)πx), cos(2^(L-1)πx)]
//
// The raw input is prepended only when includeInput is set. For input
// shape [batch, dims] the output is [batch, dims*(2L + include)], laid out
// per coordinate.
type FrequencyEncoding[B tensor.Backend] struct {
	nFreqs       int
	includeInput bool
}

// NewFrequencyEncoding creates a frequency encoding with nFreqs octaves.
//
// Panics if nFreqs is negative.
func NewFrequencyEncoding[B tensor.Backend](nFreqs int, includeInput bool) *FrequencyEncoding[B] {
	if nFreqs < 0 {
		panic(fmt.Sprintf("FrequencyEncoding: nFreqs must be non-negative, got %d", nFreqs))
	}
	return &FrequencyEncoding[B]{nFreqs: nFreqs, includeInput: includeInput}
}

func (e *FrequencyEncoding[B]) perDim() int {
	n := 2 * e.nFreqs
	if e.includeInput {
		n++
	}
	return n
}

// OutputDims returns the encoded width for inputDims coordinates.
func (e *FrequencyEncoding[B]) OutputDims(inputDims int) int {
	return inputDims * e.perDim()
}

// Forward encodes a [batch, dims] tensor.
func (e *FrequencyEncoding[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: frequency encoding: expected 2D input, got %v", tensor.ErrShapeMismatch, shape)
	}
	batch, dims := shape[0], shape[1]
	per := e.perDim()
	if per == 0 {
		return nil, fmt.Errorf("%w: frequency encoding: empty output", tensor.ErrShapeMismatch)
	}

	src := input.Data()
	out := make([]float32, batch*dims*per)
	for b := 0; b < batch; b++ {
		for d := 0; d < dims; d++ {
			x := float64(src[b*dims+d])
			o := out[(b*dims+d)*per : (b*dims+d+1)*per]
			if e.includeInput {
				o[0] = float32(x)
				o = o[1:]
			}
			for k := 0; k < e.nFreqs; k++ {
				s, c := math.Sincos(math.Ldexp(math.Pi, k) * x)
				o[2*k] = float32(s)
				o[2*k+1] = float32(c)
			}
		}
	}

	return tensor.FromSlice(out, tensor.Shape{batch, dims * per}, input.Backend())
}

// Parameters returns nil (the encoding is fixed).
func (e *FrequencyEncoding[B]) Parameters() []*Parameter[B] {
	return nil
}

func (e *FrequencyEncoding[B]) String() string {
	return fmt.Sprintf("FrequencyEncoding(n_frequencies=%d, include_input=%t)", e.nFreqs, e.includeInput)
}
