//go:build windows

package fused

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/backend/webgpu"
)

// WebGPU runs the MLP on the GPU. Intermediate activations stay in device
// memory for the whole call.
type WebGPU struct {
	backend *webgpu.Backend
}

// NewWebGPU opens the default GPU adapter.
func NewWebGPU() (*WebGPU, error) {
	backend, err := webgpu.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &WebGPU{backend: backend}, nil
}

// Name returns the engine name.
func (e *WebGPU) Name() string {
	return EngineWebGPU
}

// Forward runs x through every layer on the GPU.
func (e *WebGPU) Forward(x []float32, batch int, layers []Layer) ([]float32, error) {
	if err := checkInput(x, batch, layers); err != nil {
		return nil, err
	}

	dense := make([]webgpu.DenseLayer, len(layers))
	for i, l := range layers {
		if l.Activation != None && l.Activation != ReLU {
			return nil, fmt.Errorf("fused: webgpu: unsupported activation %s", l.Activation)
		}
		dense[i] = webgpu.DenseLayer{
			In:      l.In,
			Out:     l.Out,
			Weights: l.Weights,
			ReLU:    l.Activation == ReLU,
		}
	}
	return e.backend.MLP(x, batch, dense)
}

// Close releases the GPU device.
func (e *WebGPU) Close() error {
	e.backend.Release()
	return nil
}
