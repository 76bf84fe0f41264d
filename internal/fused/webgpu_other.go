//go:build !windows

package fused

// WebGPU is only available on windows builds.
type WebGPU struct{}

// NewWebGPU always fails on this platform.
func NewWebGPU() (*WebGPU, error) {
	return nil, ErrUnavailable
}

// Name returns the engine name.
func (e *WebGPU) Name() string {
	return EngineWebGPU
}

// Forward always fails on this platform.
func (e *WebGPU) Forward([]float32, int, []Layer) ([]float32, error) {
	return nil, ErrUnavailable
}

// Close is a no-op.
func (e *WebGPU) Close() error {
	return nil
}
