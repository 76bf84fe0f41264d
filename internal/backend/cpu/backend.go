// Package cpu implements the CPU backend: pure Go kernels with row-level
// parallelism.
package cpu

import (
	"github.com/Pallab007Saha/Own-co-slam/internal/parallel"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// A CPUBackend holds no mutable state after construction and may be shared
// by concurrent forward passes.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend using all available cores.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// ParallelConfig returns the parallelism settings used by the kernels.
func (cpu *CPUBackend) ParallelConfig() parallel.Config {
	return cpu.parallel
}
