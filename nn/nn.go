// Copyright 2025 The Own-co-slam Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"golang.org/x/exp/rand"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
	"github.com/Pallab007Saha/Own-co-slam/internal/nn"
	"github.com/Pallab007Saha/Own-co-slam/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is implemented by modules whose weights can be exported and
// restored by name.
type Stateful = nn.Stateful

// Snapshot returns deep copies of the weights of s, for Restore.
func Snapshot(s Stateful) map[string]*tensor.RawTensor { return nn.Snapshot(s) }

// Restore copies the weights saved by Snapshot back into s.
func Restore(s Stateful, snap map[string]*tensor.RawTensor) { nn.Restore(s, snap) }

// Parameter represents a named weight tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// ErrUnsupported is returned when the backend lacks a kernel a module needs.
var ErrUnsupported = nn.ErrUnsupported

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearOption configures a Linear layer.
type LinearOption = nn.LinearOption

// WithBias enables or disables the bias term. Enabled by default.
func WithBias(enabled bool) LinearOption {
	return nn.WithBias(enabled)
}

// WithSource draws initial weights from src instead of the global
// generator.
func WithSource(src rand.Source) LinearOption {
	return nn.WithSource(src)
}

// NewLinear creates a new linear layer with PyTorch's default
// initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(15, 64, backend, nn.WithBias(false))
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend, opts...)
}

// FusedMLP is a dense ReLU network executed by a fused engine.
type FusedMLP[B tensor.Backend] = nn.FusedMLP[B]

// NetworkConfig mirrors the tiny-cuda-nn network_config of a FullyFusedMLP.
type NetworkConfig = fused.NetworkConfig

// Engine runs a FusedMLP.
type Engine = fused.Engine

// ErrEngineUnavailable is returned when a fused engine cannot run on this
// platform.
var ErrEngineUnavailable = fused.ErrUnavailable

// NewEngine returns the fused engine named "gonum" or "webgpu".
func NewEngine(name string) (Engine, error) {
	return fused.New(name)
}

// DefaultNetworkConfig returns a ReLU network with linear output.
func DefaultNetworkConfig(neurons, hiddenLayers int) NetworkConfig {
	return fused.DefaultNetworkConfig(neurons, hiddenLayers)
}

// NewFusedMLP creates a fused network with nIn inputs and nOut outputs.
func NewFusedMLP[B tensor.Backend](
	nIn, nOut int,
	cfg NetworkConfig,
	engine Engine,
	backend B,
	opts ...LinearOption,
) (*FusedMLP[B], error) {
	return nn.NewFusedMLP(nIn, nOut, cfg, engine, backend, opts...)
}

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Activations

// ReLU applies max(0, x). Linear and ReLU layers in a Sequential rebuild
// a FusedMLP layer by layer.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] { return nn.NewReLU[B]() }

// Swish applies x * sigmoid(x).
type Swish[B tensor.Backend] = nn.Swish[B]

// NewSwish creates a Swish activation.
func NewSwish[B tensor.Backend]() *Swish[B] { return nn.NewSwish[B]() }

// Mish applies x * tanh(softplus(x)).
type Mish[B tensor.Backend] = nn.Mish[B]

// NewMish creates a Mish activation.
func NewMish[B tensor.Backend]() *Mish[B] { return nn.NewMish[B]() }

// SELU applies the scaled exponential linear unit.
type SELU[B tensor.Backend] = nn.SELU[B]

// NewSELU creates a SELU activation.
func NewSELU[B tensor.Backend]() *SELU[B] { return nn.NewSELU[B]() }

// SwishFunc applies Swish to x. It panics if the backend lacks the kernel.
func SwishFunc[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.SwishFunc(x)
}

// MishFunc applies Mish to x. It panics if the backend lacks the kernel.
func MishFunc[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.MishFunc(x)
}

// Encodings

// OneBlobEncoding encodes coordinates in [0, 1] with Gaussian kernels.
type OneBlobEncoding[B tensor.Backend] = nn.OneBlobEncoding[B]

// NewOneBlobEncoding creates a one-blob encoding with nBins bins.
func NewOneBlobEncoding[B tensor.Backend](nBins int) *OneBlobEncoding[B] {
	return nn.NewOneBlobEncoding[B](nBins)
}

// FrequencyEncoding encodes coordinates with sin/cos at octave frequencies.
type FrequencyEncoding[B tensor.Backend] = nn.FrequencyEncoding[B]

// NewFrequencyEncoding creates a frequency encoding with nFreqs octaves.
func NewFrequencyEncoding[B tensor.Backend](nFreqs int, includeInput bool) *FrequencyEncoding[B] {
	return nn.NewFrequencyEncoding[B](nFreqs, includeInput)
}
