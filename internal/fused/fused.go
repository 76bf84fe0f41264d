// Package fused executes dense ReLU MLPs as a single opaque operation.
//
// A network is described the way tiny-cuda-nn describes a FullyFusedMLP:
// input and output widths plus a NetworkConfig. Its weights live in one flat
// float32 vector, laid out layer after layer, each layer row-major
// [out, in]. An Engine runs the whole stack without exposing intermediate
// activations.
package fused

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when an engine cannot run on this platform.
var ErrUnavailable = errors.New("fused: engine unavailable")

// Activation selects the nonlinearity applied after a layer.
type Activation int

// Supported activations.
const (
	None Activation = iota
	ReLU
)

// String returns the tiny-cuda-nn name of the activation.
func (a Activation) String() string {
	switch a {
	case None:
		return "None"
	case ReLU:
		return "ReLU"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// NetworkConfig mirrors the tiny-cuda-nn network_config of a FullyFusedMLP.
type NetworkConfig struct {
	Activation       Activation
	OutputActivation Activation
	NNeurons         int
	NHiddenLayers    int
}

// DefaultNetworkConfig returns a ReLU network with linear output.
func DefaultNetworkConfig(neurons, hiddenLayers int) NetworkConfig {
	return NetworkConfig{
		Activation:       ReLU,
		OutputActivation: None,
		NNeurons:         neurons,
		NHiddenLayers:    hiddenLayers,
	}
}

// Validate checks the config for a network with nIn inputs and nOut outputs.
func (c NetworkConfig) Validate(nIn, nOut int) error {
	if nIn < 1 || nOut < 1 {
		return fmt.Errorf("fused: input and output widths must be positive, got %d and %d", nIn, nOut)
	}
	if c.NNeurons < 1 {
		return fmt.Errorf("fused: n_neurons must be positive, got %d", c.NNeurons)
	}
	if c.NHiddenLayers < 0 {
		return fmt.Errorf("fused: n_hidden_layers must be non-negative, got %d", c.NHiddenLayers)
	}
	return nil
}

// Layer is one bias-free dense layer. Weights alias the flat parameter
// vector and are row-major [Out, In].
type Layer struct {
	In         int
	Out        int
	Weights    []float32
	Activation Activation
}

// Dims returns the (in, out) width of every layer of the network.
//
// With NHiddenLayers == 0 the network is a single nIn -> nOut projection.
func Dims(nIn, nOut int, cfg NetworkConfig) [][2]int {
	if cfg.NHiddenLayers == 0 {
		return [][2]int{{nIn, nOut}}
	}
	dims := make([][2]int, 0, cfg.NHiddenLayers+1)
	dims = append(dims, [2]int{nIn, cfg.NNeurons})
	for i := 1; i < cfg.NHiddenLayers; i++ {
		dims = append(dims, [2]int{cfg.NNeurons, cfg.NNeurons})
	}
	return append(dims, [2]int{cfg.NNeurons, nOut})
}

// NumParams returns the length of the flat weight vector.
func NumParams(nIn, nOut int, cfg NetworkConfig) int {
	n := 0
	for _, d := range Dims(nIn, nOut, cfg) {
		n += d[0] * d[1]
	}
	return n
}

// Layers slices params into per-layer views. No weights are copied.
func Layers(nIn, nOut int, cfg NetworkConfig, params []float32) ([]Layer, error) {
	if want := NumParams(nIn, nOut, cfg); len(params) != want {
		return nil, fmt.Errorf("fused: expected %d parameters, got %d", want, len(params))
	}

	dims := Dims(nIn, nOut, cfg)
	layers := make([]Layer, len(dims))
	offset := 0
	for i, d := range dims {
		act := cfg.Activation
		if i == len(dims)-1 {
			act = cfg.OutputActivation
		}
		size := d[0] * d[1]
		layers[i] = Layer{
			In:         d[0],
			Out:        d[1],
			Weights:    params[offset : offset+size],
			Activation: act,
		}
		offset += size
	}
	return layers, nil
}

// Engine runs a dense MLP.
//
// Forward takes x as row-major [batch, layers[0].In] and returns a new
// [batch, layers[len-1].Out] slice. Engines must be safe for concurrent use.
type Engine interface {
	Name() string
	Forward(x []float32, batch int, layers []Layer) ([]float32, error)
	Close() error
}

// Engine names accepted by New.
const (
	EngineGonum  = "gonum"
	EngineWebGPU = "webgpu"
)

// New returns the engine registered under name.
func New(name string) (Engine, error) {
	switch name {
	case EngineGonum, "":
		return NewGonum(), nil
	case EngineWebGPU:
		e, err := NewWebGPU()
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("fused: unknown engine %q", name)
	}
}

func checkInput(x []float32, batch int, layers []Layer) error {
	if len(layers) == 0 {
		return errors.New("fused: no layers")
	}
	if batch < 1 || len(x) != batch*layers[0].In {
		return fmt.Errorf("fused: input has %d values, expected %d x %d", len(x), batch, layers[0].In)
	}
	return nil
}
