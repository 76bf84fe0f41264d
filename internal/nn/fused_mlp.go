package nn

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// FusedMLP is a dense ReLU network executed by a fused engine as one
// operation.
//
// All layer weights live in a single flat parameter named "params", laid
// out layer after layer, each layer row-major [out, in]. Hidden layers use
// cfg.Activation and the last layer uses cfg.OutputActivation. There are no
// biases.
//
// Example:
//
//	engine := fused.NewGonum()
//	cfg := fused.DefaultNetworkConfig(64, 1)
//	mlp, err := nn.NewFusedMLP(3, 16, cfg, engine, backend)
//	h, err := mlp.Forward(x) // [batch, 16]
type FusedMLP[B tensor.Backend] struct {
	nIn     int
	nOut    int
	cfg     fused.NetworkConfig
	engine  fused.Engine
	params  *Parameter[B]
	backend B
}

// NewFusedMLP creates a fused network with nIn inputs and nOut outputs.
//
// Each layer's slice of the flat vector is initialized with KaimingUniform
// for that layer's fan-in. Only WithSource is honoured among opts.
func NewFusedMLP[B tensor.Backend](
	nIn, nOut int,
	cfg fused.NetworkConfig,
	engine fused.Engine,
	backend B,
	opts ...LinearOption,
) (*FusedMLP[B], error) {
	if err := cfg.Validate(nIn, nOut); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, fmt.Errorf("fused mlp: nil engine")
	}

	options := &linearOptions{}
	for _, opt := range opts {
		opt(options)
	}

	flat := tensor.Zeros[float32](tensor.Shape{fused.NumParams(nIn, nOut, cfg)}, backend)
	data := flat.Data()
	offset := 0
	for _, d := range fused.Dims(nIn, nOut, cfg) {
		size := d[0] * d[1]
		w := KaimingUniform(d[0], tensor.Shape{d[1], d[0]}, options.src, backend)
		copy(data[offset:offset+size], w.Data())
		offset += size
	}

	return &FusedMLP[B]{
		nIn:     nIn,
		nOut:    nOut,
		cfg:     cfg,
		engine:  engine,
		params:  NewParameter("params", flat),
		backend: backend,
	}, nil
}

// Forward runs the whole network through the engine.
//
// Input shape: [batch_size, n_input_dims]
// Output shape: [batch_size, n_output_dims]
func (m *FusedMLP[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != m.nIn {
		return nil, fmt.Errorf("%w: fused mlp: expected input [batch, %d], got %v",
			tensor.ErrShapeMismatch, m.nIn, shape)
	}

	layers, err := fused.Layers(m.nIn, m.nOut, m.cfg, m.params.Tensor().Data())
	if err != nil {
		return nil, err
	}

	out, err := m.engine.Forward(input.Data(), shape[0], layers)
	if err != nil {
		return nil, fmt.Errorf("fused mlp (%s): %w", m.engine.Name(), err)
	}

	return tensor.FromSlice(out, tensor.Shape{shape[0], m.nOut}, m.backend)
}

// Parameters returns the flat weight vector.
func (m *FusedMLP[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{m.params}
}

// Engine returns the engine that executes the network.
func (m *FusedMLP[B]) Engine() fused.Engine {
	return m.engine
}

// Config returns the network config.
func (m *FusedMLP[B]) Config() fused.NetworkConfig {
	return m.cfg
}

// InputDims returns n_input_dims.
func (m *FusedMLP[B]) InputDims() int {
	return m.nIn
}

// OutputDims returns n_output_dims.
func (m *FusedMLP[B]) OutputDims() int {
	return m.nOut
}

// String returns a tiny-cuda-nn style summary.
func (m *FusedMLP[B]) String() string {
	return fmt.Sprintf(
		"FullyFusedMLP(n_input_dims=%d, n_output_dims=%d, n_neurons=%d, n_hidden_layers=%d, activation=%s, output_activation=%s, engine=%s)",
		m.nIn, m.nOut, m.cfg.NNeurons, m.cfg.NHiddenLayers, m.cfg.Activation, m.cfg.OutputActivation, m.engine.Name())
}

// StateDict returns {"params": flat weights}.
func (m *FusedMLP[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"params": m.params.Tensor().Raw(),
	}
}

// LoadStateDict loads the flat weight vector.
func (m *FusedMLP[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	raw, ok := stateDict["params"]
	if !ok {
		return fmt.Errorf("missing params in state dict")
	}
	return m.params.load(raw)
}
