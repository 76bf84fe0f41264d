package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized with KaimingUniform, biases with
// U(-1/sqrt(in), 1/sqrt(in)), matching torch.nn.Linear.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(3, 64, backend, nn.WithBias(false))
//	output, err := layer.Forward(input) // [batch, 64]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features], nil when disabled
}

// LinearOption configures a Linear layer.
type LinearOption func(*linearOptions)

type linearOptions struct {
	bias bool
	src  rand.Source
}

// WithBias enables or disables the bias term. Enabled by default.
func WithBias(enabled bool) LinearOption {
	return func(o *linearOptions) {
		o.bias = enabled
	}
}

// WithSource draws initial weights from src instead of the global
// generator.
func WithSource(src rand.Source) LinearOption {
	return func(o *linearOptions) {
		o.src = src
	}
}

// NewLinear creates a new Linear layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	options := &linearOptions{bias: true}
	for _, opt := range opts {
		opt(options)
	}

	weight := NewParameter("weight",
		KaimingUniform(inFeatures, tensor.Shape{outFeatures, inFeatures}, options.src, backend))

	var bias *Parameter[B]
	if options.bias {
		bias = NewParameter("bias",
			KaimingUniform(inFeatures, tensor.Shape{outFeatures}, options.src, backend))
	}

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes y = x @ W.T (+ b).
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	inputShape := input.Shape()
	if len(inputShape) != 2 || inputShape[1] != l.inFeatures {
		return nil, fmt.Errorf("%w: linear: expected input [batch, %d], got %v",
			tensor.ErrShapeMismatch, l.inFeatures, inputShape)
	}

	wT, err := l.weight.Tensor().Transpose() // [in_features, out_features]
	if err != nil {
		return nil, err
	}

	output, err := input.MatMul(wT)
	if err != nil {
		return nil, err
	}

	if l.bias != nil {
		b := l.bias.Tensor().Data()
		out := output.Data()
		for row := 0; row < inputShape[0]; row++ {
			r := out[row*l.outFeatures : (row+1)*l.outFeatures]
			for j := range r {
				r[j] += b[j]
			}
		}
	}

	return output, nil
}

// Parameters returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil for a bias-free layer.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// String returns a PyTorch-style summary.
func (l *Linear[B]) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d, bias=%t)", l.inFeatures, l.outFeatures, l.bias != nil)
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
	}
	if l.bias != nil {
		stateDict["bias"] = l.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary. The weight is
// left untouched when the bias cannot be loaded.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weightRaw, ok := stateDict["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}
	var biasRaw *tensor.RawTensor
	if l.bias != nil {
		if biasRaw, ok = stateDict["bias"]; !ok {
			return fmt.Errorf("missing bias in state dict")
		}
	}

	snap := Snapshot(l)
	if err := l.weight.load(weightRaw); err != nil {
		return err
	}
	if biasRaw != nil {
		if err := l.bias.load(biasRaw); err != nil {
			Restore(l, snap)
			return err
		}
	}

	return nil
}
