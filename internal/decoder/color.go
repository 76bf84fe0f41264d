package decoder

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
	"github.com/Pallab007Saha/Own-co-slam/internal/nn"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// ColorNet maps color features concatenated with the latent geometry
// feature to RGB. The output is not squashed to [0, 1].
type ColorNet[B tensor.Backend] struct {
	inputCh    int
	geoFeatDim int
	hiddenDim  int
	numLayers  int
	fused      bool

	model  stack[B]
	engine fused.Engine
}

// NewColorNet builds a color network taking inputCh+geoFeatDim inputs.
func NewColorNet[B tensor.Backend](
	inputCh, geoFeatDim, hiddenDim, numLayers int,
	useFused bool,
	backend B,
	opts ...Option,
) (*ColorNet[B], error) {
	return newColorNet(inputCh, geoFeatDim, hiddenDim, numLayers, useFused, backend, newOptions(opts))
}

func newColorNet[B tensor.Backend](
	inputCh, geoFeatDim, hiddenDim, numLayers int,
	useFused bool,
	backend B,
	o *options,
) (*ColorNet[B], error) {
	if inputCh < 0 || geoFeatDim < 0 {
		return nil, fmt.Errorf("%w: color_net: input_ch and geo_feat_dim must be >= 0, got %d and %d",
			ErrInvalidConfig, inputCh, geoFeatDim)
	}

	model, engine, err := buildStack("color_net", inputCh+geoFeatDim, hiddenDim, 3, numLayers, useFused, o, backend)
	if err != nil {
		return nil, err
	}

	return &ColorNet[B]{
		inputCh:    inputCh,
		geoFeatDim: geoFeatDim,
		hiddenDim:  hiddenDim,
		numLayers:  numLayers,
		fused:      useFused,
		model:      model,
		engine:     engine,
	}, nil
}

// Forward maps [batch, inputCh+geoFeatDim] to [batch, 3].
func (n *ColorNet[B]) Forward(inputFeat *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return n.model.Forward(inputFeat)
}

// Parameters returns the weights in layer order.
func (n *ColorNet[B]) Parameters() []*nn.Parameter[B] {
	return n.model.Parameters()
}

// Fused reports whether the network runs on a fused engine.
func (n *ColorNet[B]) Fused() bool {
	return n.fused
}

// InputDims returns the full input width, inputCh+geoFeatDim.
func (n *ColorNet[B]) InputDims() int {
	return n.inputCh + n.geoFeatDim
}

func (n *ColorNet[B]) StateDict() map[string]*tensor.RawTensor {
	return prefixed("model.", n.model.StateDict())
}

func (n *ColorNet[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadPrefixed(n.model, "model.", stateDict)
}

func (n *ColorNet[B]) String() string {
	return "ColorNet(\n  (model): " + indent(n.model.String()) + "\n)"
}

// Close releases a fused engine created by the network.
func (n *ColorNet[B]) Close() error {
	if n.engine == nil {
		return nil
	}
	err := n.engine.Close()
	n.engine = nil
	return err
}
