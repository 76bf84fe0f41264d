package decoder

import (
	"fmt"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
	"github.com/Pallab007Saha/Own-co-slam/internal/nn"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// SDFNet maps an encoded point to its signed distance followed by
// geoFeatDim latent geometry features.
//
// Output shape: [batch, 1+geoFeatDim], column 0 is the SDF.
type SDFNet[B tensor.Backend] struct {
	inputCh    int
	geoFeatDim int
	hiddenDim  int
	numLayers  int
	fused      bool

	model  stack[B]
	engine fused.Engine // owned, nil if injected or explicit
}

// NewSDFNet builds an SDF network with numLayers bias-free layers.
//
// With useFused the layers run as one FullyFusedMLP on the engine chosen by
// WithEngine or WithFusedEngine.
func NewSDFNet[B tensor.Backend](
	inputCh, geoFeatDim, hiddenDim, numLayers int,
	useFused bool,
	backend B,
	opts ...Option,
) (*SDFNet[B], error) {
	return newSDFNet(inputCh, geoFeatDim, hiddenDim, numLayers, useFused, backend, newOptions(opts))
}

func newSDFNet[B tensor.Backend](
	inputCh, geoFeatDim, hiddenDim, numLayers int,
	useFused bool,
	backend B,
	o *options,
) (*SDFNet[B], error) {
	if geoFeatDim < 0 {
		return nil, fmt.Errorf("%w: sdf_net: geo_feat_dim must be >= 0, got %d", ErrInvalidConfig, geoFeatDim)
	}

	model, engine, err := buildStack("sdf_net", inputCh, hiddenDim, 1+geoFeatDim, numLayers, useFused, o, backend)
	if err != nil {
		return nil, err
	}

	return &SDFNet[B]{
		inputCh:    inputCh,
		geoFeatDim: geoFeatDim,
		hiddenDim:  hiddenDim,
		numLayers:  numLayers,
		fused:      useFused,
		model:      model,
		engine:     engine,
	}, nil
}

// Forward evaluates the network on x of shape [batch, inputCh].
//
// With returnGeo the full [batch, 1+geoFeatDim] output is returned,
// otherwise only the SDF column as [batch, 1].
func (n *SDFNet[B]) Forward(x *tensor.Tensor[float32, B], returnGeo bool) (*tensor.Tensor[float32, B], error) {
	out, err := n.model.Forward(x)
	if err != nil {
		return nil, err
	}
	if returnGeo {
		return out, nil
	}
	return out.Narrow(-1, 0, 1)
}

// Parameters returns the weights in layer order.
func (n *SDFNet[B]) Parameters() []*nn.Parameter[B] {
	return n.model.Parameters()
}

// Fused reports whether the network runs on a fused engine.
func (n *SDFNet[B]) Fused() bool {
	return n.fused
}

// InputCh returns the input width.
func (n *SDFNet[B]) InputCh() int {
	return n.inputCh
}

// GeoFeatDim returns the width of the latent geometry feature.
func (n *SDFNet[B]) GeoFeatDim() int {
	return n.geoFeatDim
}

// StateDict returns the weights keyed "model.0.weight", "model.2.weight",
// ... or "model.params" in fused mode.
func (n *SDFNet[B]) StateDict() map[string]*tensor.RawTensor {
	return prefixed("model.", n.model.StateDict())
}

// LoadStateDict loads weights keyed as StateDict produces them.
func (n *SDFNet[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadPrefixed(n.model, "model.", stateDict)
}

func (n *SDFNet[B]) String() string {
	return "SDFNet(\n  (model): " + indent(n.model.String()) + "\n)"
}

// Close releases a fused engine created by the network.
func (n *SDFNet[B]) Close() error {
	if n.engine == nil {
		return nil
	}
	err := n.engine.Close()
	n.engine = nil
	return err
}
