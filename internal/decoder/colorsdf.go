package decoder

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Pallab007Saha/Own-co-slam/internal/checkpoint"
	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
	"github.com/Pallab007Saha/Own-co-slam/internal/nn"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// Default embedding widths of the composite decoders.
const (
	DefaultInputCh    = 3
	DefaultInputChPos = 12
)

// Metadata keys written by SaveWeights next to the Config keys.
const (
	MetaVersion    = "decoder.version"
	MetaInputCh    = "decoder.input_ch"
	MetaInputChPos = "decoder.input_ch_pos"
)

// composite holds the two sub-networks shared by ColorSDFNet and
// ColorSDFNetV2.
type composite[B tensor.Backend] struct {
	name       string
	cfg        Config
	inputCh    int
	inputChPos int

	sdf   *SDFNet[B]
	color *ColorNet[B]

	engine fused.Engine // shared by both nets, nil unless owned
	logger *zap.Logger
}

func newComposite[B tensor.Backend](
	name string,
	cfg Config,
	inputCh, inputChPos, colorInputCh int,
	backend B,
	opts []Option,
) (*composite[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if inputCh < 0 || inputChPos < 0 || inputCh+inputChPos < 1 {
		return nil, fmt.Errorf("%w: %s: input_ch=%d, input_ch_pos=%d", ErrInvalidConfig, name, inputCh, inputChPos)
	}

	o := newOptions(append([]Option{WithFusedEngine(cfg.engineName())}, opts...))

	c := &composite[B]{
		name:       name,
		cfg:        cfg,
		inputCh:    inputCh,
		inputChPos: inputChPos,
		logger:     o.logger,
	}

	if cfg.TCNNNetwork {
		engine, owned, err := o.ensureEngine()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		o.engine = engine
		if owned {
			c.engine = engine
		}
	}

	var err error
	c.color, err = newColorNet(colorInputCh, cfg.GeoFeatDim, cfg.HiddenDimColor, cfg.NumLayersColor, cfg.TCNNNetwork, backend, o)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.sdf, err = newSDFNet(inputCh+inputChPos, cfg.GeoFeatDim, cfg.HiddenDim, cfg.NumLayers, cfg.TCNNNetwork, backend, o)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	o.logger.Debug("built decoder",
		zap.String("decoder", name),
		zap.Bool("fused", cfg.TCNNNetwork),
		zap.Int("input_ch", inputCh),
		zap.Int("input_ch_pos", inputChPos),
		zap.Int("params", countParams(c.Parameters())))
	return c, nil
}

// geometry runs the SDF network and splits its output into the SDF column
// and the latent feature.
func (c *composite[B]) geometry(x *tensor.Tensor[float32, B]) (sdf, geoFeat *tensor.Tensor[float32, B], err error) {
	h, err := c.sdf.Forward(x, true)
	if err != nil {
		return nil, nil, err
	}
	if sdf, err = h.Narrow(-1, 0, 1); err != nil {
		return nil, nil, err
	}
	if geoFeat, err = h.Narrow(-1, 1, c.cfg.GeoFeatDim); err != nil {
		return nil, nil, err
	}
	return sdf, geoFeat, nil
}

// finish runs the color network on colorIn and appends the SDF column.
func (c *composite[B]) finish(colorIn, sdf *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	rgb, err := c.color.Forward(colorIn)
	if err != nil {
		return nil, err
	}
	return tensor.Cat(-1, rgb, sdf)
}

// Parameters returns the color network's weights followed by the SDF
// network's.
func (c *composite[B]) Parameters() []*nn.Parameter[B] {
	params := c.color.Parameters()
	return append(params, c.sdf.Parameters()...)
}

// NumParameters returns the total number of scalar weights.
func (c *composite[B]) NumParameters() int {
	return countParams(c.Parameters())
}

// Config returns the decoder configuration.
func (c *composite[B]) Config() Config {
	return c.cfg
}

// SDFNet returns the geometry network.
func (c *composite[B]) SDFNet() *SDFNet[B] {
	return c.sdf
}

// ColorNet returns the color network.
func (c *composite[B]) ColorNet() *ColorNet[B] {
	return c.color
}

// StateDict returns all weights keyed "sdf_net.model.0.weight",
// "color_net.model.2.weight", ...
func (c *composite[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := prefixed("sdf_net.", c.sdf.StateDict())
	maps.Copy(stateDict, prefixed("color_net.", c.color.StateDict()))
	return stateDict
}

// LoadStateDict loads weights keyed as StateDict produces them. Unknown
// and missing keys are errors, and on any error both networks keep their
// previous weights.
func (c *composite[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for key := range stateDict {
		if !strings.HasPrefix(key, "sdf_net.") && !strings.HasPrefix(key, "color_net.") {
			return fmt.Errorf("unexpected key %s in state dict", key)
		}
	}

	sdfSnap := nn.Snapshot(c.sdf)
	if err := loadPrefixed(c.sdf, "sdf_net.", stateDict); err != nil {
		return fmt.Errorf("sdf_net: %w", err)
	}
	if err := loadPrefixed(c.color, "color_net.", stateDict); err != nil {
		nn.Restore(c.sdf, sdfSnap)
		return fmt.Errorf("color_net: %w", err)
	}
	return nil
}

// SaveWeights writes the weights to a SafeTensors file. The config and the
// embedding widths are stored in the metadata and take precedence over
// entries of metadata with the same key.
func (c *composite[B]) SaveWeights(path string, metadata map[string]string) error {
	meta := make(map[string]string, len(metadata)+10)
	maps.Copy(meta, metadata)
	maps.Copy(meta, c.cfg.settings())
	meta[MetaVersion] = c.name
	meta[MetaInputCh] = strconv.Itoa(c.inputCh)
	meta[MetaInputChPos] = strconv.Itoa(c.inputChPos)

	if err := checkpoint.Save(path, c.StateDict(), meta); err != nil {
		return fmt.Errorf("save %s weights: %w", c.name, err)
	}
	c.logger.Debug("saved weights", zap.String("decoder", c.name), zap.String("path", path))
	return nil
}

// LoadWeights reads weights saved by SaveWeights.
func (c *composite[B]) LoadWeights(path string) error {
	tensors, _, err := checkpoint.Load(path)
	if err != nil {
		return fmt.Errorf("load %s weights: %w", c.name, err)
	}
	if err := c.LoadStateDict(tensors); err != nil {
		return fmt.Errorf("load %s weights from %s: %w", c.name, path, err)
	}
	c.logger.Debug("loaded weights", zap.String("decoder", c.name), zap.String("path", path))
	return nil
}

// Describe returns the layer listing of both networks.
func (c *composite[B]) Describe() string {
	return fmt.Sprintf("%s(\n  (color_net): %s\n  (sdf_net): %s\n)",
		c.name, indent(c.color.String()), indent(c.sdf.String()))
}

func (c *composite[B]) String() string {
	return c.Describe()
}

// Close releases fused engines created during construction.
func (c *composite[B]) Close() error {
	var errs []error
	if c.sdf != nil {
		errs = append(errs, c.sdf.Close())
	}
	if c.color != nil {
		errs = append(errs, c.color.Close())
	}
	if c.engine != nil {
		errs = append(errs, c.engine.Close())
		c.engine = nil
	}
	return errors.Join(errs...)
}

// ColorSDFNet decodes geometry and color. The color network sees the
// color embedding, the positional embedding and the latent geometry
// feature.
//
// Example:
//
//	net, err := decoder.NewColorSDFNet(cfg, 3, 12, backend)
//	raw, err := net.Forward(embed, embedPos, embedColor) // [batch, 4]: rgb, sdf
type ColorSDFNet[B tensor.Backend] struct {
	*composite[B]
}

// NewColorSDFNet builds the decoder for inputCh-wide embeddings and
// inputChPos-wide positional embeddings.
func NewColorSDFNet[B tensor.Backend](cfg Config, inputCh, inputChPos int, backend B, opts ...Option) (*ColorSDFNet[B], error) {
	c, err := newComposite("ColorSDFNet", cfg, inputCh, inputChPos, inputCh+inputChPos, backend, opts)
	if err != nil {
		return nil, err
	}
	return &ColorSDFNet[B]{composite: c}, nil
}

// Forward returns concat(rgb, sdf) of shape [batch, 4].
//
// embed is [batch, inputCh] and embedColor [batch, inputCh]. embedPos is
// [batch, inputChPos], or nil when no positional embedding is used.
func (n *ColorSDFNet[B]) Forward(embed, embedPos, embedColor *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if embed == nil || embedColor == nil {
		return nil, fmt.Errorf("%w: embed and embed_color are required", tensor.ErrShapeMismatch)
	}

	sdfIn := embed
	if embedPos != nil {
		var err error
		if sdfIn, err = tensor.Cat(-1, embed, embedPos); err != nil {
			return nil, err
		}
	}

	sdf, geoFeat, err := n.geometry(sdfIn)
	if err != nil {
		return nil, err
	}

	var colorIn *tensor.Tensor[float32, B]
	if embedPos != nil {
		colorIn, err = tensor.Cat(-1, embedPos, embedColor, geoFeat)
	} else {
		colorIn, err = tensor.Cat(-1, embedColor, geoFeat)
	}
	if err != nil {
		return nil, err
	}

	return n.finish(colorIn, sdf)
}

// ColorSDFNetV2 decodes geometry and color. The color network sees only
// the positional embedding and the latent geometry feature.
type ColorSDFNetV2[B tensor.Backend] struct {
	*composite[B]
}

// NewColorSDFNetV2 builds the decoder; its color network takes
// inputChPos+GeoFeatDim inputs.
func NewColorSDFNetV2[B tensor.Backend](cfg Config, inputCh, inputChPos int, backend B, opts ...Option) (*ColorSDFNetV2[B], error) {
	c, err := newComposite("ColorSDFNetV2", cfg, inputCh, inputChPos, inputChPos, backend, opts)
	if err != nil {
		return nil, err
	}
	return &ColorSDFNetV2[B]{composite: c}, nil
}

// Forward returns concat(rgb, sdf) of shape [batch, 4]. embedPos may be
// nil, in which case the color network sees the geometry feature alone.
func (n *ColorSDFNetV2[B]) Forward(embed, embedPos *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if embed == nil {
		return nil, fmt.Errorf("%w: embed is required", tensor.ErrShapeMismatch)
	}

	sdfIn := embed
	if embedPos != nil {
		var err error
		if sdfIn, err = tensor.Cat(-1, embed, embedPos); err != nil {
			return nil, err
		}
	}

	sdf, geoFeat, err := n.geometry(sdfIn)
	if err != nil {
		return nil, err
	}

	colorIn := geoFeat
	if embedPos != nil {
		if colorIn, err = tensor.Cat(-1, embedPos, geoFeat); err != nil {
			return nil, err
		}
	}

	return n.finish(colorIn, sdf)
}
