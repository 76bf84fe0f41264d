// Copyright 2025 The Own-co-slam Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package decoder provides the geometry and color decoders of a neural
// implicit scene representation.
//
// A decoder turns encoded sample points into a signed distance and an RGB
// color. SDFNet predicts the distance plus a latent geometry feature;
// ColorNet maps color features and that latent feature to RGB. ColorSDFNet
// and ColorSDFNetV2 wire the two together and return concat(rgb, sdf).
//
// Each network runs either as an explicit stack of bias-free Linear layers
// with Swish, SELU and Mish activations, or as a fused ReLU network on a
// fused engine when Config.TCNNNetwork is set.
//
// Example:
//
//	cfg, err := decoder.LoadConfig("configs/replica.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	backend := cpu.New()
//	net, err := decoder.NewColorSDFNet(cfg, 3, 12, backend, decoder.WithSeed(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer net.Close()
//
//	raw, err := net.Forward(embed, embedPos, embedColor) // [batch, 4]
package decoder

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/Pallab007Saha/Own-co-slam/internal/decoder"
	"github.com/Pallab007Saha/Own-co-slam/nn"
	"github.com/Pallab007Saha/Own-co-slam/tensor"
)

// Config holds the hyperparameters of a composite decoder.
type Config = decoder.Config

// ErrInvalidConfig is returned when a network cannot be built from the
// given configuration.
var ErrInvalidConfig = decoder.ErrInvalidConfig

// Default embedding widths.
const (
	DefaultInputCh    = decoder.DefaultInputCh
	DefaultInputChPos = decoder.DefaultInputChPos
)

// DefaultConfig returns the decoder settings of the reference scene configs.
func DefaultConfig() Config {
	return decoder.DefaultConfig()
}

// LoadConfig reads the decoder section of a YAML, JSON or TOML file.
func LoadConfig(path string) (Config, error) {
	return decoder.LoadConfig(path)
}

// ConfigFromMap builds a Config from a nested mapping.
func ConfigFromMap(m map[string]any) (Config, error) {
	return decoder.ConfigFromMap(m)
}

// ConfigFromViper reads and validates the decoder keys of v.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	return decoder.ConfigFromViper(v)
}

// NewViper returns a viper instance reading SCENEDEC_* environment
// overrides.
func NewViper() *viper.Viper { return decoder.NewViper() }

// SetDefaults registers cfg as the viper defaults of the decoder keys.
func SetDefaults(v *viper.Viper, cfg Config) { decoder.SetDefaults(v, cfg) }

// Option configures network construction.
type Option = decoder.Option

// WithLogger sets the logger used during construction.
func WithLogger(logger *zap.Logger) Option { return decoder.WithLogger(logger) }

// WithSeed makes weight initialization reproducible.
func WithSeed(seed uint64) Option { return decoder.WithSeed(seed) }

// WithSource draws initial weights from src.
func WithSource(src rand.Source) Option { return decoder.WithSource(src) }

// WithEngine runs fused networks on engine.
func WithEngine(engine nn.Engine) Option { return decoder.WithEngine(engine) }

// WithFusedEngine selects the fused engine by name.
func WithFusedEngine(name string) Option { return decoder.WithFusedEngine(name) }

// SDFNet predicts a signed distance and a latent geometry feature.
type SDFNet[B tensor.Backend] = decoder.SDFNet[B]

// NewSDFNet builds an SDF network.
func NewSDFNet[B tensor.Backend](
	inputCh, geoFeatDim, hiddenDim, numLayers int,
	useFused bool,
	backend B,
	opts ...Option,
) (*SDFNet[B], error) {
	return decoder.NewSDFNet(inputCh, geoFeatDim, hiddenDim, numLayers, useFused, backend, opts...)
}

// ColorNet predicts RGB.
type ColorNet[B tensor.Backend] = decoder.ColorNet[B]

// NewColorNet builds a color network.
func NewColorNet[B tensor.Backend](
	inputCh, geoFeatDim, hiddenDim, numLayers int,
	useFused bool,
	backend B,
	opts ...Option,
) (*ColorNet[B], error) {
	return decoder.NewColorNet(inputCh, geoFeatDim, hiddenDim, numLayers, useFused, backend, opts...)
}

// ColorSDFNet is the decoder whose color network also sees the color
// embedding.
type ColorSDFNet[B tensor.Backend] = decoder.ColorSDFNet[B]

// NewColorSDFNet builds a ColorSDFNet.
func NewColorSDFNet[B tensor.Backend](cfg Config, inputCh, inputChPos int, backend B, opts ...Option) (*ColorSDFNet[B], error) {
	return decoder.NewColorSDFNet(cfg, inputCh, inputChPos, backend, opts...)
}

// ColorSDFNetV2 is the decoder whose color network sees only the
// positional embedding and the geometry feature.
type ColorSDFNetV2[B tensor.Backend] = decoder.ColorSDFNetV2[B]

// NewColorSDFNetV2 builds a ColorSDFNetV2.
func NewColorSDFNetV2[B tensor.Backend](cfg Config, inputCh, inputChPos int, backend B, opts ...Option) (*ColorSDFNetV2[B], error) {
	return decoder.NewColorSDFNetV2(cfg, inputCh, inputChPos, backend, opts...)
}
