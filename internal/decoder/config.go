package decoder

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
)

// Configuration keys, as they appear under the "decoder" section of a
// scene config file.
const (
	KeyTCNNNetwork    = "decoder.tcnn_network"
	KeyGeoFeatDim     = "decoder.geo_feat_dim"
	KeyHiddenDim      = "decoder.hidden_dim"
	KeyNumLayers      = "decoder.num_layers"
	KeyHiddenDimColor = "decoder.hidden_dim_color"
	KeyNumLayersColor = "decoder.num_layers_color"
	KeyFusedEngine    = "decoder.fused_engine"
)

// EnvPrefix prefixes environment overrides, e.g. SCENEDEC_DECODER_HIDDEN_DIM.
const EnvPrefix = "SCENEDEC"

// Config holds the hyperparameters of a composite decoder.
type Config struct {
	// TCNNNetwork selects fused execution for both sub-networks.
	TCNNNetwork bool

	// GeoFeatDim is the width of the latent feature passed from the SDF
	// network to the color network.
	GeoFeatDim int

	HiddenDim int
	NumLayers int

	HiddenDimColor int
	NumLayersColor int

	// FusedEngine names the fused.Engine used when TCNNNetwork is set.
	// Empty means fused.EngineGonum.
	FusedEngine string
}

// DefaultConfig returns the decoder settings of the reference scene
// configs.
func DefaultConfig() Config {
	return Config{
		TCNNNetwork:    false,
		GeoFeatDim:     15,
		HiddenDim:      32,
		NumLayers:      2,
		HiddenDimColor: 32,
		NumLayersColor: 2,
		FusedEngine:    fused.EngineGonum,
	}
}

// Validate checks every depth, width and the engine name.
func (c Config) Validate() error {
	checks := []struct {
		key   string
		value int
	}{
		{KeyGeoFeatDim, c.GeoFeatDim},
		{KeyHiddenDim, c.HiddenDim},
		{KeyNumLayers, c.NumLayers},
		{KeyHiddenDimColor, c.HiddenDimColor},
		{KeyNumLayersColor, c.NumLayersColor},
	}
	for _, chk := range checks {
		if chk.value < 1 {
			return fmt.Errorf("%w: %s must be >= 1, got %d", ErrInvalidConfig, chk.key, chk.value)
		}
	}

	switch c.FusedEngine {
	case "", fused.EngineGonum, fused.EngineWebGPU:
	default:
		return fmt.Errorf("%w: %s: unknown engine %q", ErrInvalidConfig, KeyFusedEngine, c.FusedEngine)
	}
	return nil
}

// engineName returns FusedEngine with the default applied.
func (c Config) engineName() string {
	if c.FusedEngine == "" {
		return fused.EngineGonum
	}
	return c.FusedEngine
}

// NewViper returns a viper instance that reads SCENEDEC_* environment
// overrides for every decoder key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every field of cfg as the viper default of its key,
// so that ConfigFromViper succeeds without a config file and environment
// overrides still apply.
func SetDefaults(v *viper.Viper, cfg Config) {
	for key, value := range cfg.settings() {
		v.SetDefault(key, value)
	}
}

// LoadConfig reads the decoder section of a YAML, JSON or TOML file.
// Environment overrides apply on top of the file.
func LoadConfig(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ConfigFromViper(v)
}

// ConfigFromMap builds a Config from a nested mapping such as
// {"decoder": {"geo_feat_dim": 15, ...}}.
func ConfigFromMap(m map[string]any) (Config, error) {
	v := viper.New()
	if err := v.MergeConfigMap(m); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return ConfigFromViper(v)
}

// ConfigFromViper reads and validates the decoder keys. Every key except
// decoder.fused_engine is required; the first missing or mistyped key is
// reported.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	var err error

	if cfg.TCNNNetwork, err = requireBool(v, KeyTCNNNetwork); err != nil {
		return Config{}, err
	}

	ints := []struct {
		key string
		dst *int
	}{
		{KeyGeoFeatDim, &cfg.GeoFeatDim},
		{KeyHiddenDim, &cfg.HiddenDim},
		{KeyNumLayers, &cfg.NumLayers},
		{KeyHiddenDimColor, &cfg.HiddenDimColor},
		{KeyNumLayersColor, &cfg.NumLayersColor},
	}
	for _, field := range ints {
		if *field.dst, err = requireInt(v, field.key); err != nil {
			return Config{}, err
		}
	}

	cfg.FusedEngine = fused.EngineGonum
	if v.IsSet(KeyFusedEngine) {
		if cfg.FusedEngine, err = cast.ToStringE(v.Get(KeyFusedEngine)); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, KeyFusedEngine, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func requireBool(v *viper.Viper, key string) (bool, error) {
	if !v.IsSet(key) {
		return false, fmt.Errorf("%w: missing key %s", ErrInvalidConfig, key)
	}
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return b, nil
}

func requireInt(v *viper.Viper, key string) (int, error) {
	if !v.IsSet(key) {
		return 0, fmt.Errorf("%w: missing key %s", ErrInvalidConfig, key)
	}
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return n, nil
}

// settings returns the config as SafeTensors metadata.
func (c Config) settings() map[string]string {
	return map[string]string{
		KeyTCNNNetwork:    fmt.Sprint(c.TCNNNetwork),
		KeyGeoFeatDim:     fmt.Sprint(c.GeoFeatDim),
		KeyHiddenDim:      fmt.Sprint(c.HiddenDim),
		KeyNumLayers:      fmt.Sprint(c.NumLayers),
		KeyHiddenDimColor: fmt.Sprint(c.HiddenDimColor),
		KeyNumLayersColor: fmt.Sprint(c.NumLayersColor),
		KeyFusedEngine:    c.engineName(),
	}
}

// ConfigFromMetadata rebuilds a Config from the metadata written by
// SaveWeights.
func ConfigFromMetadata(metadata map[string]string) (Config, error) {
	m := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if strings.HasPrefix(key, "decoder.") {
			m[strings.TrimPrefix(key, "decoder.")] = value
		}
	}
	return ConfigFromMap(map[string]any{"decoder": m})
}
