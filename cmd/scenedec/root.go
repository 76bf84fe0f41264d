package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Pallab007Saha/Own-co-slam/internal/backend/cpu"
	"github.com/Pallab007Saha/Own-co-slam/internal/decoder"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

const version = "v0.1.0-dev"

// app holds state shared by all commands, filled in by the root command's
// PersistentPreRunE.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	cfg    decoder.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: decoder.NewViper()}

	root := &cobra.Command{
		Use:           "scenedec",
		Short:         "Geometry and color decoders for neural implicit scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "scene config file (YAML, JSON or TOML) with a decoder section")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("variant", "v1", "decoder variant: v1 (ColorSDFNet) or v2 (ColorSDFNetV2)")
	flags.Int("input-ch", decoder.DefaultInputCh, "width of the embedding")
	flags.Int("input-ch-pos", decoder.DefaultInputChPos, "width of the positional embedding")
	flags.Uint64("seed", 0, "weight initialization seed")
	for _, name := range []string{"config", "log-level", "variant", "input-ch", "input-ch-pos", "seed"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newVersionCmd(),
		newInspectCmd(a),
		newForwardCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) init() error {
	level, err := zapcore.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if a.logger, err = zcfg.Build(); err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	// A config file must carry every decoder key; without one the
	// defaults stand in, and SCENEDEC_DECODER_* overrides apply either way.
	path := a.v.GetString("config")
	if path == "" {
		decoder.SetDefaults(a.v, decoder.DefaultConfig())
	} else {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if a.cfg, err = decoder.ConfigFromViper(a.v); err != nil {
		return err
	}
	a.logger.Debug("loaded config", zap.String("path", path), zap.Bool("fused", a.cfg.TCNNNetwork))
	return nil
}

type cpuTensor = tensor.Tensor[float32, *cpu.CPUBackend]

// model is the surface shared by both decoder variants.
type model struct {
	net interface {
		Describe() string
		NumParameters() int
		StateDict() map[string]*tensor.RawTensor
		SaveWeights(path string, metadata map[string]string) error
		LoadWeights(path string) error
		Close() error
	}
	// forward ignores embedColor for v2.
	forward func(embed, embedPos, embedColor *cpuTensor) (*cpuTensor, error)
}

// build constructs the decoder selected by --variant.
func (a *app) build(backend *cpu.CPUBackend) (*model, error) {
	opts := []decoder.Option{
		decoder.WithLogger(a.logger),
		decoder.WithSeed(a.v.GetUint64("seed")),
	}
	inputCh, inputChPos := a.v.GetInt("input-ch"), a.v.GetInt("input-ch-pos")

	switch strings.ToLower(a.v.GetString("variant")) {
	case "v1":
		net, err := decoder.NewColorSDFNet(a.cfg, inputCh, inputChPos, backend, opts...)
		if err != nil {
			return nil, err
		}
		return &model{net: net, forward: net.Forward}, nil
	case "v2":
		net, err := decoder.NewColorSDFNetV2(a.cfg, inputCh, inputChPos, backend, opts...)
		if err != nil {
			return nil, err
		}
		return &model{net: net, forward: func(embed, embedPos, _ *cpuTensor) (*cpuTensor, error) {
			return net.Forward(embed, embedPos)
		}}, nil
	default:
		return nil, fmt.Errorf("unknown --variant %q (want v1 or v2)", a.v.GetString("variant"))
	}
}
