package decoder

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
	"github.com/Pallab007Saha/Own-co-slam/internal/nn"
	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// stack is the layer stack behind a network: an nn.Sequential in explicit
// mode or an nn.FusedMLP in fused mode.
type stack[B tensor.Backend] interface {
	nn.Module[B]
	nn.Stateful
	fmt.Stringer
}

// buildStack builds an MLP with in inputs, out outputs and numLayers
// linear layers.
//
// Explicit layout, for layer l of numLayers:
//
//	l == 0:            Linear(in, hidden)     + Swish
//	0 < l < last:      Linear(hidden, hidden) + SELU (odd l) / Mish (even l)
//	l == last:         Linear(hidden, out)
//
// A single layer is Linear(in, out). No layer has a bias. In fused mode
// the network has numLayers-1 hidden ReLU layers of width hidden.
//
// engine is non-nil only when buildStack created it and the caller must
// close it.
func buildStack[B tensor.Backend](
	netName string,
	in, hidden, out, numLayers int,
	useFused bool,
	o *options,
	backend B,
) (s stack[B], engine fused.Engine, err error) {
	if numLayers < 1 {
		return nil, nil, fmt.Errorf("%w: %s: num_layers must be >= 1, got %d", ErrInvalidConfig, netName, numLayers)
	}
	if hidden < 1 {
		return nil, nil, fmt.Errorf("%w: %s: hidden_dim must be >= 1, got %d", ErrInvalidConfig, netName, hidden)
	}
	if in < 1 {
		return nil, nil, fmt.Errorf("%w: %s: input width must be >= 1, got %d", ErrInvalidConfig, netName, in)
	}

	if useFused {
		return buildFused(netName, in, hidden, out, numLayers, o, backend)
	}

	seq := nn.NewSequential[B]()
	for l := 0; l < numLayers; l++ {
		inDim, outDim := hidden, hidden
		if l == 0 {
			inDim = in
		}
		if l == numLayers-1 {
			outDim = out
		}
		seq.Add(nn.NewLinear(inDim, outDim, backend, nn.WithBias(false), nn.WithSource(o.src)))

		switch {
		case l == numLayers-1:
		case l == 0:
			seq.Add(nn.NewSwish[B]())
		case l%2 == 1:
			seq.Add(nn.NewSELU[B]())
		default:
			seq.Add(nn.NewMish[B]())
		}
	}

	o.logger.Debug("built network",
		zap.String("net", netName),
		zap.Int("layers", numLayers),
		zap.Int("params", countParams(seq.Parameters())))
	return seq, nil, nil
}

func buildFused[B tensor.Backend](
	netName string,
	in, hidden, out, numLayers int,
	o *options,
	backend B,
) (stack[B], fused.Engine, error) {
	engine, owned, err := o.ensureEngine()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", netName, err)
	}

	cfg := fused.DefaultNetworkConfig(hidden, numLayers-1)
	mlp, err := nn.NewFusedMLP(in, out, cfg, engine, backend, nn.WithSource(o.src))
	if err != nil {
		if owned {
			_ = engine.Close()
		}
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, netName, err)
	}

	o.logger.Info("using fused network",
		zap.String("net", netName),
		zap.String("engine", engine.Name()))

	if !owned {
		engine = nil
	}
	return mlp, engine, nil
}

func countParams[B tensor.Backend](params []*nn.Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}

// loadPrefixed loads the entries of stateDict under prefix into s.
// Entries under prefix that s does not have are rejected.
func loadPrefixed(s nn.Stateful, prefix string, stateDict map[string]*tensor.RawTensor) error {
	expected := s.StateDict()
	sub := make(map[string]*tensor.RawTensor, len(expected))
	for key, raw := range stateDict {
		name, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if _, known := expected[name]; !known {
			return fmt.Errorf("unexpected key %s in state dict", key)
		}
		sub[name] = raw
	}
	return s.LoadStateDict(sub)
}

// prefixed returns stateDict with prefix prepended to every key.
func prefixed(prefix string, stateDict map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor, len(stateDict))
	for key, raw := range stateDict {
		out[prefix+key] = raw
	}
	return out
}

// indent shifts every line after the first by two spaces, for nesting
// module summaries.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
