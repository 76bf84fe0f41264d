package decoder

import (
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/Pallab007Saha/Own-co-slam/internal/fused"
)

// Option configures network construction.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	src        rand.Source
	engine     fused.Engine
	engineName string
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     zap.NewNop(),
		engineName: fused.EngineGonum,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used during construction.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSeed makes weight initialization reproducible. All layers of a
// network draw from one source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.src = rand.NewSource(seed)
	}
}

// WithSource draws initial weights from src.
func WithSource(src rand.Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// WithEngine runs fused networks on engine. The caller keeps ownership:
// Close on the network does not close an injected engine.
func WithEngine(engine fused.Engine) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithFusedEngine selects the fused engine by name when none is injected
// with WithEngine.
func WithFusedEngine(name string) Option {
	return func(o *options) {
		if name != "" {
			o.engineName = name
		}
	}
}

// ensureEngine returns the injected engine, or creates one by name. owned
// reports whether the caller must close it.
func (o *options) ensureEngine() (engine fused.Engine, owned bool, err error) {
	if o.engine != nil {
		return o.engine, false, nil
	}
	engine, err = fused.New(o.engineName)
	if err != nil {
		return nil, false, err
	}
	return engine, true, nil
}
