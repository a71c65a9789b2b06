package verimatch

import (
	"log/slog"

	"github.com/verimatch/verimatch/codec"
	"github.com/verimatch/verimatch/config"
	"github.com/verimatch/verimatch/template"
)

type options struct {
	cfg              *config.Config
	codec            codec.Codec
	store            *template.Store
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Engine construction.
type Option func(*options)

// WithConfig sets the engine configuration. Nil falls back to
// config.Default(). The configuration is validated by New.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithCodec sets the codec used by template export and import.
//
// If nil is passed, the codec named in the configuration is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithStore sets the template store. Pass a shared store to let several
// engines serve the same enrolled population.
func WithStore(s *template.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &verimatch.BasicMetricsCollector{}
//	engine, _ := verimatch.New(verimatch.WithMetricsCollector(metrics))
//	// ... use engine ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
