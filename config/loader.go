package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/verimatch/verimatch/codec"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// EnvPrefix is the environment variable prefix recognized by Load.
const EnvPrefix = "VERIMATCH_"

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) when path is non-empty
//  3. env (prefix VERIMATCH_)
//
// Env keys address nested sections with a double underscore:
// VERIMATCH_KEYSTROKE__MIN_EVENTS maps to keystroke.min_events.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field consistency; it does not mutate.
func (c *Config) Validate() error {
	if c.Keystroke.Threshold <= 0 {
		return fmt.Errorf("%w: keystroke.threshold must be positive", ErrInvalidConfig)
	}
	if c.Keystroke.MinEvents < 2 {
		return fmt.Errorf("%w: keystroke.min_events must be at least 2", ErrInvalidConfig)
	}
	if c.Keystroke.MinSessions < 1 {
		return fmt.Errorf("%w: keystroke.min_sessions must be at least 1", ErrInvalidConfig)
	}
	if c.Face.Tolerance <= 0 {
		return fmt.Errorf("%w: face.tolerance must be positive", ErrInvalidConfig)
	}
	if c.Face.LivenessThreshold < 0 || c.Face.LivenessThreshold > 1 {
		return fmt.Errorf("%w: face.liveness_threshold must be in [0,1]", ErrInvalidConfig)
	}
	if c.Face.DistanceNormalizer <= 0 {
		return fmt.Errorf("%w: face.distance_normalizer must be positive", ErrInvalidConfig)
	}

	switch c.Fusion.Method {
	case "weighted_sum", "product", "mean", "max", "min":
	default:
		return fmt.Errorf("%w: fusion.method %q", ErrInvalidConfig, c.Fusion.Method)
	}
	if c.Fusion.Threshold <= 0 || c.Fusion.Threshold > 1 {
		return fmt.Errorf("%w: fusion.threshold must be in (0,1]", ErrInvalidConfig)
	}
	for name, w := range c.Fusion.Weights {
		if w < 0 {
			return fmt.Errorf("%w: fusion.weights[%s] must not be negative", ErrInvalidConfig, name)
		}
	}

	switch c.Optimizer.Method {
	case "pca", "ga", "pso", "hybrid":
	default:
		return fmt.Errorf("%w: optimizer.method %q", ErrInvalidConfig, c.Optimizer.Method)
	}
	if c.Optimizer.VarianceThreshold <= 0 || c.Optimizer.VarianceThreshold > 1 {
		return fmt.Errorf("%w: optimizer.variance_threshold must be in (0,1]", ErrInvalidConfig)
	}

	switch c.Classifier.Kind {
	case "svm", "random_forest":
	default:
		return fmt.Errorf("%w: classifier.kind %q", ErrInvalidConfig, c.Classifier.Kind)
	}

	if _, ok := codec.ByName(c.CodecName); !ok {
		return fmt.Errorf("%w: codec %q", ErrInvalidConfig, c.CodecName)
	}
	return nil
}
