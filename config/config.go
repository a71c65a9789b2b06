// Package config defines engine configuration and loading.
//
// Conventions:
// - Default() returns a fully usable configuration.
// - Load layers defaults, an optional YAML file, and environment
//   variables, in rising precedence.
// - Validation failures wrap ErrInvalidConfig for errors.Is checks.
package config

// Config carries every tunable of the engine. The zero value is not
// usable; start from Default or Load.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CodecName selects the template payload codec: json, json+zstd
	// or json+lz4.
	CodecName string `koanf:"codec"`

	Keystroke  KeystrokeConfig  `koanf:"keystroke"`
	Face       FaceConfig       `koanf:"face"`
	Fusion     FusionConfig     `koanf:"fusion"`
	Optimizer  OptimizerConfig  `koanf:"optimizer"`
	Classifier ClassifierConfig `koanf:"classifier"`
}

// KeystrokeConfig tunes typing-rhythm verification.
type KeystrokeConfig struct {
	// Threshold scales the accept radius in normalized distance units
	// per sqrt(dimension).
	Threshold float64 `koanf:"threshold"`

	// MinEvents is the minimum key events per probe session.
	MinEvents int `koanf:"min_events"`

	// MinSessions is the minimum enrollment sessions per template.
	MinSessions int `koanf:"min_sessions"`
}

// FaceConfig tunes face verification and liveness.
type FaceConfig struct {
	Tolerance          float64 `koanf:"tolerance"`
	LivenessThreshold  float64 `koanf:"liveness_threshold"`
	DistanceNormalizer float64 `koanf:"distance_normalizer"`
	RequireLiveness    bool    `koanf:"require_liveness"`
}

// FusionConfig tunes multi-modal score combination.
type FusionConfig struct {
	// Method is one of weighted_sum, product, mean, max, min.
	Method string `koanf:"method"`

	Threshold float64 `koanf:"threshold"`

	// Weights maps modality names to their relative weight.
	Weights map[string]float64 `koanf:"weights"`
}

// OptimizerConfig tunes feature selection and reduction.
type OptimizerConfig struct {
	// Method is one of pca, ga, pso, hybrid.
	Method string `koanf:"method"`

	VarianceThreshold float64 `koanf:"variance_threshold"`
	MaxComponents     int     `koanf:"max_components"`
	Population        int     `koanf:"population"`
	Generations       int     `koanf:"generations"`
	Particles         int     `koanf:"particles"`
	Iterations        int     `koanf:"iterations"`
	Seed              int64   `koanf:"seed"`
	Workers           int     `koanf:"workers"`
}

// ClassifierConfig tunes the trainable decision path.
type ClassifierConfig struct {
	// Kind is svm or random_forest.
	Kind string `koanf:"kind"`

	C        float64 `koanf:"c"`
	Gamma    float64 `koanf:"gamma"`
	Trees    int     `koanf:"trees"`
	MaxDepth int     `koanf:"max_depth"`
	Seed     int64   `koanf:"seed"`
	Workers  int     `koanf:"workers"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		CodecName: "json",
		Keystroke: KeystrokeConfig{
			Threshold:   3.0,
			MinEvents:   10,
			MinSessions: 3,
		},
		Face: FaceConfig{
			Tolerance:          0.6,
			LivenessThreshold:  0.5,
			DistanceNormalizer: 1.0,
			RequireLiveness:    true,
		},
		Fusion: FusionConfig{
			Method:    "weighted_sum",
			Threshold: 0.5,
			Weights: map[string]float64{
				"keystroke": 0.4,
				"face":      0.6,
			},
		},
		Optimizer: OptimizerConfig{
			Method:            "pca",
			VarianceThreshold: 0.95,
			Population:        50,
			Generations:       50,
			Particles:         30,
			Iterations:        50,
			Seed:              42,
		},
		Classifier: ClassifierConfig{
			Kind:     "random_forest",
			C:        1.0,
			Trees:    100,
			MaxDepth: 10,
			Seed:     42,
		},
	}
}
