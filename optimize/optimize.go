// Package optimize reduces and selects biometric feature dimensions.
// It offers principal component analysis for variance-driven reduction
// and two evolutionary wrappers, a genetic algorithm and binary
// particle swarm optimization, that search feature subsets against a
// pluggable fitness function. A hybrid mode chains PCA into the GA.
package optimize

import (
	"context"
	"fmt"

	"github.com/verimatch/verimatch/internal/randutil"
	"github.com/verimatch/verimatch/model"
)

// Method selects the optimization strategy.
type Method string

const (
	MethodPCA    Method = "pca"
	MethodGA     Method = "ga"
	MethodPSO    Method = "pso"
	MethodHybrid Method = "hybrid"
)

const (
	defaultVarianceThreshold = 0.95
	binarizeThreshold        = 0.5
)

// UnknownMethodError is returned when Run is given a method it does not
// implement.
type UnknownMethodError struct {
	Method Method
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown optimization method %q", e.Method)
}

// Config carries hyperparameters for all methods; zero values fall back
// to the defaults below.
type Config struct {
	// PCA
	VarianceThreshold float64
	MaxComponents     int

	// GA
	Population     int
	Generations    int
	CrossoverProb  float64
	MutationProb   float64
	FlipProb       float64
	TournamentSize int

	// PSO
	Particles  int
	Iterations int
	Inertia    float64
	Cognitive  float64
	Social     float64

	// Fitness drives GA and PSO. When nil, a Fisher separability
	// fitness is derived from the labels passed to Run.
	Fitness Fitness

	Seed    int64
	Workers int
}

// DefaultConfig returns the stock hyperparameters.
func DefaultConfig() Config {
	return Config{
		VarianceThreshold: defaultVarianceThreshold,
		Population:        50,
		Generations:       50,
		CrossoverProb:     0.7,
		MutationProb:      0.2,
		FlipProb:          0.1,
		TournamentSize:    3,
		Particles:         30,
		Iterations:        50,
		Inertia:           0.7,
		Cognitive:         1.5,
		Social:            1.5,
		Seed:              42,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.VarianceThreshold <= 0 || c.VarianceThreshold > 1 {
		c.VarianceThreshold = d.VarianceThreshold
	}
	if c.Population <= 0 {
		c.Population = d.Population
	}
	if c.Generations <= 0 {
		c.Generations = d.Generations
	}
	if c.CrossoverProb <= 0 {
		c.CrossoverProb = d.CrossoverProb
	}
	if c.MutationProb <= 0 {
		c.MutationProb = d.MutationProb
	}
	if c.FlipProb <= 0 {
		c.FlipProb = d.FlipProb
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = d.TournamentSize
	}
	if c.Particles <= 0 {
		c.Particles = d.Particles
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.Inertia <= 0 {
		c.Inertia = d.Inertia
	}
	if c.Cognitive <= 0 {
		c.Cognitive = d.Cognitive
	}
	if c.Social <= 0 {
		c.Social = d.Social
	}
}

// Result is the outcome of an optimization run. Reduced always holds
// the input projected into the optimized space. PCA is set for the pca
// and hybrid methods; Mask is set for ga, pso and hybrid. For hybrid,
// Mask indices refer to PCA component space, not original features.
type Result struct {
	Method  Method
	Reduced [][]float64
	PCA     *PCAModel
	Mask    *SelectionMask
	Fitness float64
}

// Run executes the chosen method on the sample matrix. labels are the
// per-row class labels, required by the default fitness for ga, pso and
// hybrid; they may be nil when cfg.Fitness is set or method is pca.
func Run(ctx context.Context, method Method, vectors [][]float64, labels []int, cfg Config) (*Result, error) {
	if len(vectors) < 2 {
		return nil, &model.InsufficientDataError{Op: "optimize", Need: 2, Got: len(vectors)}
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return nil, &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}
	cfg.applyDefaults()

	switch method {
	case MethodPCA:
		return runPCA(vectors, cfg)
	case MethodGA, MethodPSO:
		fitness, err := resolveFitness(cfg, vectors, labels)
		if err != nil {
			return nil, err
		}
		return runSearch(ctx, method, vectors, fitness, cfg)
	case MethodHybrid:
		pcaResult, err := runPCA(vectors, cfg)
		if err != nil {
			return nil, err
		}
		fitness, err := resolveFitness(cfg, pcaResult.Reduced, labels)
		if err != nil {
			return nil, err
		}
		searchResult, err := runSearch(ctx, MethodGA, pcaResult.Reduced, fitness, cfg)
		if err != nil {
			return nil, err
		}
		return &Result{
			Method:  MethodHybrid,
			Reduced: searchResult.Reduced,
			PCA:     pcaResult.PCA,
			Mask:    searchResult.Mask,
			Fitness: searchResult.Fitness,
		}, nil
	default:
		return nil, &UnknownMethodError{Method: method}
	}
}

func runPCA(vectors [][]float64, cfg Config) (*Result, error) {
	pca, err := FitPCA(vectors, cfg.VarianceThreshold, cfg.MaxComponents)
	if err != nil {
		return nil, err
	}
	reduced, err := pca.Transform(vectors)
	if err != nil {
		return nil, err
	}
	return &Result{Method: MethodPCA, Reduced: reduced, PCA: pca}, nil
}

func runSearch(ctx context.Context, method Method, vectors [][]float64, fitness Fitness, cfg Config) (*Result, error) {
	rng := randutil.NewRNG(cfg.Seed)

	var (
		mask *SelectionMask
		fit  float64
		err  error
	)
	if method == MethodGA {
		mask, fit, err = runGA(ctx, vectors, fitness, cfg, rng)
	} else {
		mask, fit, err = runPSO(ctx, vectors, fitness, cfg, rng)
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Method:  method,
		Reduced: mask.Apply(vectors),
		Mask:    mask,
		Fitness: fit,
	}, nil
}

func resolveFitness(cfg Config, vectors [][]float64, labels []int) (Fitness, error) {
	if cfg.Fitness != nil {
		return cfg.Fitness, nil
	}
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf("optimize: %d labels for %d vectors and no custom fitness", len(labels), len(vectors))
	}
	return SeparabilityFitness(labels), nil
}
