package optimize

import (
	"context"

	"github.com/verimatch/verimatch/internal/randutil"
)

type particle struct {
	position []float64
	velocity []float64
	bestPos  []float64
	bestFit  float64
}

// binarize thresholds a continuous position into a selection bitmask.
func binarize(position []float64) []bool {
	bits := make([]bool, len(position))
	for i, p := range position {
		bits[i] = p >= binarizeThreshold
	}
	return bits
}

// runPSO runs binary particle swarm optimization: particles move in a
// continuous [0,1] box and are thresholded into bitmasks for scoring.
func runPSO(ctx context.Context, vectors [][]float64, fitness Fitness, cfg Config, rng *randutil.RNG) (*SelectionMask, float64, error) {
	dim := len(vectors[0])

	evaluate := func(ctx context.Context, position []float64) (float64, error) {
		bits := binarize(position)
		if countBits(bits) == 0 {
			return 0, nil
		}
		mask := NewSelectionMask(bits)
		return fitness(ctx, mask.Apply(vectors))
	}

	swarm := make([]particle, cfg.Particles)
	globalBest := make([]float64, dim)
	globalFit := -1.0
	for i := range swarm {
		pos := make([]float64, dim)
		vel := make([]float64, dim)
		for j := range pos {
			pos[j] = rng.Float64()
			vel[j] = rng.Float64() - 0.5
		}
		fit, err := evaluate(ctx, pos)
		if err != nil {
			return nil, 0, err
		}
		swarm[i] = particle{
			position: pos,
			velocity: vel,
			bestPos:  append([]float64(nil), pos...),
			bestFit:  fit,
		}
		if fit > globalFit {
			globalFit = fit
			copy(globalBest, pos)
		}
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		for i := range swarm {
			p := &swarm[i]
			for j := 0; j < dim; j++ {
				r1 := rng.Float64()
				r2 := rng.Float64()
				p.velocity[j] = cfg.Inertia*p.velocity[j] +
					cfg.Cognitive*r1*(p.bestPos[j]-p.position[j]) +
					cfg.Social*r2*(globalBest[j]-p.position[j])
				p.position[j] += p.velocity[j]
				if p.position[j] < 0 {
					p.position[j] = 0
				} else if p.position[j] > 1 {
					p.position[j] = 1
				}
			}

			fit, err := evaluate(ctx, p.position)
			if err != nil {
				return nil, 0, err
			}
			if fit > p.bestFit {
				p.bestFit = fit
				copy(p.bestPos, p.position)
			}
			if fit > globalFit {
				globalFit = fit
				copy(globalBest, p.position)
			}
		}
	}

	bits := binarize(globalBest)
	ensureNonEmpty(bits, rng)
	return NewSelectionMask(bits), globalFit, nil
}
