package optimize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/verimatch/verimatch/internal/randutil"
)

type individual struct {
	bits    []bool
	fitness float64
}

func cloneBits(bits []bool) []bool {
	out := make([]bool, len(bits))
	copy(out, bits)
	return out
}

func countBits(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}

// ensureNonEmpty sets one random bit on an all-zero chromosome so a
// candidate always selects at least one feature.
func ensureNonEmpty(bits []bool, rng *randutil.RNG) {
	if countBits(bits) == 0 {
		bits[rng.Intn(len(bits))] = true
	}
}

// evaluatePopulation scores every individual in parallel. Fitness
// functions are pure, so concurrent evaluation cannot perturb the
// otherwise sequential use of rng.
func evaluatePopulation(ctx context.Context, pop []individual, vectors [][]float64, fitness Fitness, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range pop {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mask := NewSelectionMask(pop[i].bits)
			score, err := fitness(ctx, mask.Apply(vectors))
			if err != nil {
				return err
			}
			pop[i].fitness = score
			return nil
		})
	}
	return g.Wait()
}

func tournamentSelect(pop []individual, size int, rng *randutil.RNG) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		challenger := pop[rng.Intn(len(pop))]
		if challenger.fitness > best.fitness {
			best = challenger
		}
	}
	return individual{bits: cloneBits(best.bits), fitness: best.fitness}
}

// twoPointCrossover swaps the segment between two cut points in place.
func twoPointCrossover(a, b []bool, rng *randutil.RNG) {
	n := len(a)
	if n < 2 {
		return
	}
	p1 := rng.Intn(n)
	p2 := rng.Intn(n)
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	for i := p1; i <= p2; i++ {
		a[i], b[i] = b[i], a[i]
	}
}

func flipBitMutation(bits []bool, flipProb float64, rng *randutil.RNG) {
	for i := range bits {
		if rng.Float64() < flipProb {
			bits[i] = !bits[i]
		}
	}
}

// runGA evolves a feature-selection bitmask with tournament selection,
// two-point crossover and flip-bit mutation, tracking the best
// chromosome ever seen across generations.
func runGA(ctx context.Context, vectors [][]float64, fitness Fitness, cfg Config, rng *randutil.RNG) (*SelectionMask, float64, error) {
	dim := len(vectors[0])

	pop := make([]individual, cfg.Population)
	for i := range pop {
		bits := rng.Bits(dim, 0.5)
		ensureNonEmpty(bits, rng)
		pop[i] = individual{bits: bits}
	}
	if err := evaluatePopulation(ctx, pop, vectors, fitness, cfg.Workers); err != nil {
		return nil, 0, err
	}

	best := individual{bits: cloneBits(pop[0].bits), fitness: pop[0].fitness}
	for _, ind := range pop[1:] {
		if ind.fitness > best.fitness {
			best = individual{bits: cloneBits(ind.bits), fitness: ind.fitness}
		}
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		next := make([]individual, 0, cfg.Population)
		for len(next) < cfg.Population {
			a := tournamentSelect(pop, cfg.TournamentSize, rng)
			b := tournamentSelect(pop, cfg.TournamentSize, rng)
			if rng.Float64() < cfg.CrossoverProb {
				twoPointCrossover(a.bits, b.bits, rng)
			}
			if rng.Float64() < cfg.MutationProb {
				flipBitMutation(a.bits, cfg.FlipProb, rng)
			}
			if rng.Float64() < cfg.MutationProb {
				flipBitMutation(b.bits, cfg.FlipProb, rng)
			}
			ensureNonEmpty(a.bits, rng)
			ensureNonEmpty(b.bits, rng)
			next = append(next, a)
			if len(next) < cfg.Population {
				next = append(next, b)
			}
		}
		pop = next

		if err := evaluatePopulation(ctx, pop, vectors, fitness, cfg.Workers); err != nil {
			return nil, 0, err
		}
		for _, ind := range pop {
			if ind.fitness > best.fitness {
				best = individual{bits: cloneBits(ind.bits), fitness: ind.fitness}
			}
		}
	}

	return NewSelectionMask(best.bits), best.fitness, nil
}
