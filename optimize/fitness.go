package optimize

import (
	"context"
	"math"

	"github.com/verimatch/verimatch/classifier"
	"github.com/verimatch/verimatch/internal/stat"
)

// Fitness scores a candidate feature subset; higher is better. The
// vectors passed in are already projected onto the candidate subset.
type Fitness func(ctx context.Context, vectors [][]float64) (float64, error)

// SeparabilityFitness scores a subset by the mean Fisher ratio of its
// columns: squared distance between the two class means over the sum of
// class variances. It is cheap enough to evaluate inside every GA
// generation and PSO iteration.
func SeparabilityFitness(labels []int) Fitness {
	return func(_ context.Context, vectors [][]float64) (float64, error) {
		if len(vectors) == 0 || len(vectors[0]) == 0 {
			return 0, nil
		}
		var class0, class1 [][]float64
		for i, v := range vectors {
			if labels[i] == 0 {
				class0 = append(class0, v)
			} else {
				class1 = append(class1, v)
			}
		}
		if len(class0) == 0 || len(class1) == 0 {
			return 0, nil
		}

		dim := len(vectors[0])
		var sum float64
		for j := 0; j < dim; j++ {
			col0 := stat.Column(class0, j)
			col1 := stat.Column(class1, j)
			delta := stat.Mean(col1) - stat.Mean(col0)
			spread := stat.Variance(col0) + stat.Variance(col1)
			sum += delta * delta / math.Max(spread, 1e-10)
		}
		return sum / float64(dim), nil
	}
}

// CrossValFitness scores a subset by the mean cross-validated accuracy
// of a classifier trained on it. Slower but directly optimizes the end
// metric; folds below 2 defaults to 5.
func CrossValFitness(kind classifier.Kind, labels []int, folds int, cfg classifier.Config) Fitness {
	if folds < 2 {
		folds = 5
	}
	return func(ctx context.Context, vectors [][]float64) (float64, error) {
		result, err := classifier.CrossValidate(ctx, kind, vectors, labels, folds, cfg)
		if err != nil {
			return 0, err
		}
		return result.Mean, nil
	}
}
