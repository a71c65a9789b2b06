package classifier

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/verimatch/verimatch/internal/randutil"
	"github.com/verimatch/verimatch/internal/stat"
	"github.com/verimatch/verimatch/model"
)

// CVResult is the accuracy distribution over the folds.
type CVResult struct {
	Scores []float64
	Mean   float64
	Std    float64
}

// CrossValidate runs stratified k-fold cross-validation: samples of each
// class are shuffled under the config seed and dealt round-robin across
// folds, so every fold sees both classes. Folds train and evaluate in
// parallel.
func CrossValidate(ctx context.Context, kind Kind, vectors [][]float64, labels []int, folds int, cfg Config) (CVResult, error) {
	if folds < 2 {
		folds = 3
	}
	if err := validate(vectors, labels); err != nil {
		return CVResult{}, err
	}
	if len(vectors) < folds {
		return CVResult{}, &model.InsufficientDataError{Op: "cross validate", Need: folds, Got: len(vectors)}
	}

	assignments := stratify(labels, folds, cfg.Seed)

	scores := make([]float64, folds)
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for f := 0; f < folds; f++ {
		f := f
		g.Go(func() error {
			var trainX [][]float64
			var trainY []int
			var testX [][]float64
			var testY []int
			for i := range vectors {
				if assignments[i] == f {
					testX = append(testX, vectors[i])
					testY = append(testY, labels[i])
				} else {
					trainX = append(trainX, vectors[i])
					trainY = append(trainY, labels[i])
				}
			}

			m, err := Train(ctx, kind, trainX, trainY, cfg)
			if err != nil {
				return err
			}

			correct := 0
			for i, x := range testX {
				if label, _ := m.Predict(x); label == testY[i] {
					correct++
				}
			}
			if len(testX) > 0 {
				scores[f] = float64(correct) / float64(len(testX))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CVResult{}, err
	}

	return CVResult{
		Scores: scores,
		Mean:   stat.Mean(scores),
		Std:    stat.Std(scores),
	}, nil
}

// stratify assigns each sample to a fold, dealing the shuffled members
// of each class round-robin.
func stratify(labels []int, folds int, seed int64) []int {
	rng := randutil.NewRNG(seed)
	assignments := make([]int, len(labels))

	for class := 0; class <= 1; class++ {
		var members []int
		for i, y := range labels {
			if y == class {
				members = append(members, i)
			}
		}
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		for k, i := range members {
			assignments[i] = k % folds
		}
	}
	return assignments
}
