package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimatch/verimatch/internal/randutil"
	"github.com/verimatch/verimatch/model"
)

// clusteredData generates two well-separated Gaussian clusters:
// impostors around (0,0), genuine around (4,4).
func clusteredData(n int, seed int64) ([][]float64, []int) {
	rng := randutil.NewRNG(seed)
	vectors := make([][]float64, 0, 2*n)
	labels := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		vectors = append(vectors, []float64{rng.NormFloat64() * 0.5, rng.NormFloat64() * 0.5})
		labels = append(labels, LabelImpostor)
		vectors = append(vectors, []float64{4 + rng.NormFloat64()*0.5, 4 + rng.NormFloat64()*0.5})
		labels = append(labels, LabelGenuine)
	}
	return vectors, labels
}

func TestTrainSVMSeparable(t *testing.T) {
	vectors, labels := clusteredData(30, 1)
	cfg := DefaultConfig()

	m, err := Train(context.Background(), KindSVM, vectors, labels, cfg)
	require.NoError(t, err)
	assert.Equal(t, KindSVM, m.Kind())

	label, conf := m.Predict([]float64{4, 4})
	assert.Equal(t, LabelGenuine, label)
	assert.GreaterOrEqual(t, conf, 0.5)

	label, conf = m.Predict([]float64{0, 0})
	assert.Equal(t, LabelImpostor, label)
	assert.GreaterOrEqual(t, conf, 0.5)
}

func TestTrainForestSeparable(t *testing.T) {
	vectors, labels := clusteredData(30, 2)
	cfg := DefaultConfig()
	cfg.Trees = 25

	m, err := Train(context.Background(), KindRandomForest, vectors, labels, cfg)
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, m.Kind())

	label, conf := m.Predict([]float64{4.2, 3.8})
	assert.Equal(t, LabelGenuine, label)
	assert.Greater(t, conf, 0.8)

	label, _ = m.Predict([]float64{-0.3, 0.2})
	assert.Equal(t, LabelImpostor, label)
}

func TestForestDeterministic(t *testing.T) {
	vectors, labels := clusteredData(20, 3)
	cfg := DefaultConfig()
	cfg.Trees = 10

	a, err := Train(context.Background(), KindRandomForest, vectors, labels, cfg)
	require.NoError(t, err)
	b, err := Train(context.Background(), KindRandomForest, vectors, labels, cfg)
	require.NoError(t, err)

	probe := []float64{2, 2}
	la, ca := a.Predict(probe)
	lb, cb := b.Predict(probe)
	assert.Equal(t, la, lb)
	assert.Equal(t, ca, cb)
}

func TestTrainValidation(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()

	_, err := Train(ctx, KindSVM, [][]float64{{1}}, []int{1}, cfg)
	var ide *model.InsufficientDataError
	require.ErrorAs(t, err, &ide)

	_, err = Train(ctx, KindSVM, [][]float64{{1}, {2}}, []int{1}, cfg)
	require.Error(t, err)

	_, err = Train(ctx, KindSVM, [][]float64{{1}, {2, 3}}, []int{0, 1}, cfg)
	var dme *model.DimensionMismatchError
	require.ErrorAs(t, err, &dme)

	_, err = Train(ctx, KindSVM, [][]float64{{1}, {2}}, []int{0, 7}, cfg)
	require.Error(t, err)

	// Single-class data cannot train a discriminator.
	_, err = Train(ctx, KindSVM, [][]float64{{1}, {2}}, []int{1, 1}, cfg)
	require.ErrorAs(t, err, &ide)

	_, err = Train(ctx, Kind(99), [][]float64{{1}, {2}}, []int{0, 1}, cfg)
	var uke *UnknownKindError
	require.ErrorAs(t, err, &uke)
	assert.Equal(t, Kind(99), uke.Kind)
}

func TestCrossValidate(t *testing.T) {
	vectors, labels := clusteredData(20, 4)
	cfg := DefaultConfig()
	cfg.Trees = 15

	for _, kind := range []Kind{KindSVM, KindRandomForest} {
		t.Run(kind.String(), func(t *testing.T) {
			res, err := CrossValidate(context.Background(), kind, vectors, labels, 4, cfg)
			require.NoError(t, err)
			require.Len(t, res.Scores, 4)

			// Clusters are cleanly separable; accuracy should be high in
			// every fold.
			for _, s := range res.Scores {
				assert.GreaterOrEqual(t, s, 0.75)
			}
			assert.GreaterOrEqual(t, res.Mean, 0.85)
		})
	}
}

func TestCrossValidateStratified(t *testing.T) {
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}
	assignments := stratify(labels, 4, 7)
	require.Len(t, assignments, 8)

	// Every fold receives one sample of each class.
	for f := 0; f < 4; f++ {
		var classes [2]int
		for i, a := range assignments {
			if a == f {
				classes[labels[i]]++
			}
		}
		assert.Equal(t, 1, classes[0], "fold %d impostors", f)
		assert.Equal(t, 1, classes[1], "fold %d genuine", f)
	}
}

func TestCrossValidateCancellation(t *testing.T) {
	vectors, labels := clusteredData(20, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CrossValidate(ctx, KindRandomForest, vectors, labels, 3, DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
}
