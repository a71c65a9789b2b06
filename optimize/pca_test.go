package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimatch/verimatch/internal/randutil"
	"github.com/verimatch/verimatch/model"
)

// informativeData builds samples with two informative dimensions and
// eight constant ones.
func informativeData(n int, seed int64) [][]float64 {
	rng := randutil.NewRNG(seed)
	vectors := make([][]float64, n)
	for i := range vectors {
		v := make([]float64, 10)
		v[0] = rng.NormFloat64() * 3
		v[1] = rng.NormFloat64() * 2
		for j := 2; j < 10; j++ {
			v[j] = 7.5
		}
		vectors[i] = v
	}
	return vectors
}

func TestFitPCAKeepsInformativeComponents(t *testing.T) {
	vectors := informativeData(60, 1)

	pca, err := FitPCA(vectors, 0.95, 0)
	require.NoError(t, err)

	assert.LessOrEqual(t, pca.NumComponents(), 3)
	assert.GreaterOrEqual(t, pca.TotalExplainedVariance(), 0.95)
}

func TestFitPCAMaxComponentsCap(t *testing.T) {
	vectors := informativeData(60, 2)

	pca, err := FitPCA(vectors, 0.9999, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, pca.NumComponents())
}

func TestPCATransform(t *testing.T) {
	vectors := informativeData(40, 3)

	pca, err := FitPCA(vectors, 0.95, 0)
	require.NoError(t, err)

	reduced, err := pca.Transform(vectors)
	require.NoError(t, err)
	require.Len(t, reduced, len(vectors))
	for _, row := range reduced {
		assert.Len(t, row, pca.NumComponents())
	}

	_, err = pca.Transform([][]float64{{1, 2, 3}})
	var dimErr *model.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}

func TestFitPCAInsufficientData(t *testing.T) {
	_, err := FitPCA([][]float64{{1, 2}}, 0.95, 0)
	var insErr *model.InsufficientDataError
	assert.ErrorAs(t, err, &insErr)
}
