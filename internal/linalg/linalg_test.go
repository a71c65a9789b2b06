package linalg

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCovariance(t *testing.T) {
	// Two perfectly correlated columns.
	x := [][]float64{{1, 2}, {2, 4}, {3, 6}}
	cov := Covariance(x)
	require.Len(t, cov, 2)

	// Population variance of {1,2,3} is 2/3.
	assert.InDelta(t, 2.0/3.0, cov[0][0], 1e-12)
	assert.InDelta(t, 8.0/3.0, cov[1][1], 1e-12)
	assert.InDelta(t, 4.0/3.0, cov[0][1], 1e-12)
	assert.InDelta(t, cov[0][1], cov[1][0], 1e-12)
}

func TestJacobiEigenDiagonal(t *testing.T) {
	a := [][]float64{{3, 0}, {0, 1}}
	values, vectors := JacobiEigen(a, 50)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	assert.InDelta(t, 1, sorted[0], 1e-10)
	assert.InDelta(t, 3, sorted[1], 1e-10)

	// Eigenvectors of a diagonal matrix are the axes.
	for j := 0; j < 2; j++ {
		var norm float64
		for i := 0; i < 2; i++ {
			norm += vectors[i][j] * vectors[i][j]
		}
		assert.InDelta(t, 1, norm, 1e-10)
	}
}

func TestJacobiEigenSymmetric(t *testing.T) {
	// Eigenvalues of [[2,1],[1,2]] are 3 and 1.
	a := [][]float64{{2, 1}, {1, 2}}
	values, vectors := JacobiEigen(a, 50)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	assert.InDelta(t, 1, sorted[0], 1e-10)
	assert.InDelta(t, 3, sorted[1], 1e-10)

	// Check A·v = λ·v for each column.
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			var av float64
			for k := 0; k < 2; k++ {
				av += a[i][k] * vectors[k][j]
			}
			assert.InDelta(t, values[j]*vectors[i][j], av, 1e-10)
		}
	}

	// Input must be untouched.
	assert.Equal(t, [][]float64{{2, 1}, {1, 2}}, a)
}

func TestJacobiEigenTraceInvariant(t *testing.T) {
	a := [][]float64{
		{4, 1, 0.5},
		{1, 3, 0.2},
		{0.5, 0.2, 1},
	}
	values, _ := JacobiEigen(a, 100)

	var trace float64
	for _, v := range values {
		trace += v
	}
	assert.InDelta(t, 8, trace, 1e-9)

	for _, v := range values {
		assert.False(t, math.IsNaN(v))
	}
}
