package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoments(t *testing.T) {
	tests := []struct {
		name                string
		xs                  []float64
		mean, variance, std float64
	}{
		{"Simple", []float64{1, 2, 3, 4}, 2.5, 1.25, 1.118033988749895},
		{"Constant", []float64{2, 2, 2}, 2, 0, 0},
		{"Single", []float64{7}, 7, 0, 0},
		{"Empty", nil, 0, 0, 0},
		{"Negative", []float64{-1, 1}, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.mean, Mean(tt.xs), 1e-12)
			assert.InDelta(t, tt.variance, Variance(tt.xs), 1e-12)
			assert.InDelta(t, tt.std, Std(tt.xs), 1e-12)
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		xs       []float64
		expected float64
	}{
		{"Odd", []float64{3, 1, 2}, 2},
		{"Even", []float64{4, 1, 3, 2}, 2.5},
		{"Single", []float64{5}, 5},
		{"Empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Median(tt.xs), 1e-12)
		})
	}

	// Median must not reorder the input.
	xs := []float64{3, 1, 2}
	Median(xs)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestMinMax(t *testing.T) {
	xs := []float64{0.3, -0.1, 0.7}
	assert.Equal(t, -0.1, Min(xs))
	assert.Equal(t, 0.7, Max(xs))
	assert.Equal(t, 0.0, Min(nil))
	assert.Equal(t, 0.0, Max(nil))
}

func TestDiff(t *testing.T) {
	assert.Equal(t, []float64{1, 2, -3}, Diff([]float64{0, 1, 3, 0}))
	assert.Nil(t, Diff([]float64{1}))
	assert.Nil(t, Diff(nil))
}

func TestColumn(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	assert.Equal(t, []float64{2, 4, 6}, Column(rows, 1))
}
