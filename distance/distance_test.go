package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 32},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Mixed", []float64{1, -1, 2}, []float64{1, 1, -2}, -4},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-12)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 8},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-12)
			assert.InDelta(t, math.Sqrt(tt.expected), L2(tt.a, tt.b), 1e-12)
		})
	}
}

func TestNormalizedL2(t *testing.T) {
	x := []float64{2, 4}
	mean := []float64{1, 2}
	std := []float64{1, 2}
	// ((2-1)/1)² + ((4-2)/2)² = 1 + 1 = 2
	assert.InDelta(t, math.Sqrt(2), NormalizedL2(x, mean, std), 1e-12)
}

func TestNormalizedL2ZeroStd(t *testing.T) {
	// Zero std must be floored, not divide by zero.
	got := NormalizedL2([]float64{1}, []float64{1}, []float64{0})
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsNaN(got))

	got = NormalizedL2([]float64{1 + 1e-10}, []float64{1}, []float64{0})
	assert.False(t, math.IsInf(got, 1))
	assert.InDelta(t, 1, got, 1e-6)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-12)
	assert.InDelta(t, 1, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, 2, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.Equal(t, 1.0, Cosine([]float64{0, 0}, []float64{1, 0}))
}

func TestProvider(t *testing.T) {
	for _, m := range []Metric{MetricL2, MetricSquaredL2, MetricCosine} {
		fn, err := Provider(m)
		require.NoError(t, err)
		require.NotNil(t, fn)
	}

	_, err := Provider(Metric(99))
	require.Error(t, err)
	assert.Equal(t, "Unknown(99)", Metric(99).String())
}
