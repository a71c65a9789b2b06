package distance

import (
	"fmt"
	"math"
)

// MinStd is the floor applied to per-feature standard deviations before
// they are used as divisors. Near-constant features (simulated pressure,
// saturated timings) would otherwise blow the normalized distance up to
// infinity.
const MinStd = 1e-10

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two
// vectors. Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the L2 (Euclidean) distance between two vectors.
func L2(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// NormalizedL2 calculates the diagonal-covariance Mahalanobis distance
// between x and mean: sqrt(Σ((x_i−mean_i)/std_i)²). Standard deviations
// are floored at MinStd. Assumes all three slices share a length.
func NormalizedL2(x, mean, std []float64) float64 {
	var sum float64
	for i := range x {
		s := std[i]
		if s < MinStd {
			s = MinStd
		}
		d := (x[i] - mean[i]) / s
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cosine calculates the cosine distance (1 − cosine similarity) between
// two vectors. Returns 1 for zero-norm input.
func Cosine(a, b []float64) float64 {
	na := Dot(a, a)
	nb := Dot(b, b)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - Dot(a, b)/math.Sqrt(na*nb)
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricSquaredL2
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricCosine:
		return "Cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return L2, nil
	case MetricSquaredL2:
		return SquaredL2, nil
	case MetricCosine:
		return Cosine, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
