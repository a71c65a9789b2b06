package optimize

import (
	"math"
	"sort"

	"github.com/verimatch/verimatch/internal/linalg"
	"github.com/verimatch/verimatch/internal/stat"
	"github.com/verimatch/verimatch/model"
)

const minScale = 1e-10

// PCAModel holds a fitted principal component projection. Components
// are stored row-wise: Components[k] is the k-th principal axis in the
// original (standardized) feature space.
type PCAModel struct {
	Mean              []float64
	Scale             []float64
	Components        [][]float64
	ExplainedVariance []float64
}

// FitPCA standardizes the input columns, diagonalizes their covariance
// and keeps the top components whose cumulative explained variance
// ratio reaches varianceThreshold. maxComponents, when positive, caps
// the number of components regardless of the threshold. At least one
// component is always retained.
func FitPCA(vectors [][]float64, varianceThreshold float64, maxComponents int) (*PCAModel, error) {
	if len(vectors) < 2 {
		return nil, &model.InsufficientDataError{Op: "fit pca", Need: 2, Got: len(vectors)}
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return nil, &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}
	if varianceThreshold <= 0 || varianceThreshold > 1 {
		varianceThreshold = defaultVarianceThreshold
	}

	mean := make([]float64, dim)
	scale := make([]float64, dim)
	for j := 0; j < dim; j++ {
		col := stat.Column(vectors, j)
		mean[j] = stat.Mean(col)
		scale[j] = math.Max(stat.Std(col), minScale)
	}

	standardized := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, dim)
		for j := 0; j < dim; j++ {
			row[j] = (v[j] - mean[j]) / scale[j]
		}
		standardized[i] = row
	}

	cov := linalg.Covariance(standardized)
	values, vectorsCols := linalg.JacobiEigen(cov, 0)

	order := make([]int, dim)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}

	components := make([][]float64, 0, dim)
	ratios := make([]float64, 0, dim)
	var cumulative float64
	for _, idx := range order {
		ratio := 0.0
		if total > 0 && values[idx] > 0 {
			ratio = values[idx] / total
		}
		axis := make([]float64, dim)
		for j := 0; j < dim; j++ {
			axis[j] = vectorsCols[j][idx]
		}
		components = append(components, axis)
		ratios = append(ratios, ratio)
		cumulative += ratio

		if maxComponents > 0 && len(components) >= maxComponents {
			break
		}
		if cumulative >= varianceThreshold {
			break
		}
	}

	return &PCAModel{
		Mean:              mean,
		Scale:             scale,
		Components:        components,
		ExplainedVariance: ratios,
	}, nil
}

// NumComponents returns the number of retained components.
func (m *PCAModel) NumComponents() int { return len(m.Components) }

// TotalExplainedVariance returns the cumulative explained variance
// ratio of the retained components.
func (m *PCAModel) TotalExplainedVariance() float64 {
	var sum float64
	for _, r := range m.ExplainedVariance {
		sum += r
	}
	return sum
}

// Transform projects vectors into the component space using the fitted
// mean and scale.
func (m *PCAModel) Transform(vectors [][]float64) ([][]float64, error) {
	dim := len(m.Mean)
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
		row := make([]float64, len(m.Components))
		for k, axis := range m.Components {
			var dot float64
			for j := 0; j < dim; j++ {
				dot += ((v[j] - m.Mean[j]) / m.Scale[j]) * axis[j]
			}
			row[k] = dot
		}
		out[i] = row
	}
	return out, nil
}
