// Package linalg implements the small dense linear algebra needed by the
// PCA optimizer: covariance matrices and a Jacobi eigensolver for real
// symmetric matrices. Matrices are row-major [][]float64; the sizes
// involved (tens of features) make a dependency-free implementation both
// simple and fast enough.
package linalg

import "math"

// Covariance returns the population covariance matrix of the columns of x.
// x is row-major with one sample per row; all rows must share a length.
func Covariance(x [][]float64) [][]float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	d := len(x[0])

	means := make([]float64, d)
	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}

	cov := make([][]float64, d)
	for i := range cov {
		cov[i] = make([]float64, d)
	}
	for _, row := range x {
		for i := 0; i < d; i++ {
			di := row[i] - means[i]
			for j := i; j < d; j++ {
				cov[i][j] += di * (row[j] - means[j])
			}
		}
	}
	inv := 1 / float64(n)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			cov[i][j] *= inv
			cov[j][i] = cov[i][j]
		}
	}
	return cov
}

// JacobiEigen computes the eigenvalues and eigenvectors of the real
// symmetric matrix a using cyclic Jacobi rotations. It returns the
// eigenvalues and a matrix whose columns are the corresponding
// eigenvectors. a is not modified.
//
// Convergence is reached when the off-diagonal Frobenius norm drops below
// a fixed tolerance; maxSweeps bounds the work for degenerate input.
func JacobiEigen(a [][]float64, maxSweeps int) ([]float64, [][]float64) {
	n := len(a)
	if maxSweeps <= 0 {
		maxSweeps = 100
	}

	// Work on a copy.
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		copy(m[i], a[i])
	}

	// Eigenvector accumulator starts as identity.
	v := make([][]float64, n)
	for i := range v {
		v[i] = make([]float64, n)
		v[i][i] = 1
	}

	const tol = 1e-12

	for sweep := 0; sweep < maxSweeps; sweep++ {
		off := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off += m[i][j] * m[i][j]
			}
		}
		if off < tol {
			break
		}

		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(m[p][q]) < tol/float64(n*n) {
					continue
				}
				rotate(m, v, p, q, n)
			}
		}
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = m[i][i]
	}
	return values, v
}

// rotate applies a single Jacobi rotation zeroing m[p][q].
func rotate(m, v [][]float64, p, q, n int) {
	apq := m[p][q]
	app := m[p][p]
	aqq := m[q][q]

	theta := (aqq - app) / (2 * apq)
	t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
	c := 1 / math.Sqrt(t*t+1)
	s := t * c

	for k := 0; k < n; k++ {
		mkp := m[k][p]
		mkq := m[k][q]
		m[k][p] = c*mkp - s*mkq
		m[k][q] = s*mkp + c*mkq
	}
	for k := 0; k < n; k++ {
		mpk := m[p][k]
		mqk := m[q][k]
		m[p][k] = c*mpk - s*mqk
		m[q][k] = s*mpk + c*mqk
	}
	for k := 0; k < n; k++ {
		vkp := v[k][p]
		vkq := v[k][q]
		v[k][p] = c*vkp - s*vkq
		v[k][q] = s*vkp + c*vkq
	}
}
