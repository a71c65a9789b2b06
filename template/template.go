// Package template holds the in-memory representation of enrolled
// biometric templates and the copy-on-write store the matchers read from.
//
// Templates are immutable once built: re-enrollment constructs a brand-new
// value and the store swaps the reference wholesale. Durable persistence
// is the caller's concern; the codec package produces the byte blobs an
// external store keeps.
package template

import (
	"github.com/verimatch/verimatch/internal/stat"
	"github.com/verimatch/verimatch/model"
)

// SchemaVersion is bumped whenever the feature-vector layout of either
// modality changes. A version or dimension mismatch on verify means every
// existing template for that modality is invalid and the user must
// re-enroll; templates are never truncated or padded to fit.
const SchemaVersion = 1

// Template is the read-only view the store hands out.
type Template interface {
	Modality() model.Modality
	Dim() int
}

// Keystroke is the statistical template for the keystroke modality:
// feature-wise mean and standard deviation over the enrollment sessions,
// plus the observed per-feature range for diagnostics.
type Keystroke struct {
	Mean    []float64
	Std     []float64
	Min     []float64
	Max     []float64
	Samples int
	Schema  int
}

// NewKeystroke aggregates per-session feature vectors into a template.
// All vectors must share a length; enrollment-count policy is enforced by
// the caller.
func NewKeystroke(vectors [][]float64) (*Keystroke, error) {
	if len(vectors) == 0 {
		return nil, &model.InsufficientDataError{Op: "keystroke template", Need: 1, Got: 0}
	}
	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return nil, &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}

	t := &Keystroke{
		Mean:    make([]float64, dim),
		Std:     make([]float64, dim),
		Min:     make([]float64, dim),
		Max:     make([]float64, dim),
		Samples: len(vectors),
		Schema:  SchemaVersion,
	}
	for j := 0; j < dim; j++ {
		col := stat.Column(vectors, j)
		t.Mean[j] = stat.Mean(col)
		t.Std[j] = stat.Std(col)
		t.Min[j] = stat.Min(col)
		t.Max[j] = stat.Max(col)
	}
	return t, nil
}

func (t *Keystroke) Modality() model.Modality { return model.ModalityKeystroke }

func (t *Keystroke) Dim() int { return len(t.Mean) }

// Face is the template for the face modality. It keeps every enrollment
// feature vector (matching compares against each and takes the closest)
// along with their mean for diagnostics.
//
// Vectors may carry geometric landmark features appended after the
// embedding; EmbeddingDim records where the embedding ends so identity
// distance is computed over the embedding alone. Landmark coordinates are
// pixel-scale and would swamp an embedding-scale tolerance otherwise.
type Face struct {
	Vectors      [][]float64
	Mean         []float64
	EmbeddingDim int
	Samples      int
	Schema       int
}

// NewFace builds a face template from enrollment feature vectors.
// All vectors must share a length. embeddingDim ≤ 0 or past the vector
// length means the whole vector is the embedding.
func NewFace(vectors [][]float64, embeddingDim int) (*Face, error) {
	if len(vectors) == 0 {
		return nil, &model.InsufficientDataError{Op: "face template", Need: 1, Got: 0}
	}
	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return nil, &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}

	if embeddingDim <= 0 || embeddingDim > dim {
		embeddingDim = dim
	}

	t := &Face{
		Vectors:      make([][]float64, len(vectors)),
		Mean:         make([]float64, dim),
		EmbeddingDim: embeddingDim,
		Samples:      len(vectors),
		Schema:       SchemaVersion,
	}
	for i, v := range vectors {
		t.Vectors[i] = append([]float64(nil), v...)
	}
	for j := 0; j < dim; j++ {
		t.Mean[j] = stat.Mean(stat.Column(vectors, j))
	}
	return t, nil
}

func (t *Face) Modality() model.Modality { return model.ModalityFace }

func (t *Face) Dim() int { return len(t.Mean) }
