package optimize

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// SelectionMask is the set of selected feature indices out of a
// fixed-length schema, backed by a roaring bitmap.
type SelectionMask struct {
	bits *roaring.Bitmap
	n    int
}

// NewSelectionMask builds a mask from per-index booleans.
func NewSelectionMask(bits []bool) *SelectionMask {
	bm := roaring.New()
	for i, b := range bits {
		if b {
			bm.Add(uint32(i))
		}
	}
	return &SelectionMask{bits: bm, n: len(bits)}
}

// MaskFromIndices builds a mask of length n with the given indices set.
func MaskFromIndices(n int, indices []int) *SelectionMask {
	bm := roaring.New()
	for _, i := range indices {
		bm.Add(uint32(i))
	}
	return &SelectionMask{bits: bm, n: n}
}

// Len returns the schema length the mask selects from.
func (m *SelectionMask) Len() int { return m.n }

// Count returns the number of selected features.
func (m *SelectionMask) Count() int { return int(m.bits.GetCardinality()) }

// Contains reports whether feature index i is selected.
func (m *SelectionMask) Contains(i int) bool { return m.bits.Contains(uint32(i)) }

// Indices returns the selected indices in ascending order.
func (m *SelectionMask) Indices() []int {
	raw := m.bits.ToArray()
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}
	return out
}

// Apply projects each vector onto the selected columns.
func (m *SelectionMask) Apply(vectors [][]float64) [][]float64 {
	indices := m.Indices()
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, len(indices))
		for j, idx := range indices {
			row[j] = v[idx]
		}
		out[i] = row
	}
	return out
}

func (m *SelectionMask) String() string {
	return fmt.Sprintf("SelectionMask(%d/%d)", m.Count(), m.n)
}
