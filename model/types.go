package model

// Modality identifies a biometric signal source.
type Modality string

const (
	ModalityKeystroke Modality = "keystroke"
	ModalityFace      Modality = "face"
)

// ModalityScore is the outcome of verifying one modality.
//
// The score scale is modality-specific: keystroke reports a distance
// (lower is a better match), face reports a similarity in [0,1]. Callers
// that need a common scale use fusion.Similarity.
type ModalityScore struct {
	Modality Modality

	// Score is the raw matcher output on the modality's native scale.
	Score float64

	// Threshold is the acceptance threshold the decision was made against,
	// on the same scale as Score.
	Threshold float64

	// Accepted is the per-modality accept/reject decision.
	Accepted bool

	// Details carries diagnostic sub-scores (liveness, per-block
	// distances, ...). Keys are stable strings; values are numeric so the
	// map can be logged and serialized uniformly. Booleans are encoded as
	// 0/1.
	Details map[string]float64
}
