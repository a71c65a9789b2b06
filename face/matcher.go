package face

import (
	"github.com/verimatch/verimatch/distance"
	"github.com/verimatch/verimatch/model"
	"github.com/verimatch/verimatch/template"
)

// Default matcher policy.
const (
	// DefaultTolerance is the identity distance cutoff; embeddings closer
	// than this to any enrolled sample count as the same person.
	DefaultTolerance = 0.6

	// DefaultLivenessThreshold is the minimum combined liveness score.
	DefaultLivenessThreshold = 0.5

	// DefaultDistanceNormalizer maps distance into similarity:
	// score = 1 − min(d/normalizer, 1).
	DefaultDistanceNormalizer = 1.0
)

// MinEnrollSamples is the default face enrollment minimum.
const MinEnrollSamples = 3

// Enroll builds a face template from feature vectors. embeddingDim marks
// where the embedding ends and appended geometric features begin; ≤ 0
// treats the whole vector as the embedding. minSamples ≤ 0 uses
// MinEnrollSamples.
func Enroll(vectors [][]float64, embeddingDim, minSamples int) (*template.Face, error) {
	if minSamples <= 0 {
		minSamples = MinEnrollSamples
	}
	if len(vectors) < minSamples {
		return nil, &model.InsufficientDataError{
			Op:   "face enroll",
			Need: minSamples,
			Got:  len(vectors),
		}
	}
	return template.NewFace(vectors, embeddingDim)
}

// Matcher verifies live face features against enrolled templates,
// requiring both an identity match and a passing liveness score. The two
// sub-results are reported distinctly so a caller can tell an identity
// mismatch from a suspected spoof.
type Matcher struct {
	Tolerance          float64
	LivenessThreshold  float64
	DistanceNormalizer float64

	// RequireLiveness rejects verification attempts without frames
	// instead of skipping the check. Skipping silently would turn a
	// missing signal into an accept path.
	RequireLiveness bool

	Liveness *LivenessDetector
}

// NewMatcher returns a Matcher with default policy and liveness required.
// Zero or negative numeric fields fall back to defaults.
func NewMatcher(tolerance, livenessThreshold float64) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if livenessThreshold <= 0 {
		livenessThreshold = DefaultLivenessThreshold
	}
	return &Matcher{
		Tolerance:          tolerance,
		LivenessThreshold:  livenessThreshold,
		DistanceNormalizer: DefaultDistanceNormalizer,
		RequireLiveness:    true,
		Liveness:           NewLivenessDetector(),
	}
}

// Verify scores a live feature vector against an enrolled template. The
// reported score is a similarity in [0,1] (higher is a better match);
// Accepted is true only when both the identity test and the liveness test
// pass.
func (m *Matcher) Verify(tmpl *template.Face, live []float64, frames []Frame) (model.ModalityScore, error) {
	if tmpl == nil || len(tmpl.Vectors) == 0 {
		return model.ModalityScore{}, &model.InsufficientDataError{Op: "face verify: no template", Need: 1, Got: 0}
	}
	if len(live) != tmpl.Dim() {
		return model.ModalityScore{}, &model.DimensionMismatchError{Expected: tmpl.Dim(), Actual: len(live)}
	}
	if m.RequireLiveness && len(frames) == 0 {
		return model.ModalityScore{}, &model.InsufficientDataError{Op: "face verify: liveness frames", Need: 1, Got: 0}
	}

	// Identity is decided on the embedding alone. Appended geometric
	// features are pixel-scale and would drown the tolerance.
	embDim := tmpl.EmbeddingDim
	if embDim <= 0 || embDim > tmpl.Dim() {
		embDim = tmpl.Dim()
	}

	// Closest enrolled sample wins.
	minDist := distance.L2(live[:embDim], tmpl.Vectors[0][:embDim])
	for _, v := range tmpl.Vectors[1:] {
		if d := distance.L2(live[:embDim], v[:embDim]); d < minDist {
			minDist = d
		}
	}

	normalizer := m.DistanceNormalizer
	if normalizer <= 0 {
		normalizer = DefaultDistanceNormalizer
	}
	normalized := minDist / normalizer
	if normalized > 1 {
		normalized = 1
	}
	similarity := 1 - normalized
	identityMatch := minDist <= m.Tolerance

	liveness := m.liveness().Score(frames)
	livePass := liveness.Score >= m.LivenessThreshold
	if len(frames) == 0 && !m.RequireLiveness {
		livePass = true
	}

	details := map[string]float64{
		"identity_distance": minDist,
		"identity_match":    boolToFloat(identityMatch),
		"liveness_score":    liveness.Score,
		"texture_score":     liveness.TextureScore,
		"blink_detected":    boolToFloat(liveness.BlinkDetected),
		"live":              boolToFloat(livePass),
		"template_samples":  float64(tmpl.Samples),
	}

	return model.ModalityScore{
		Modality:  model.ModalityFace,
		Score:     similarity,
		Threshold: 1 - m.Tolerance/normalizer,
		Accepted:  identityMatch && livePass,
		Details:   details,
	}, nil
}

func (m *Matcher) liveness() *LivenessDetector {
	if m.Liveness != nil {
		return m.Liveness
	}
	return NewLivenessDetector()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
