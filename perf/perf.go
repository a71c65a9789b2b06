// Package perf computes the standard biometric performance metrics from
// labeled score distributions: FAR, FRR, GAR, the interpolated EER and
// the (FAR, GAR) operating curve. It produces the curve's points; the
// rendering belongs to the caller.
package perf

import (
	"slices"

	"github.com/verimatch/verimatch/model"
)

// Trial is one labeled verification attempt. Score is on the common
// similarity scale (higher is better); Genuine marks a legitimate-user
// attempt.
type Trial struct {
	Score   float64
	Genuine bool
}

// ConfusionCounts accumulates decision outcomes at one threshold.
type ConfusionCounts struct {
	FalseAccepts int
	TrueRejects  int
	FalseRejects int
	TrueAccepts  int
}

// ROCPoint is one point of the (FAR, GAR) operating curve.
type ROCPoint struct {
	FAR float64
	GAR float64
}

// Report holds the swept metrics. All slices are parallel to Thresholds,
// which is ascending.
type Report struct {
	Thresholds []float64
	FAR        []float64
	FRR        []float64
	GAR        []float64
	Counts     []ConfusionCounts
	ROC        []ROCPoint

	// EER is the error rate where FAR and FRR cross, interpolated
	// linearly between the bracketing sweep points. EERThreshold is the
	// corresponding score threshold.
	EER          float64
	EERThreshold float64
}

// DefaultSweepPoints is the default threshold sweep resolution.
const DefaultSweepPoints = 1000

// DefaultThresholds returns n evenly spaced thresholds over [0,1].
// n ≤ 1 uses DefaultSweepPoints.
func DefaultThresholds(n int) []float64 {
	if n <= 1 {
		n = DefaultSweepPoints
	}
	out := make([]float64, n)
	step := 1 / float64(n-1)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// Compute sweeps the thresholds over the trials and derives the full
// metric set. A trial is accepted at threshold t iff its score ≥ t.
// A nil thresholds slice uses the default sweep; otherwise the sweep is
// the sorted copy of the given thresholds.
func Compute(trials []Trial, thresholds []float64) (*Report, error) {
	if len(trials) == 0 {
		return nil, &model.InsufficientDataError{Op: "perf compute", Need: 1, Got: 0}
	}
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds(0)
	} else {
		thresholds = slices.Clone(thresholds)
		slices.Sort(thresholds)
	}

	var genuine, impostor []float64
	for _, tr := range trials {
		if tr.Genuine {
			genuine = append(genuine, tr.Score)
		} else {
			impostor = append(impostor, tr.Score)
		}
	}

	r := &Report{
		Thresholds: thresholds,
		FAR:        make([]float64, len(thresholds)),
		FRR:        make([]float64, len(thresholds)),
		GAR:        make([]float64, len(thresholds)),
		Counts:     make([]ConfusionCounts, len(thresholds)),
		ROC:        make([]ROCPoint, len(thresholds)),
	}

	for i, t := range thresholds {
		var c ConfusionCounts
		for _, s := range impostor {
			if s >= t {
				c.FalseAccepts++
			} else {
				c.TrueRejects++
			}
		}
		for _, s := range genuine {
			if s >= t {
				c.TrueAccepts++
			} else {
				c.FalseRejects++
			}
		}
		r.Counts[i] = c

		if len(impostor) > 0 {
			r.FAR[i] = float64(c.FalseAccepts) / float64(len(impostor))
		}
		if len(genuine) > 0 {
			r.FRR[i] = float64(c.FalseRejects) / float64(len(genuine))
		}
		r.GAR[i] = 1 - r.FRR[i]
		r.ROC[i] = ROCPoint{FAR: r.FAR[i], GAR: r.GAR[i]}
	}

	r.EER, r.EERThreshold = equalErrorRate(thresholds, r.FAR, r.FRR)
	return r, nil
}

// equalErrorRate locates the FAR/FRR crossing. The curves are swept at
// discrete thresholds, so the crossing is interpolated linearly between
// the two sweep points where FAR−FRR changes sign rather than snapped to
// the nearest sample. If the sign never flips (degenerate sweeps), the
// point minimizing |FAR−FRR| is used with the rates averaged.
func equalErrorRate(thresholds, far, frr []float64) (eer, threshold float64) {
	n := len(thresholds)
	if n == 0 {
		return 0, 0
	}

	prev := far[0] - frr[0]
	if prev == 0 {
		return far[0], thresholds[0]
	}
	for i := 1; i < n; i++ {
		cur := far[i] - frr[i]
		if cur == 0 {
			return far[i], thresholds[i]
		}
		if (prev > 0) != (cur > 0) {
			// Linear interpolation across the bracket.
			frac := prev / (prev - cur)
			threshold = thresholds[i-1] + frac*(thresholds[i]-thresholds[i-1])
			farAt := far[i-1] + frac*(far[i]-far[i-1])
			frrAt := frr[i-1] + frac*(frr[i]-frr[i-1])
			return (farAt + frrAt) / 2, threshold
		}
		prev = cur
	}

	// No crossing: fall back to the closest approach.
	bestIdx := 0
	best := abs(far[0] - frr[0])
	for i := 1; i < n; i++ {
		if d := abs(far[i] - frr[i]); d < best {
			best = d
			bestIdx = i
		}
	}
	return (far[bestIdx] + frr[bestIdx]) / 2, thresholds[bestIdx]
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// At returns the metrics at the sweep point closest to threshold.
func (r *Report) At(threshold float64) (far, frr, gar float64) {
	bestIdx := 0
	best := abs(r.Thresholds[0] - threshold)
	for i := 1; i < len(r.Thresholds); i++ {
		if d := abs(r.Thresholds[i] - threshold); d < best {
			best = d
			bestIdx = i
		}
	}
	return r.FAR[bestIdx], r.FRR[bestIdx], r.GAR[bestIdx]
}
