// Package fusion combines per-modality scores or decisions into a single
// verdict.
//
// Score-level fusion first normalizes every modality onto a common
// "goodness" scale (similarity in [0,1], higher is better), then applies
// one of the combination rules. Decision-level fusion operates on the
// per-modality booleans directly.
package fusion

import (
	"errors"
	"fmt"

	"github.com/verimatch/verimatch/model"
)

// ErrNoModalities is returned when fusion is attempted over an empty
// score or decision set.
var ErrNoModalities = errors.New("no modalities provided")

// UnknownMethodError indicates an unrecognized fusion method name. The
// engine never falls back to a default rule: a typo in a security policy
// must fail loudly.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown fusion method: %q", e.Method)
}

// Method names a score-level combination rule.
type Method string

const (
	WeightedSum Method = "weighted_sum"
	Product     Method = "product"
	Mean        Method = "mean"
	Max         Method = "max"
	Min         Method = "min"
)

// DecisionMethod names a decision-level combination rule.
type DecisionMethod string

const (
	And      DecisionMethod = "and"
	Or       DecisionMethod = "or"
	Majority DecisionMethod = "majority"
)

// DefaultWeights is the default modality weighting for weighted-sum
// fusion. Face carries more weight than keystroke, mirroring their
// relative discriminative power.
func DefaultWeights() map[model.Modality]float64 {
	return map[model.Modality]float64{
		model.ModalityKeystroke: 0.4,
		model.ModalityFace:      0.6,
	}
}

// DefaultThreshold is the default fused-score acceptance threshold,
// distinct from every per-modality threshold.
const DefaultThreshold = 0.5

// Similarity maps a modality score onto the common [0,1] goodness scale.
// Keystroke distances invert via 1/(1+D); face scores are already
// similarities.
func Similarity(s model.ModalityScore) float64 {
	switch s.Modality {
	case model.ModalityKeystroke:
		return 1 / (1 + s.Score)
	default:
		return s.Score
	}
}

// Result is the fused verdict together with the inputs it was derived
// from.
type Result struct {
	FusedScore    float64
	Authenticated bool
	PerModality   []model.ModalityScore
}

// Fuse combines an ordered set of modality scores under the given method.
// Weights apply to WeightedSum only: a nil map uses DefaultWeights, and
// whatever map is in effect is normalized so the applied weights sum
// to 1. threshold ≤ 0 uses DefaultThreshold.
func Fuse(scores []model.ModalityScore, method Method, weights map[model.Modality]float64, threshold float64) (Result, error) {
	if len(scores) == 0 {
		return Result{}, ErrNoModalities
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	similarities := make([]float64, len(scores))
	for i, s := range scores {
		similarities[i] = Similarity(s)
	}

	var fused float64
	switch method {
	case WeightedSum:
		if weights == nil {
			weights = DefaultWeights()
		}
		var total float64
		for _, s := range scores {
			total += weights[s.Modality]
		}
		if total == 0 {
			// None of the provided modalities is weighted; fall back to
			// equal weights rather than dividing by zero.
			for i := range similarities {
				fused += similarities[i]
			}
			fused /= float64(len(similarities))
			break
		}
		for i, s := range scores {
			fused += weights[s.Modality] / total * similarities[i]
		}

	case Product:
		fused = 1
		for _, s := range similarities {
			fused *= s
		}

	case Mean:
		for _, s := range similarities {
			fused += s
		}
		fused /= float64(len(similarities))

	case Max:
		fused = similarities[0]
		for _, s := range similarities[1:] {
			if s > fused {
				fused = s
			}
		}

	case Min:
		fused = similarities[0]
		for _, s := range similarities[1:] {
			if s < fused {
				fused = s
			}
		}

	default:
		return Result{}, &UnknownMethodError{Method: string(method)}
	}

	return Result{
		FusedScore:    fused,
		Authenticated: fused >= threshold,
		PerModality:   scores,
	}, nil
}

// FuseDecisions combines per-modality accept/reject decisions.
func FuseDecisions(decisions []bool, method DecisionMethod) (bool, error) {
	if len(decisions) == 0 {
		return false, ErrNoModalities
	}

	switch method {
	case And:
		for _, d := range decisions {
			if !d {
				return false, nil
			}
		}
		return true, nil

	case Or:
		for _, d := range decisions {
			if d {
				return true, nil
			}
		}
		return false, nil

	case Majority:
		accepts := 0
		for _, d := range decisions {
			if d {
				accepts++
			}
		}
		return accepts*2 > len(decisions), nil

	default:
		return false, &UnknownMethodError{Method: string(method)}
	}
}
