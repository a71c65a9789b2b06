// Package keystroke implements keystroke-dynamics feature extraction,
// enrollment and template matching.
//
// The behavioral signal is timing: how long keys are held (dwell), the
// gaps between them (flight, signed — overlapping keystrokes produce
// negative flights and that overlap is itself a behavioral trait), typing
// pressure, and the variation of all of these over a session. Features
// are invariant to key identity; only timing and pressure enter the
// vector.
package keystroke

import (
	"errors"
	"fmt"
	"math"

	"github.com/verimatch/verimatch/distance"
	"github.com/verimatch/verimatch/internal/stat"
	"github.com/verimatch/verimatch/model"
	"github.com/verimatch/verimatch/template"
)

// ErrMalformedSession is returned when events are out of order or a
// release precedes its press. Malformed input is surfaced, never scored.
var ErrMalformedSession = errors.New("malformed keystroke session")

// Event is a single timed key event. Times are seconds on a monotonic
// session clock; Pressure is in [0,1] (a constant placeholder on hardware
// without a pressure sensor).
type Event struct {
	Key         string
	PressTime   float64
	ReleaseTime float64
	Pressure    float64
}

// Session is one typed sample: events ordered by press time.
type Session []Event

// Validate checks the session invariants: press-time ordering and
// release ≥ press for every event.
func (s Session) Validate() error {
	for i, e := range s {
		if e.ReleaseTime < e.PressTime {
			return fmt.Errorf("%w: event %d released before press", ErrMalformedSession, i)
		}
		if i > 0 && e.PressTime < s[i-1].PressTime {
			return fmt.Errorf("%w: event %d out of order", ErrMalformedSession, i)
		}
	}
	return nil
}

// DwellTimes returns release−press per event.
func (s Session) DwellTimes() []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.ReleaseTime - e.PressTime
	}
	return out
}

// FlightTimes returns the signed gap between each release and the next
// press. Negative values mean overlapping keystrokes and are kept as-is.
func (s Session) FlightTimes() []float64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]float64, len(s)-1)
	for i := 0; i < len(s)-1; i++ {
		out[i] = s[i+1].PressTime - s[i].ReleaseTime
	}
	return out
}

// Pressures returns the pressure reading per event.
func (s Session) Pressures() []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.Pressure
	}
	return out
}

// FeatureDim is the fixed length of a keystroke feature vector. Other
// components rely on this exact count; any change to the layout must bump
// template.SchemaVersion.
const FeatureDim = 19

// MinExtractEvents is the hard floor for feature extraction: flight times
// need at least two events. The (higher) authentication minimum is a
// Matcher policy.
const MinExtractEvents = 2

// FeatureNames names the 19 dimensions in vector order.
var FeatureNames = [FeatureDim]string{
	"dwell_mean", "dwell_std", "dwell_var", "dwell_median", "dwell_min", "dwell_max",
	"flight_mean", "flight_std", "flight_var", "flight_median", "flight_min", "flight_max",
	"pressure_mean", "pressure_std", "pressure_var",
	"dwell_diff_mean", "dwell_diff_std", "flight_diff_mean", "flight_diff_std",
}

// Extract converts a session into the fixed 19-dimensional statistical
// feature vector: six dwell statistics, six flight statistics, three
// pressure statistics (mean/std/var — min and max of a near-constant
// signal carry no information) and four rhythm-variation statistics over
// the first-order differences of dwell and flight.
func Extract(session Session) ([]float64, error) {
	if len(session) < MinExtractEvents {
		return nil, &model.InsufficientDataError{
			Op:   "keystroke extract",
			Need: MinExtractEvents,
			Got:  len(session),
		}
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	dwell := session.DwellTimes()
	flight := session.FlightTimes()
	pressure := session.Pressures()
	dwellDiff := stat.Diff(dwell)
	flightDiff := stat.Diff(flight)

	features := make([]float64, 0, FeatureDim)
	features = append(features,
		stat.Mean(dwell), stat.Std(dwell), stat.Variance(dwell),
		stat.Median(dwell), stat.Min(dwell), stat.Max(dwell),
	)
	features = append(features,
		stat.Mean(flight), stat.Std(flight), stat.Variance(flight),
		stat.Median(flight), stat.Min(flight), stat.Max(flight),
	)
	features = append(features,
		stat.Mean(pressure), stat.Std(pressure), stat.Variance(pressure),
	)
	features = append(features,
		stat.Mean(dwellDiff), stat.Std(dwellDiff),
		stat.Mean(flightDiff), stat.Std(flightDiff),
	)
	return features, nil
}

// DigraphTiming aggregates press-to-press latencies for one adjacent key
// pair.
type DigraphTiming struct {
	Mean  float64
	Std   float64
	Count int
}

// DigraphStats returns per-digraph latency statistics, keyed "a-b" for
// the adjacent pair (a, b). These are diagnostics; the fixed feature
// vector aggregates rhythm variation instead, so the schema stays
// independent of the typed text.
func DigraphStats(session Session) map[string]DigraphTiming {
	latencies := make(map[string][]float64)
	for i := 0; i < len(session)-1; i++ {
		key := session[i].Key + "-" + session[i+1].Key
		latencies[key] = append(latencies[key], session[i+1].PressTime-session[i].PressTime)
	}

	out := make(map[string]DigraphTiming, len(latencies))
	for key, ts := range latencies {
		out[key] = DigraphTiming{Mean: stat.Mean(ts), Std: stat.Std(ts), Count: len(ts)}
	}
	return out
}

// MinEnrollSessions is the default enrollment minimum.
const MinEnrollSessions = 3

// Enroll extracts features from each session and aggregates them into a
// template. minSessions ≤ 0 uses MinEnrollSessions.
func Enroll(sessions []Session, minSessions int) (*template.Keystroke, error) {
	if minSessions <= 0 {
		minSessions = MinEnrollSessions
	}
	if len(sessions) < minSessions {
		return nil, &model.InsufficientDataError{
			Op:   "keystroke enroll",
			Need: minSessions,
			Got:  len(sessions),
		}
	}

	vectors := make([][]float64, 0, len(sessions))
	for _, s := range sessions {
		v, err := Extract(s)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return template.NewKeystroke(vectors)
}

// DefaultThreshold is the default per-dimension acceptance threshold:
// the live vector must sit within 3 normalized standard deviations in
// aggregate.
const DefaultThreshold = 3.0

// DefaultMinEvents is the default authentication minimum session length.
const DefaultMinEvents = 10

// Matcher verifies live sessions against enrolled templates.
type Matcher struct {
	// Threshold is in normalized standard deviations per dimension; the
	// effective distance cutoff is Threshold·sqrt(dim).
	Threshold float64

	// MinEvents is the minimum live session length for authentication.
	MinEvents int
}

// NewMatcher returns a Matcher with the default policy. Zero or negative
// fields fall back to defaults, keeping partially configured matchers
// safe.
func NewMatcher(threshold float64, minEvents int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if minEvents <= 0 {
		minEvents = DefaultMinEvents
	}
	return &Matcher{Threshold: threshold, MinEvents: minEvents}
}

// Verify scores a live session against an enrolled template. The reported
// score is the diagonal-covariance Mahalanobis distance (lower is a
// better match); Accepted is true iff the distance is within the
// effective threshold.
func (m *Matcher) Verify(tmpl *template.Keystroke, session Session) (model.ModalityScore, error) {
	if tmpl == nil {
		return model.ModalityScore{}, &model.InsufficientDataError{Op: "keystroke verify: no template", Need: 1, Got: 0}
	}
	if len(session) < m.MinEvents {
		return model.ModalityScore{}, &model.InsufficientDataError{
			Op:   "keystroke verify",
			Need: m.MinEvents,
			Got:  len(session),
		}
	}

	live, err := Extract(session)
	if err != nil {
		return model.ModalityScore{}, err
	}
	if len(live) != tmpl.Dim() {
		return model.ModalityScore{}, &model.DimensionMismatchError{Expected: tmpl.Dim(), Actual: len(live)}
	}

	d := distance.NormalizedL2(live, tmpl.Mean, tmpl.Std)
	effective := m.Threshold * math.Sqrt(float64(tmpl.Dim()))
	accepted := d <= effective

	return model.ModalityScore{
		Modality:  model.ModalityKeystroke,
		Score:     d,
		Threshold: effective,
		Accepted:  accepted,
		Details: map[string]float64{
			"normalized_distance": d / math.Sqrt(float64(tmpl.Dim())),
			"similarity":          1 / (1 + d),
			"events":              float64(len(session)),
			"template_samples":    float64(tmpl.Samples),
		},
	}, nil
}
