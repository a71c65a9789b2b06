package verimatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimatch/verimatch/codec"
	"github.com/verimatch/verimatch/config"
	"github.com/verimatch/verimatch/face"
	"github.com/verimatch/verimatch/internal/randutil"
	"github.com/verimatch/verimatch/keystroke"
	"github.com/verimatch/verimatch/model"
	"github.com/verimatch/verimatch/perf"
	"github.com/verimatch/verimatch/template"
)

// typistSession synthesizes one typed sample for a typist profile given
// by base dwell and flight times. Pressure is a constant placeholder, as
// on hardware without a pressure sensor.
func typistSession(rng *randutil.RNG, baseDwell, baseFlight float64, events int) keystroke.Session {
	s := make(keystroke.Session, events)
	clock := 0.0
	for i := 0; i < events; i++ {
		dwell := baseDwell + rng.NormFloat64()*0.01
		if dwell < 0.01 {
			dwell = 0.01
		}
		flight := baseFlight + rng.NormFloat64()*0.01
		if flight < 0 {
			flight = 0
		}
		s[i] = keystroke.Event{
			Key:         string(rune('a' + i%26)),
			PressTime:   clock,
			ReleaseTime: clock + dwell,
			Pressure:    0.5,
		}
		clock += dwell + flight
	}
	return s
}

func typistSessions(rng *randutil.RNG, baseDwell, baseFlight float64, n, events int) []keystroke.Session {
	out := make([]keystroke.Session, n)
	for i := range out {
		out[i] = typistSession(rng, baseDwell, baseFlight, events)
	}
	return out
}

// faceVectors synthesizes enrollment embeddings near a base vector.
func faceVectors(rng *randutil.RNG, base []float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		v := make([]float64, len(base))
		for j, b := range base {
			v[j] = b + rng.NormFloat64()*0.01
		}
		out[i] = v
	}
	return out
}

func baseEmbedding(rng *randutil.RNG, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}

func openEye(offsetX float64) []face.Point {
	return []face.Point{
		{X: offsetX, Y: 0}, {X: offsetX + 1, Y: -1}, {X: offsetX + 2, Y: -1},
		{X: offsetX + 3, Y: 0}, {X: offsetX + 2, Y: 1}, {X: offsetX + 1, Y: 1},
	}
}

func closedEye(offsetX float64) []face.Point {
	return []face.Point{
		{X: offsetX, Y: 0}, {X: offsetX + 1, Y: -0.05}, {X: offsetX + 2, Y: -0.05},
		{X: offsetX + 3, Y: 0}, {X: offsetX + 2, Y: 0.05}, {X: offsetX + 1, Y: 0.05},
	}
}

// fullLandmarks places every recognized region at pixel scale. scale
// models the apparent face size: a camera moved closer scales every
// coordinate up.
func fullLandmarks(scale float64) face.Landmarks {
	s := func(ps []face.Point) []face.Point {
		out := make([]face.Point, len(ps))
		for i, p := range ps {
			out[i] = face.Point{X: p.X * scale, Y: p.Y * scale}
		}
		return out
	}
	return face.Landmarks{
		face.RegionLeftEye:    s(openEye(100)),
		face.RegionRightEye:   s(openEye(160)),
		face.RegionNoseBridge: s([]face.Point{{X: 130, Y: 60}, {X: 130, Y: 80}}),
		face.RegionNoseTip:    s([]face.Point{{X: 126, Y: 95}, {X: 130, Y: 97}, {X: 134, Y: 95}}),
		face.RegionChin:       s([]face.Point{{X: 100, Y: 150}, {X: 130, Y: 170}, {X: 160, Y: 150}}),
	}
}

func sampleLandmarks(n int, scale float64) []face.Landmarks {
	out := make([]face.Landmarks, n)
	for i := range out {
		out[i] = fullLandmarks(scale)
	}
	return out
}

// liveFrames is a frame sequence a live person produces: textured
// patches with a blink in the middle.
func liveFrames() []face.Frame {
	const n = 8
	gray := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if (x+y)%2 == 0 {
				gray[y*n+x] = 255
			}
		}
	}
	open := face.Landmarks{face.RegionLeftEye: openEye(0), face.RegionRightEye: openEye(10)}
	closed := face.Landmarks{face.RegionLeftEye: closedEye(0), face.RegionRightEye: closedEye(10)}
	return []face.Frame{
		{Landmarks: open, Gray: gray, Width: n, Height: n},
		{Landmarks: closed, Gray: gray, Width: n, Height: n},
		{Landmarks: open, Gray: gray, Width: n, Height: n},
	}
}

// spoofFrames is what a printed photo produces: flat texture, no blink.
func spoofFrames() []face.Frame {
	const n = 8
	gray := make([]float64, n*n)
	for i := range gray {
		gray[i] = 128
	}
	open := face.Landmarks{face.RegionLeftEye: openEye(0), face.RegionRightEye: openEye(10)}
	return []face.Frame{
		{Landmarks: open, Gray: gray, Width: n, Height: n},
		{Landmarks: open, Gray: gray, Width: n, Height: n},
	}
}

func TestEngineKeystrokeRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine, err := New()
	require.NoError(t, err)

	rng := randutil.NewRNG(1)
	_, err = engine.EnrollKeystroke(ctx, "alice", typistSessions(rng, 0.1, 0.05, 8, 40))
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Store().Len())

	genuine, err := engine.VerifyKeystroke(ctx, "alice", typistSession(rng, 0.1, 0.05, 40))
	require.NoError(t, err)
	assert.True(t, genuine.Accepted)
	assert.Equal(t, model.ModalityKeystroke, genuine.Modality)

	impostor, err := engine.VerifyKeystroke(ctx, "alice", typistSession(rng, 0.25, 0.18, 40))
	require.NoError(t, err)
	assert.False(t, impostor.Accepted)
	assert.Greater(t, impostor.Score, genuine.Score)
}

func TestEngineFaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine, err := New()
	require.NoError(t, err)

	rng := randutil.NewRNG(2)
	base := baseEmbedding(rng, 128)
	_, err = engine.EnrollFace(ctx, "bob", faceVectors(rng, base, 4), sampleLandmarks(4, 1.0))
	require.NoError(t, err)

	genuine, err := engine.VerifyFace(ctx, "bob", base, fullLandmarks(1.0), liveFrames())
	require.NoError(t, err)
	assert.True(t, genuine.Accepted)
	assert.Greater(t, genuine.Score, 0.5)

	// Right face, spoofed presentation.
	spoofed, err := engine.VerifyFace(ctx, "bob", base, fullLandmarks(1.0), spoofFrames())
	require.NoError(t, err)
	assert.False(t, spoofed.Accepted)
	assert.Equal(t, 0.0, spoofed.Details["live"])

	// Wrong face, live presentation.
	other := baseEmbedding(randutil.NewRNG(99), 128)
	impostor, err := engine.VerifyFace(ctx, "bob", other, fullLandmarks(1.0), liveFrames())
	require.NoError(t, err)
	assert.False(t, impostor.Accepted)
}

func TestEngineFaceLandmarkScaleInvariance(t *testing.T) {
	ctx := context.Background()
	engine, err := New()
	require.NoError(t, err)

	rng := randutil.NewRNG(21)
	base := baseEmbedding(rng, 128)
	_, err = engine.EnrollFace(ctx, "grace", faceVectors(rng, base, 3), sampleLandmarks(3, 1.0))
	require.NoError(t, err)

	// Same person, camera 10% closer: every landmark coordinate scales
	// up while the embedding stays put. Identity must hold regardless.
	score, err := engine.VerifyFace(ctx, "grace", base, fullLandmarks(1.1), liveFrames())
	require.NoError(t, err)
	assert.True(t, score.Accepted)
	assert.Equal(t, 1.0, score.Details["identity_match"])
	assert.Less(t, score.Details["identity_distance"], 0.3)
}

func TestEngineAuthenticate(t *testing.T) {
	ctx := context.Background()
	engine, err := New()
	require.NoError(t, err)

	rng := randutil.NewRNG(3)
	base := baseEmbedding(rng, 128)
	_, err = engine.EnrollKeystroke(ctx, "carol", typistSessions(rng, 0.1, 0.05, 8, 40))
	require.NoError(t, err)
	_, err = engine.EnrollFace(ctx, "carol", faceVectors(rng, base, 4), sampleLandmarks(4, 1.0))
	require.NoError(t, err)

	verdict, err := engine.Authenticate(ctx, "carol", typistSession(rng, 0.1, 0.05, 40), base, fullLandmarks(1.0), liveFrames())
	require.NoError(t, err)
	assert.True(t, verdict.Authenticated)
	require.Len(t, verdict.PerModality, 2)

	forged, err := engine.Authenticate(ctx, "carol",
		typistSession(rng, 0.25, 0.18, 40), baseEmbedding(randutil.NewRNG(98), 128), fullLandmarks(1.0), spoofFrames())
	require.NoError(t, err)
	assert.False(t, forged.Authenticated)
	assert.Less(t, forged.FusedScore, verdict.FusedScore)
}

func TestEngineDecisionFusion(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	ok, err := engine.FuseDecisions("and", true, true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.FuseDecisions("majority", true, false, false)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.FuseDecisions("xor", true)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestEngineTemplateExportImport(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.CodecName = "json+zstd"
	engine, err := New(WithConfig(cfg))
	require.NoError(t, err)

	rng := randutil.NewRNG(4)
	_, err = engine.EnrollKeystroke(ctx, "dave", typistSessions(rng, 0.12, 0.06, 8, 40))
	require.NoError(t, err)

	data, err := engine.ExportTemplate("dave", model.ModalityKeystroke)
	require.NoError(t, err)

	require.NoError(t, engine.ImportTemplate("dave-restored", data))

	score, err := engine.VerifyKeystroke(ctx, "dave-restored", typistSession(rng, 0.12, 0.06, 40))
	require.NoError(t, err)
	assert.True(t, score.Accepted)

	// Face templates keep their embedding boundary across the round
	// trip, so restored templates match on the embedding alone.
	base := baseEmbedding(rng, 32)
	_, err = engine.EnrollFace(ctx, "dave", faceVectors(rng, base, 3), sampleLandmarks(3, 1.0))
	require.NoError(t, err)
	data, err = engine.ExportTemplate("dave", model.ModalityFace)
	require.NoError(t, err)
	require.NoError(t, engine.ImportTemplate("dave-restored", data))

	faceScore, err := engine.VerifyFace(ctx, "dave-restored", base, fullLandmarks(1.05), liveFrames())
	require.NoError(t, err)
	assert.True(t, faceScore.Accepted)
	assert.Equal(t, 1.0, faceScore.Details["identity_match"])

	_, err = engine.ExportTemplate("nobody", model.ModalityKeystroke)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestEngineImportRejectsMalformedTemplates(t *testing.T) {
	ctx := context.Background()
	engine, err := New()
	require.NoError(t, err)

	// A face template without vectors must never reach the store, where
	// a later verify would trip over it.
	empty := codec.MustMarshal(nil, templateEnvelope{
		Modality: model.ModalityFace,
		Face:     &template.Face{Schema: template.SchemaVersion},
	})
	require.Error(t, engine.ImportTemplate("mallory", empty))

	ragged := codec.MustMarshal(nil, templateEnvelope{
		Modality: model.ModalityFace,
		Face: &template.Face{
			Vectors: [][]float64{{1, 2}, {1}},
			Mean:    []float64{1, 2},
			Samples: 2,
			Schema:  template.SchemaVersion,
		},
	})
	require.Error(t, engine.ImportTemplate("mallory", ragged))

	noFeatures := codec.MustMarshal(nil, templateEnvelope{
		Modality:  model.ModalityKeystroke,
		Keystroke: &template.Keystroke{Schema: template.SchemaVersion},
	})
	require.Error(t, engine.ImportTemplate("mallory", noFeatures))

	// Nothing half-imported.
	assert.Equal(t, 0, engine.Store().Len())
	_, err = engine.VerifyFace(ctx, "mallory", make([]float64, 4), nil, liveFrames())
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestEngineOptimizeAndClassify(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Classifier.Trees = 20
	engine, err := New(WithConfig(cfg))
	require.NoError(t, err)

	rng := randutil.NewRNG(5)
	var vectors [][]float64
	var labels []int
	for c := 0; c < 2; c++ {
		center := float64(c) * 4
		for i := 0; i < 30; i++ {
			v := make([]float64, 10)
			v[0] = center + rng.NormFloat64()*0.2
			v[1] = center + rng.NormFloat64()*0.2
			for j := 2; j < 10; j++ {
				v[j] = rng.NormFloat64()
			}
			vectors = append(vectors, v)
			labels = append(labels, c)
		}
	}

	reduced, err := engine.OptimizeFeatures(ctx, vectors, labels)
	require.NoError(t, err)
	require.NotNil(t, reduced.PCA)
	assert.Less(t, len(reduced.Reduced[0]), len(vectors[0]))

	m, err := engine.TrainClassifier(ctx, vectors, labels)
	require.NoError(t, err)
	label, confidence := m.Predict(vectors[0])
	assert.Equal(t, labels[0], label)
	assert.Greater(t, confidence, 0.5)

	cv, err := engine.CrossValidate(ctx, vectors, labels, 3)
	require.NoError(t, err)
	assert.Greater(t, cv.Mean, 0.9)
}

func TestEngineComputeMetrics(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	trials := []perf.Trial{
		{Score: 0.9, Genuine: true},
		{Score: 0.85, Genuine: true},
		{Score: 0.8, Genuine: true},
		{Score: 0.2, Genuine: false},
		{Score: 0.15, Genuine: false},
		{Score: 0.1, Genuine: false},
	}
	report, err := engine.ComputeMetrics(trials)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.EER)

	far, frr, gar := report.At(0.5)
	assert.Equal(t, 0.0, far)
	assert.Equal(t, 0.0, frr)
	assert.Equal(t, 1.0, gar)
}

func TestEngineErrors(t *testing.T) {
	ctx := context.Background()
	engine, err := New()
	require.NoError(t, err)

	_, err = engine.VerifyKeystroke(ctx, "ghost", typistSession(randutil.NewRNG(6), 0.1, 0.05, 40))
	assert.ErrorIs(t, err, ErrNotEnrolled)

	rng := randutil.NewRNG(7)
	_, err = engine.EnrollKeystroke(ctx, "erin", typistSessions(rng, 0.1, 0.05, 2, 40))
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = engine.EnrollFace(ctx, "erin", faceVectors(rng, baseEmbedding(rng, 64), 4), nil)
	require.NoError(t, err)
	_, err = engine.VerifyFace(ctx, "erin", make([]float64, 32), nil, liveFrames())
	var dimErr *ErrDimensionMismatch
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 64, dimErr.Expected)
	assert.Equal(t, 32, dimErr.Actual)

	badCfg := config.Default()
	badCfg.Fusion.Method = "vote"
	_, err = New(WithConfig(badCfg))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestEngineMetricsCollection(t *testing.T) {
	ctx := context.Background()
	collector := &BasicMetricsCollector{}
	engine, err := New(WithMetricsCollector(collector), WithLogger(NoopLogger()))
	require.NoError(t, err)

	rng := randutil.NewRNG(8)
	_, err = engine.EnrollKeystroke(ctx, "frank", typistSessions(rng, 0.1, 0.05, 8, 40))
	require.NoError(t, err)

	_, err = engine.VerifyKeystroke(ctx, "frank", typistSession(rng, 0.1, 0.05, 40))
	require.NoError(t, err)
	_, err = engine.VerifyKeystroke(ctx, "ghost", typistSession(rng, 0.1, 0.05, 40))
	require.Error(t, err)

	stats := collector.GetStats()
	assert.Equal(t, int64(1), stats.EnrollCount)
	assert.Equal(t, int64(2), stats.VerifyCount)
	assert.Equal(t, int64(1), stats.VerifyErrors)
	assert.Equal(t, int64(1), stats.VerifyAccepted)
}
