package verimatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verimatch/verimatch/classifier"
	"github.com/verimatch/verimatch/codec"
	"github.com/verimatch/verimatch/config"
	"github.com/verimatch/verimatch/face"
	"github.com/verimatch/verimatch/fusion"
	"github.com/verimatch/verimatch/keystroke"
	"github.com/verimatch/verimatch/model"
	"github.com/verimatch/verimatch/optimize"
	"github.com/verimatch/verimatch/perf"
	"github.com/verimatch/verimatch/template"
)

// Engine is the multi-modal verification engine. It is safe for
// concurrent use: matchers are read-only after construction and the
// template store serializes access internally.
type Engine struct {
	cfg     *config.Config
	codec   codec.Codec
	store   *template.Store
	metrics MetricsCollector
	logger  *Logger

	keystroke *keystroke.Matcher
	face      *face.Matcher
}

// New creates an Engine. Without options it uses config.Default(), a
// fresh in-memory template store, no logging and no metrics.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)

	cfg := o.cfg
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := o.codec
	if c == nil {
		c, _ = codec.ByName(cfg.CodecName) // name checked by Validate
	}

	store := o.store
	if store == nil {
		store = template.NewStore()
	}

	faceMatcher := face.NewMatcher(cfg.Face.Tolerance, cfg.Face.LivenessThreshold)
	faceMatcher.DistanceNormalizer = cfg.Face.DistanceNormalizer
	faceMatcher.RequireLiveness = cfg.Face.RequireLiveness

	return &Engine{
		cfg:       cfg,
		codec:     c,
		store:     store,
		metrics:   o.metricsCollector,
		logger:    o.logger,
		keystroke: keystroke.NewMatcher(cfg.Keystroke.Threshold, cfg.Keystroke.MinEvents),
		face:      faceMatcher,
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config { return e.cfg }

// Store returns the template store backing the engine.
func (e *Engine) Store() *template.Store { return e.store }

// ExtractKeystrokeFeatures converts a raw key event session into the
// fixed-length timing/pressure/rhythm feature vector.
func (e *Engine) ExtractKeystrokeFeatures(session keystroke.Session) ([]float64, error) {
	features, err := keystroke.Extract(session)
	return features, translateError(err)
}

// ExtractFaceFeatures combines a face embedding with geometric landmark
// features into a single vector.
func (e *Engine) ExtractFaceFeatures(embedding []float64, lm face.Landmarks) []float64 {
	return face.Extract(embedding, lm)
}

// EnrollKeystroke builds a keystroke template from enrollment sessions
// and stores it for the user, replacing any previous template.
func (e *Engine) EnrollKeystroke(ctx context.Context, userID string, sessions []keystroke.Session) (*template.Keystroke, error) {
	start := time.Now()
	tmpl, err := keystroke.Enroll(sessions, e.cfg.Keystroke.MinSessions)
	err = translateError(err)

	e.metrics.RecordEnroll(model.ModalityKeystroke, time.Since(start), err)
	e.logger.LogEnroll(ctx, userID, model.ModalityKeystroke, len(sessions), err)
	if err != nil {
		return nil, err
	}
	e.store.Put(userID, tmpl)
	return tmpl, nil
}

// EnrollFace builds a face template from enrollment embeddings, with
// optional per-sample landmarks appended as geometric features, and
// stores it for the user, replacing any previous template. landmarks may
// be nil; when given it must match embeddings in length. Identity
// matching compares embeddings only, so landmark geometry never shifts
// the distance against the tolerance.
func (e *Engine) EnrollFace(ctx context.Context, userID string, embeddings [][]float64, landmarks []face.Landmarks) (*template.Face, error) {
	start := time.Now()
	tmpl, err := e.enrollFace(embeddings, landmarks)
	err = translateError(err)

	e.metrics.RecordEnroll(model.ModalityFace, time.Since(start), err)
	e.logger.LogEnroll(ctx, userID, model.ModalityFace, len(embeddings), err)
	if err != nil {
		return nil, err
	}
	e.store.Put(userID, tmpl)
	return tmpl, nil
}

func (e *Engine) enrollFace(embeddings [][]float64, landmarks []face.Landmarks) (*template.Face, error) {
	if len(landmarks) > 0 && len(landmarks) != len(embeddings) {
		return nil, &model.DimensionMismatchError{Expected: len(embeddings), Actual: len(landmarks)}
	}
	embeddingDim := 0
	if len(embeddings) > 0 {
		embeddingDim = len(embeddings[0])
	}
	vectors := make([][]float64, len(embeddings))
	for i, emb := range embeddings {
		var lm face.Landmarks
		if i < len(landmarks) {
			lm = landmarks[i]
		}
		vectors[i] = face.Extract(emb, lm)
	}
	return face.Enroll(vectors, embeddingDim, face.MinEnrollSamples)
}

// VerifyKeystroke scores a live session against the user's enrolled
// keystroke template.
func (e *Engine) VerifyKeystroke(ctx context.Context, userID string, session keystroke.Session) (model.ModalityScore, error) {
	start := time.Now()
	score, err := e.verifyKeystroke(userID, session)

	e.metrics.RecordVerify(model.ModalityKeystroke, score.Accepted, time.Since(start), err)
	e.logger.LogVerify(ctx, userID, score, err)
	return score, err
}

func (e *Engine) verifyKeystroke(userID string, session keystroke.Session) (model.ModalityScore, error) {
	t, ok := e.store.Get(userID, model.ModalityKeystroke)
	if !ok {
		return model.ModalityScore{}, fmt.Errorf("%w: %s/%s", ErrNotEnrolled, userID, model.ModalityKeystroke)
	}
	tmpl, ok := t.(*template.Keystroke)
	if !ok {
		return model.ModalityScore{}, fmt.Errorf("%w: %s holds a foreign template", ErrNotEnrolled, userID)
	}
	score, err := e.keystroke.Verify(tmpl, session)
	return score, translateError(err)
}

// VerifyFace scores a live embedding and its landmarks, plus optional
// liveness frames, against the user's enrolled face template.
func (e *Engine) VerifyFace(ctx context.Context, userID string, embedding []float64, lm face.Landmarks, frames []face.Frame) (model.ModalityScore, error) {
	start := time.Now()
	score, err := e.verifyFace(userID, embedding, lm, frames)

	e.metrics.RecordVerify(model.ModalityFace, score.Accepted, time.Since(start), err)
	e.logger.LogVerify(ctx, userID, score, err)
	return score, err
}

func (e *Engine) verifyFace(userID string, embedding []float64, lm face.Landmarks, frames []face.Frame) (model.ModalityScore, error) {
	t, ok := e.store.Get(userID, model.ModalityFace)
	if !ok {
		return model.ModalityScore{}, fmt.Errorf("%w: %s/%s", ErrNotEnrolled, userID, model.ModalityFace)
	}
	tmpl, ok := t.(*template.Face)
	if !ok {
		return model.ModalityScore{}, fmt.Errorf("%w: %s holds a foreign template", ErrNotEnrolled, userID)
	}
	if len(embedding) != tmpl.EmbeddingDim {
		return model.ModalityScore{}, translateError(&model.DimensionMismatchError{
			Expected: tmpl.EmbeddingDim,
			Actual:   len(embedding),
		})
	}
	score, err := e.face.Verify(tmpl, face.Extract(embedding, lm), frames)
	return score, translateError(err)
}

// Fuse combines per-modality scores under the configured fusion method,
// weights and threshold.
func (e *Engine) Fuse(ctx context.Context, scores ...model.ModalityScore) (fusion.Result, error) {
	start := time.Now()
	result, err := fusion.Fuse(scores, fusion.Method(e.cfg.Fusion.Method), e.fusionWeights(), e.cfg.Fusion.Threshold)
	err = translateError(err)

	e.metrics.RecordFuse(time.Since(start), err)
	e.logger.LogFuse(ctx, len(scores), result.FusedScore, result.Authenticated, err)
	return result, err
}

// FuseDecisions combines per-modality accept/reject decisions under the
// given decision rule.
func (e *Engine) FuseDecisions(method fusion.DecisionMethod, decisions ...bool) (bool, error) {
	ok, err := fusion.FuseDecisions(decisions, method)
	return ok, translateError(err)
}

// Authenticate runs both modalities end to end and fuses the outcome:
// keystroke verification on the session, face verification on the live
// embedding, landmarks and frames, then score fusion under the
// configured policy.
func (e *Engine) Authenticate(ctx context.Context, userID string, session keystroke.Session, embedding []float64, lm face.Landmarks, frames []face.Frame) (fusion.Result, error) {
	ksScore, err := e.VerifyKeystroke(ctx, userID, session)
	if err != nil {
		return fusion.Result{}, err
	}
	faceScore, err := e.VerifyFace(ctx, userID, embedding, lm, frames)
	if err != nil {
		return fusion.Result{}, err
	}
	return e.Fuse(ctx, ksScore, faceScore)
}

// OptimizeFeatures runs the configured feature optimization method over
// a labeled sample matrix.
func (e *Engine) OptimizeFeatures(ctx context.Context, vectors [][]float64, labels []int) (*optimize.Result, error) {
	start := time.Now()
	method := optimize.Method(e.cfg.Optimizer.Method)
	result, err := optimize.Run(ctx, method, vectors, labels, e.optimizeConfig())
	err = translateError(err)

	e.metrics.RecordOptimize(string(method), time.Since(start), err)
	outDim := 0
	inDim := 0
	if len(vectors) > 0 {
		inDim = len(vectors[0])
	}
	if result != nil && len(result.Reduced) > 0 {
		outDim = len(result.Reduced[0])
	}
	e.logger.LogOptimize(ctx, string(method), inDim, outDim, err)
	return result, err
}

// TrainClassifier fits the configured classifier on labeled feature
// vectors.
func (e *Engine) TrainClassifier(ctx context.Context, vectors [][]float64, labels []int) (classifier.Model, error) {
	start := time.Now()
	kind, err := e.classifierKind()
	if err != nil {
		return nil, err
	}
	m, err := classifier.Train(ctx, kind, vectors, labels, e.classifierConfig())
	err = translateError(err)

	e.metrics.RecordTrain(kind.String(), time.Since(start), err)
	e.logger.LogTrain(ctx, kind.String(), len(vectors), err)
	return m, err
}

// CrossValidate evaluates the configured classifier with stratified
// k-fold cross-validation and returns per-fold accuracies.
func (e *Engine) CrossValidate(ctx context.Context, vectors [][]float64, labels []int, folds int) (classifier.CVResult, error) {
	kind, err := e.classifierKind()
	if err != nil {
		return classifier.CVResult{}, err
	}
	result, err := classifier.CrossValidate(ctx, kind, vectors, labels, folds, e.classifierConfig())
	return result, translateError(err)
}

// ComputeMetrics sweeps acceptance thresholds over labeled trials and
// reports FAR, FRR, GAR and the equal error rate.
func (e *Engine) ComputeMetrics(trials []perf.Trial) (*perf.Report, error) {
	report, err := perf.Compute(trials, nil)
	return report, translateError(err)
}

// templateEnvelope is the self-describing export format: exactly one of
// the template fields is set.
type templateEnvelope struct {
	Modality  model.Modality      `json:"modality"`
	Keystroke *template.Keystroke `json:"keystroke,omitempty"`
	Face      *template.Face      `json:"face,omitempty"`
}

// ExportTemplate serializes the user's template for the given modality
// with the engine's codec.
func (e *Engine) ExportTemplate(userID string, modality model.Modality) ([]byte, error) {
	t, ok := e.store.Get(userID, modality)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotEnrolled, userID, modality)
	}

	env := templateEnvelope{Modality: modality}
	switch tmpl := t.(type) {
	case *template.Keystroke:
		env.Keystroke = tmpl
	case *template.Face:
		env.Face = tmpl
	default:
		return nil, fmt.Errorf("export template: unsupported template type %T", t)
	}
	return e.codec.Marshal(env)
}

// ImportTemplate decodes a template previously produced by
// ExportTemplate and stores it for the user.
func (e *Engine) ImportTemplate(userID string, data []byte) error {
	var env templateEnvelope
	if err := e.codec.Unmarshal(data, &env); err != nil {
		return err
	}
	switch {
	case env.Keystroke != nil:
		if len(env.Keystroke.Mean) == 0 {
			return errors.New("import template: keystroke template without features")
		}
		e.store.Put(userID, env.Keystroke)
	case env.Face != nil:
		if len(env.Face.Vectors) == 0 || len(env.Face.Mean) == 0 {
			return errors.New("import template: face template without vectors")
		}
		for _, v := range env.Face.Vectors {
			if len(v) != len(env.Face.Mean) {
				return &model.DimensionMismatchError{Expected: len(env.Face.Mean), Actual: len(v)}
			}
		}
		if env.Face.EmbeddingDim <= 0 || env.Face.EmbeddingDim > len(env.Face.Mean) {
			env.Face.EmbeddingDim = len(env.Face.Mean)
		}
		e.store.Put(userID, env.Face)
	default:
		return errors.New("import template: empty envelope")
	}
	return nil
}

func (e *Engine) fusionWeights() map[model.Modality]float64 {
	if len(e.cfg.Fusion.Weights) == 0 {
		return nil
	}
	weights := make(map[model.Modality]float64, len(e.cfg.Fusion.Weights))
	for name, w := range e.cfg.Fusion.Weights {
		weights[model.Modality(name)] = w
	}
	return weights
}

func (e *Engine) optimizeConfig() optimize.Config {
	cfg := optimize.DefaultConfig()
	o := e.cfg.Optimizer
	if o.VarianceThreshold > 0 {
		cfg.VarianceThreshold = o.VarianceThreshold
	}
	cfg.MaxComponents = o.MaxComponents
	if o.Population > 0 {
		cfg.Population = o.Population
	}
	if o.Generations > 0 {
		cfg.Generations = o.Generations
	}
	if o.Particles > 0 {
		cfg.Particles = o.Particles
	}
	if o.Iterations > 0 {
		cfg.Iterations = o.Iterations
	}
	cfg.Seed = o.Seed
	cfg.Workers = o.Workers
	return cfg
}

func (e *Engine) classifierKind() (classifier.Kind, error) {
	switch e.cfg.Classifier.Kind {
	case "svm":
		return classifier.KindSVM, nil
	case "random_forest":
		return classifier.KindRandomForest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownClassifier, e.cfg.Classifier.Kind)
	}
}

func (e *Engine) classifierConfig() classifier.Config {
	cfg := classifier.DefaultConfig()
	c := e.cfg.Classifier
	if c.C > 0 {
		cfg.C = c.C
	}
	if c.Gamma > 0 {
		cfg.Gamma = c.Gamma
	}
	if c.Trees > 0 {
		cfg.Trees = c.Trees
	}
	if c.MaxDepth > 0 {
		cfg.MaxDepth = c.MaxDepth
	}
	cfg.Seed = c.Seed
	cfg.Workers = c.Workers
	return cfg
}
