// Package verimatch provides an embeddable multi-modal biometric
// verification engine for Go.
//
// Verimatch combines keystroke-dynamics and face verification with
// score-level fusion, feature-space optimization and a trainable
// classifier bank:
//
//   - Keystroke dynamics: dwell/flight/pressure/rhythm features with
//     normalized-distance matching against per-user templates
//   - Face verification: embedding match plus blink/texture liveness
//   - Fusion: weighted-sum, product, mean, max, min score fusion and
//     and/or/majority decision fusion
//   - Optimization: PCA reduction plus GA and PSO feature selection
//   - Classifiers: RBF-kernel SVM and bagged random forest with
//     stratified cross-validation
//   - Evaluation: FAR/FRR threshold sweeps, EER and GAR reporting
//
// # Quick Start
//
//	ctx := context.Background()
//	engine, err := verimatch.New()
//	if err != nil {
//	    panic(err)
//	}
//
//	_, err = engine.EnrollKeystroke(ctx, "alice", enrollSessions)
//	score, err := engine.VerifyKeystroke(ctx, "alice", probeSession)
//
//	faceScore, err := engine.VerifyFace(ctx, "alice", embedding, landmarks, frames)
//	verdict, err := engine.Fuse(ctx, score, faceScore)
//	fmt.Println(verdict.Authenticated, verdict.FusedScore)
//
// Configuration layers defaults, YAML and environment variables; see
// the config package. Templates export and import through pluggable
// codecs (JSON, optionally zstd- or lz4-compressed); see the codec
// package.
package verimatch
