// Package model defines the shared types exchanged between the biometric
// subsystems: modalities, per-modality scores and the core error types.
//
// It is a leaf package so that keystroke, face, fusion and the root façade
// can all depend on it without import cycles.
package model
