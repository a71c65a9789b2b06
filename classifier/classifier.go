// Package classifier implements the trainable decision path: an
// RBF-kernel support vector machine and a bagged random forest, with
// stratified cross-validated evaluation.
//
// Classifiers are an alternative to direct distance matching when labeled
// impostor data exists. The set of kinds is a closed tagged variant:
// adding a classifier means a new Kind and a new case in Train, not
// open-ended registration.
package classifier

import (
	"context"
	"fmt"

	"github.com/verimatch/verimatch/model"
)

// Kind selects a classifier variant.
type Kind int

const (
	// KindSVM is a margin-based classifier with an RBF kernel, trained
	// via sequential minimal optimization.
	KindSVM Kind = iota

	// KindRandomForest is an ensemble of bagged decision trees.
	KindRandomForest
)

func (k Kind) String() string {
	switch k {
	case KindSVM:
		return "svm"
	case KindRandomForest:
		return "random_forest"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// UnknownKindError indicates a Kind outside the closed variant set.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown classifier kind: %d", int(e.Kind))
}

// Labels are binary: 0 for impostor, 1 for genuine.
const (
	LabelImpostor = 0
	LabelGenuine  = 1
)

// Model is a trained classifier. Predict returns the label and a
// confidence in [0,1] for that label. Models are read-only after
// training and safe for concurrent Predict calls.
type Model interface {
	Kind() Kind
	Predict(x []float64) (label int, confidence float64)
}

// Config carries the training hyperparameters. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// SVM.
	C         float64 // regularization
	Gamma     float64 // RBF width; 0 derives 1/n_features
	Tol       float64 // KKT violation tolerance
	MaxPasses int     // passes over the data without change before stopping

	// Random forest.
	Trees    int
	MaxDepth int
	MinLeaf  int

	// Seed drives every stochastic choice, making training reproducible.
	Seed int64

	// Workers bounds the parallel fan-out for tree building and
	// cross-validation folds. 0 means one goroutine per task.
	Workers int
}

// DefaultConfig returns the default hyperparameters: C=1 RBF SVM with
// auto gamma, 100-tree forest.
func DefaultConfig() Config {
	return Config{
		C:         1.0,
		Tol:       1e-3,
		MaxPasses: 5,
		Trees:     100,
		MaxDepth:  10,
		MinLeaf:   1,
		Seed:      42,
	}
}

// Train fits a model of the given kind on labeled feature vectors.
// Labels must be LabelImpostor or LabelGenuine and parallel to vectors;
// both classes must be present.
func Train(ctx context.Context, kind Kind, vectors [][]float64, labels []int, cfg Config) (Model, error) {
	if err := validate(vectors, labels); err != nil {
		return nil, err
	}

	switch kind {
	case KindSVM:
		return trainSVM(ctx, vectors, labels, cfg)
	case KindRandomForest:
		return trainForest(ctx, vectors, labels, cfg)
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
}

func validate(vectors [][]float64, labels []int) error {
	if len(vectors) < 2 {
		return &model.InsufficientDataError{Op: "classifier train", Need: 2, Got: len(vectors)}
	}
	if len(vectors) != len(labels) {
		return fmt.Errorf("classifier train: %d vectors but %d labels", len(vectors), len(labels))
	}
	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}
	var counts [2]int
	for _, y := range labels {
		if y != LabelImpostor && y != LabelGenuine {
			return fmt.Errorf("classifier train: label %d outside {0,1}", y)
		}
		counts[y]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return &model.InsufficientDataError{Op: "classifier train: need both classes", Need: 1, Got: 0}
	}
	return nil
}
