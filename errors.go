package verimatch

import (
	"errors"
	"fmt"

	"github.com/verimatch/verimatch/classifier"
	"github.com/verimatch/verimatch/fusion"
	"github.com/verimatch/verimatch/keystroke"
	"github.com/verimatch/verimatch/model"
	"github.com/verimatch/verimatch/optimize"
)

var (
	// ErrNotEnrolled is returned when verification targets a user with no
	// stored template for the requested modality.
	ErrNotEnrolled = errors.New("user not enrolled")

	// ErrInsufficientData is returned when too few events, sessions or
	// samples were supplied. Collect more data and retry.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedSession is returned for keystroke sessions with
	// inconsistent timestamps.
	ErrMalformedSession = errors.New("malformed session")

	// ErrNoModalities is returned when fusion receives no scores.
	ErrNoModalities = errors.New("no modalities")

	// ErrUnknownMethod is returned for unrecognized fusion or
	// optimization method names.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrUnknownClassifier is returned for unrecognized classifier kinds.
	ErrUnknownClassifier = errors.New("unknown classifier")
)

// ErrDimensionMismatch indicates schema drift between an enrolled
// template and a live feature vector. The user must re-enroll.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ins *model.InsufficientDataError
	if errors.As(err, &ins) {
		return fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}
	var dim *model.DimensionMismatchError
	if errors.As(err, &dim) {
		return &ErrDimensionMismatch{Expected: dim.Expected, Actual: dim.Actual, cause: err}
	}
	if errors.Is(err, keystroke.ErrMalformedSession) {
		return fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}
	if errors.Is(err, fusion.ErrNoModalities) {
		return fmt.Errorf("%w: %w", ErrNoModalities, err)
	}
	var fm *fusion.UnknownMethodError
	if errors.As(err, &fm) {
		return fmt.Errorf("%w: %w", ErrUnknownMethod, err)
	}
	var om *optimize.UnknownMethodError
	if errors.As(err, &om) {
		return fmt.Errorf("%w: %w", ErrUnknownMethod, err)
	}
	var ck *classifier.UnknownKindError
	if errors.As(err, &ck) {
		return fmt.Errorf("%w: %w", ErrUnknownClassifier, err)
	}

	return err
}
