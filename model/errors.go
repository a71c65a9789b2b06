package model

import "fmt"

// InsufficientDataError indicates that too few events, sessions or samples
// were supplied for an operation. It is always recoverable: the caller
// should collect more data and retry.
type InsufficientDataError struct {
	Op   string // operation that failed, e.g. "keystroke extract"
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: need at least %d, got %d", e.Op, e.Need, e.Got)
}

// DimensionMismatchError indicates schema drift between an enrolled
// template and a live feature vector. The comparison is unrecoverable;
// the user must re-enroll.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
