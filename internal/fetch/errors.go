package fetch

import (
	"errors"
	"fmt"
)

// ErrOperationFailed matches every failure of the fetch-and-persist routine.
var ErrOperationFailed = errors.New("operation failed")

// ErrMissingKey is returned when no access key was resolved.
var ErrMissingKey = errors.New("missing API key (set --api-key, MODELFETCH_API_KEY or endpoint.key_from_env)")

// Stage names the step that failed. It is only used for logs and history.
type Stage string

const (
	StageRequest Stage = "request"
	StageFetch   Stage = "fetch"
	StageDecode  Stage = "decode"
	StageParse   Stage = "parse"
	StageWrite   Stage = "write"
)

// OperationError is the single failure category. Its message is the
// underlying description; the stage is carried alongside.
type OperationError struct {
	Stage Stage
	Err   error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return ErrOperationFailed.Error()
	}
	return e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

// Is reports ErrOperationFailed for any OperationError.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

func fail(stage Stage, err error) error {
	return &OperationError{Stage: stage, Err: err}
}

func failf(stage Stage, format string, args ...any) error {
	return fail(stage, fmt.Errorf(format, args...))
}

// StageOf returns the failing stage of err, or "" when err is not an OperationError.
func StageOf(err error) Stage {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Stage
	}
	return ""
}
