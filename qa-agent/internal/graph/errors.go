package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrModelInvocation marks a failure of a language-model backed capability.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrTransport marks a network or search backend failure.
	ErrTransport = errors.New("transport failure")
	// ErrLogging marks a failed QueryLog write. It never aborts a run.
	ErrLogging = errors.New("query log write failed")
	// ErrConfiguration is returned by New for an incomplete capability set.
	ErrConfiguration = errors.New("invalid engine configuration")
)

// StageError carries the name of the stage whose capability failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf reports the failing stage of err, if err came from a run.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
