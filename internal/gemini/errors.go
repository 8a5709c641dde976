package gemini

import (
	"errors"
	"fmt"
)

// FailureKind classifies an analysis failure for the caller. Transient means
// the retry budget was exhausted on conditions that were worth retrying;
// Permanent means retrying could not have helped.
type FailureKind string

const (
	FailureTransient FailureKind = "transient"
	FailurePermanent FailureKind = "permanent"
)

// AnalysisError is the typed failure returned by the analysis client. It is
// the only error type that crosses the client boundary.
type AnalysisError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis %s failure: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("analysis %s failure: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func transientError(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: FailureTransient, Message: message, Err: err}
}

func permanentError(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: FailurePermanent, Message: message, Err: err}
}

// IsTransient reports whether err is an AnalysisError of the transient kind.
func IsTransient(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Kind == FailureTransient
}
