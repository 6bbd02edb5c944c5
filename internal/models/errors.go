package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for reporting and retry policy.
type ErrorKind string

const (
	ErrKindConfig         ErrorKind = "config"
	ErrKindAuthFailure    ErrorKind = "auth_failure"
	ErrKindTransient      ErrorKind = "transient"
	ErrKindBadRequest     ErrorKind = "bad_request"
	ErrKindProtocol       ErrorKind = "protocol"
	ErrKindInvalidInput   ErrorKind = "invalid_input"
	ErrKindInternal       ErrorKind = "internal"
	ErrKindUnknownJobType ErrorKind = "unknown_job_type"
	ErrKindUpload         ErrorKind = "upload"
	ErrKindCancelled      ErrorKind = "cancelled"
)

// ResultStatus maps an error kind onto the status string the job API
// understands. UnknownJobType is reported as invalid_input: it signals
// config drift between worker and API, not a broken job.
func (k ErrorKind) ResultStatus() string {
	switch k {
	case ErrKindInvalidInput, ErrKindUnknownJobType, ErrKindBadRequest:
		return "invalid_input"
	case ErrKindTransient, ErrKindProtocol:
		return "transient"
	case ErrKindUpload:
		return "upload"
	case ErrKindCancelled:
		return "cancelled"
	default:
		return "internal"
	}
}

// JobError is a classified failure. Handlers wrap errors only where they can
// add context; otherwise errors bubble to the runtime which classifies them.
type JobError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *JobError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *JobError) Unwrap() error {
	return e.Cause
}

// NewJobError creates a classified error with an optional cause.
func NewJobError(kind ErrorKind, message string, cause error) *JobError {
	return &JobError{Kind: kind, Message: message, Cause: cause}
}

// Errorf creates a classified error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *JobError {
	return &JobError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ClassifyError extracts the kind from an error chain, defaulting to
// internal for anything unclassified.
func ClassifyError(err error) ErrorKind {
	var je *JobError
	if errors.As(err, &je) {
		return je.Kind
	}
	return ErrKindInternal
}
