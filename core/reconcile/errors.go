package reconcile

import (
	"errors"
	"fmt"

	"netbox-reconciler/core/netbox"
)

// ErrorCode classifies a failure for callers.
type ErrorCode string

const (
	CodeConfiguration      ErrorCode = "configuration_error"
	CodeReferenceNotFound  ErrorCode = "reference_not_found"
	CodeAmbiguousReference ErrorCode = "ambiguous_reference"
	CodeTransport          ErrorCode = "transport_error"
	CodeInternal           ErrorCode = "internal_error"
)

// ConfigurationError reports an invalid request. No remote call is made.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ReferenceNotFoundError reports a reference field naming an object that does not exist.
type ReferenceNotFoundError struct {
	Field string
	Kind  string
	Value string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("could not resolve %s %q: no %s found", e.Field, e.Value, e.Kind)
}

// AmbiguousReferenceError reports a reference field matching several objects.
type AmbiguousReferenceError struct {
	Field string
	Kind  string
	Value string
	Count int
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("could not resolve %s %q: %d %s objects match", e.Field, e.Value, e.Count, e.Kind)
}

// DuplicateObjectError reports several remote objects sharing the natural key of the target.
// It is a remote inconsistency and is classified with transport failures.
type DuplicateObjectError struct {
	Kind  string
	Key   string
	Value string
	Count int
}

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("%d %s objects found with %s %q", e.Count, e.Kind, e.Key, e.Value)
}

// Failure is the structured error attached to a failed Outcome.
type Failure struct {
	// Stage is where the state machine failed.
	Stage Stage `json:"stage"`

	// Code classifies the failure.
	Code ErrorCode `json:"code"`

	// Message is the human readable error.
	Message string `json:"message"`

	// StatusCode is the HTTP status of a transport failure (0 for connection failures).
	StatusCode int `json:"status_code,omitempty"`

	// Body is the response body of a transport failure.
	Body string `json:"body,omitempty"`

	// MutationAttempted is true when a create/update/delete was sent and its effect is unknown.
	MutationAttempted bool `json:"mutation_attempted"`

	// Err is the underlying error.
	Err error `json:"-"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed: %s", f.Stage, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// newFailure classifies err and records the stage it happened in.
func newFailure(stage Stage, err error) *Failure {
	var existing *Failure
	if errors.As(err, &existing) {
		return existing
	}

	f := &Failure{
		Stage:             stage,
		Message:           err.Error(),
		MutationAttempted: stage == StageApplying,
		Err:               err,
	}

	var (
		cfgErr *ConfigurationError
		nfErr  *ReferenceNotFoundError
		ambErr *AmbiguousReferenceError
		dupErr *DuplicateObjectError
	)
	switch {
	case errors.As(err, &cfgErr):
		f.Code = CodeConfiguration
	case errors.As(err, &nfErr):
		f.Code = CodeReferenceNotFound
	case errors.As(err, &ambErr):
		f.Code = CodeAmbiguousReference
	case errors.As(err, &dupErr):
		f.Code = CodeTransport
	case netbox.IsTransport(err):
		f.Code = CodeTransport
		f.StatusCode, f.Body = netbox.StatusOf(err)
	default:
		f.Code = CodeInternal
	}
	return f
}
