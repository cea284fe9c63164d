package services

import "errors"

// FailureKind classifies a service failure so the HTTP layer can map it to
// a status code without inspecting error strings.
type FailureKind string

const (
	FailureValidation        FailureKind = "validation"
	FailureAuth              FailureKind = "auth"
	FailureNotFound          FailureKind = "not_found"
	FailureEmbedding         FailureKind = "embedding"
	FailureRetrieval         FailureKind = "retrieval"
	FailureGeneration        FailureKind = "generation"
	FailureMalformedResponse FailureKind = "malformed_response"
)

// Failure is the service-layer error type. External-provider causes are
// wrapped, never surfaced verbatim to clients.
type Failure struct {
	Kind    FailureKind
	Op      string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	msg := f.Message
	if msg == "" {
		msg = string(f.Kind) + " failure"
	}
	if f.Op != "" {
		msg = f.Op + ": " + msg
	}
	if f.Err != nil {
		return msg + ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure creates a service failure of the given kind.
func NewFailure(kind FailureKind, op, message string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Message: message, Err: err}
}

// FailureKindOf extracts the failure kind from err, or "" when err carries
// no service failure.
func FailureKindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// IsFailure reports whether err is a service failure of the given kind.
func IsFailure(err error, kind FailureKind) bool {
	return FailureKindOf(err) == kind
}

// UserMessage returns the client-safe description of err: the failure
// message without the wrapped provider cause.
func UserMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return "internal error"
}
