// Package errors provides structured error types for legalia.
// Every failure the consultation flow can produce is classified with a Kind
// so the UI can render a matching, human-readable message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConfig
	KindAuthentication
	KindPermission
	KindRateLimit
	KindUpstream
	KindNetwork
	KindMalformedResponse
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation error"
	case KindConfig:
		return "configuration error"
	case KindAuthentication:
		return "authentication error"
	case KindPermission:
		return "permission error"
	case KindRateLimit:
		return "rate limit error"
	case KindUpstream:
		return "upstream error"
	case KindNetwork:
		return "network error"
	case KindMalformedResponse:
		return "malformed response"
	case KindIO:
		return "I/O error"
	default:
		return "unknown error"
	}
}

// Status is an HTTP status code attached to an Error.
type Status int

// Error is the structured error type for legalia.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Status  Status // HTTP status, zero when not applicable
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - Status: the HTTP status code
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case Status:
			e.Status = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetStatus returns the HTTP status attached to an error, or 0.
func GetStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return int(e.Status)
	}
	return 0
}

// Message returns the innermost description of an Error without the
// operation prefix, or err.Error() for other errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		if e.Context != "" {
			return e.Context
		}
		return Message(e.Err)
	}
	return err.Error()
}

// Validation errors
func EmptyInput() error {
	return E(Op("session.Submit"), KindValidation, "message is empty")
}

func RequestInFlight() error {
	return E(Op("session.Submit"), KindValidation, "a consultation is already in progress")
}

// Registry errors
func ModeNotFound(id string) error {
	return E(Op("modes.Get"), KindNotFound, fmt.Sprintf("mode %q not found", id))
}

func ModesInvalid(reason string) error {
	return E(Op("modes.Parse"), KindConfig, reason)
}

// Config errors
func CredentialMissing() error {
	return E(Op("completion.Send"), KindConfig, "API credential is not configured")
}

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindConfig, reason)
}

// Completion errors
func Unauthorized(op Op) error {
	return E(op, KindAuthentication, Status(http.StatusUnauthorized), "credential invalid or expired")
}

func Forbidden(op Op) error {
	return E(op, KindPermission, Status(http.StatusForbidden), "no access to model or quota exceeded")
}

func RateLimited(op Op) error {
	return E(op, KindRateLimit, Status(http.StatusTooManyRequests), "too many requests, wait before retrying")
}

func UpstreamFailure(op Op, status int, statusText string) error {
	return E(op, KindUpstream, Status(status), fmt.Sprintf("upstream returned %d %s", status, statusText))
}

func TransportFailure(op Op, err error) error {
	return E(op, KindNetwork, "request failed", err)
}

func MalformedResponse(op Op, reason string) error {
	return E(op, KindMalformedResponse, reason)
}

// Attachment errors
func AttachmentFailed(path string, err error) error {
	return E(Op("consult.Attach"), KindIO, fmt.Sprintf("failed to read %s", path), err)
}
