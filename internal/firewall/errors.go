package firewall

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories a caller can branch on
// without parsing error strings.
type ErrorKind int

const (
	ErrInputInvalid ErrorKind = iota
	ErrPolicyNotFound
	ErrPolicyMalformed
	ErrPatternLoadError
	ErrDetectorDegraded
	ErrDeadlineExceeded
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInputInvalid:
		return "input_invalid"
	case ErrPolicyNotFound:
		return "policy_not_found"
	case ErrPolicyMalformed:
		return "policy_malformed"
	case ErrPatternLoadError:
		return "pattern_load_error"
	case ErrDetectorDegraded:
		return "detector_degraded"
	case ErrDeadlineExceeded:
		return "deadline_exceeded"
	case ErrInternal:
		return "internal"
	default:
		return "unspecified"
	}
}

// Error is the typed error carried through the pipeline. Kind lets callers
// (notably internal/httpapi) map failures to status codes without string
// matching; Err carries the wrapped underlying cause, if any.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error, wrapping cause (which may be nil).
func NewError(op string, kind ErrorKind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// KindOf extracts the ErrorKind from err, defaulting to ErrInternal if err
// is not (or does not wrap) a *firewall.Error.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ErrInternal
}

// IsKind reports whether err is, or wraps, a *firewall.Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == k
	}
	return false
}
