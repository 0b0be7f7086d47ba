package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call. The set is closed: every error returned by
// Client maps to exactly one Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindUnauthorized
	KindServerValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindServerValidation:
		return "SERVER_VALIDATION"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrNetwork matches transport failures and timeouts.
	ErrNetwork = errors.New("api: backend unreachable")

	// ErrUnauthorized matches 401 responses.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrServerValidation matches 4xx responses other than 401.
	ErrServerValidation = errors.New("api: request rejected")

	// ErrUnknown matches 5xx responses and undecodable payloads.
	ErrUnknown = errors.New("api: unexpected response")
)

// Error is returned for every failed call.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // server-supplied message, if any
	Code    string // server-supplied code, if any
	Method  string
	Path    string
	Err     error // underlying transport/decoding error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match on the kind sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrServerValidation:
		return e.Kind == KindServerValidation
	case ErrUnknown:
		return e.Kind == KindUnknown
	}
	return false
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// Message returns the server-supplied message carried by err, or fallback
// when there is none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// kindForStatus maps a non-2xx status to its Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status >= 400 && status < 500:
		return KindServerValidation
	default:
		return KindUnknown
	}
}
