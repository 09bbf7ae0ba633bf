// Package errs defines the error taxonomy shared by every module.
//
// The kind is part of the error string ("<kind>: <message>") so it survives
// mono request-reply calls, where only the message crosses the boundary.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindInvalidCredentials   Kind = "invalid_credentials"
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindInvalidTemporalRange Kind = "invalid_temporal_range"
	KindForbidden            Kind = "forbidden"
	KindDeleteFailed         Kind = "delete_failed"
	KindPreconditionFailed   Kind = "precondition_failed"
	KindUpstream             Kind = "upstream_error"
	KindBadRequest           Kind = "bad_request"
	KindInternal             Kind = "internal"
)

// kinds is ordered so that no kind is a substring of an earlier one.
var kinds = []Kind{
	KindUnauthenticated,
	KindInvalidCredentials,
	KindNotFound,
	KindConflict,
	KindInvalidTemporalRange,
	KindForbidden,
	KindDeleteFailed,
	KindPreconditionFailed,
	KindUpstream,
	KindBadRequest,
}

var statuses = map[Kind]int{
	KindUnauthenticated:      http.StatusUnauthorized,
	KindInvalidCredentials:   http.StatusForbidden,
	KindNotFound:             http.StatusNotFound,
	KindConflict:             http.StatusConflict,
	KindInvalidTemporalRange: http.StatusNotAcceptable,
	KindForbidden:            http.StatusNotAcceptable,
	KindDeleteFailed:         http.StatusNotAcceptable,
	KindPreconditionFailed:   http.StatusPreconditionFailed,
	KindUpstream:             http.StatusBadGateway,
	KindBadRequest:           http.StatusBadRequest,
	KindInternal:             http.StatusInternalServerError,
}

// Error is a classified error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err, keeping it as the cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the kind of err. Errors that lost their type crossing a
// request-reply boundary are recovered from the message text.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	msg := err.Error()
	for _, k := range kinds {
		if strings.Contains(msg, string(k)+": ") {
			return k
		}
	}
	return KindInternal
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	if s, ok := statuses[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Message extracts the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	msg := err.Error()
	kind := KindOf(err)
	if kind == KindInternal {
		return "an internal error occurred"
	}
	// "<call context>: <kind>: <message>[: cause]"
	marker := string(kind) + ": "
	idx := strings.Index(msg, marker)
	rest := msg[idx+len(marker):]
	if i := strings.Index(rest, ": "); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
