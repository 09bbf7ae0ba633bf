package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "typed error",
			err:  New(KindConflict, "email already registered"),
			want: KindConflict,
		},
		{
			name: "wrapped typed error",
			err:  fmt.Errorf("signup: %w", New(KindConflict, "email already registered")),
			want: KindConflict,
		},
		{
			name: "flattened across request-reply",
			err:  errors.New("create-schedule service call failed: forbidden: schedule belongs to another user"),
			want: KindForbidden,
		},
		{
			name: "unclassified",
			err:  errors.New("disk full"),
			want: KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInvalidTemporalRange, http.StatusNotAcceptable},
		{KindForbidden, http.StatusNotAcceptable},
		{KindDeleteFailed, http.StatusNotAcceptable},
		{KindUpstream, http.StatusBadGateway},
		{KindInternal, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := Status(tt.kind); got != tt.want {
				t.Errorf("Status(%q) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	remote := errors.New("get-schedule service call failed: not_found: schedule not found")
	if got := Message(remote); got != "schedule not found" {
		t.Errorf("Message() = %q, want %q", got, "schedule not found")
	}

	wrapped := Wrap(KindUpstream, "token exchange failed", errors.New("connection refused"))
	if got := Message(wrapped); got != "token exchange failed" {
		t.Errorf("Message() = %q, want %q", got, "token exchange failed")
	}

	if got := Message(errors.New("boom")); got != "an internal error occurred" {
		t.Errorf("Message() = %q, want generic message", got)
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KindNotFound, "user not found"))
	if !errors.Is(err, New(KindNotFound, "")) {
		t.Error("errors.Is() should match on kind")
	}
	if errors.Is(err, New(KindConflict, "")) {
		t.Error("errors.Is() matched a different kind")
	}
	if !Is(err, KindNotFound) {
		t.Error("Is() = false, want true")
	}
}
