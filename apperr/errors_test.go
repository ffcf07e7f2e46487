package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWithMethodsClone(t *testing.T) {
	base := ErrValidation
	derived := base.WithMessage("custom").WithDetails(map[string]interface{}{"field": "name"})

	if derived == base {
		t.Fatal("With methods must not mutate the shared error")
	}
	if base.Message == "custom" || base.Details != nil {
		t.Error("base error was mutated")
	}
	if derived.Message != "custom" {
		t.Errorf("Message = %q, want %q", derived.Message, "custom")
	}
	if derived.Code != base.Code {
		t.Errorf("Code = %q, want %q", derived.Code, base.Code)
	}
}

func TestIsError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrNotFound.WithMessage("no such playlist"))

	if !IsError(wrapped, ErrNotFound) {
		t.Error("wrapped not-found should match ErrNotFound")
	}
	if IsError(wrapped, ErrForbidden) {
		t.Error("not-found must not match forbidden")
	}
	if IsError(errors.New("plain"), ErrNotFound) {
		t.Error("plain error must not match")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrAuthRequired, http.StatusForbidden},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrAdminRequired, http.StatusUnauthorized},
		{ErrDuplicateUser, http.StatusConflict},
		{ErrDuplicateReview, http.StatusForbidden},
		{ErrDuplicateSong, http.StatusForbidden},
		{ErrBadRange, http.StatusBadRequest},
		{ErrMultiRange, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetHTTPStatus(tt.err); got != tt.want {
			t.Errorf("GetHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := ErrInternal.WithError(cause)

	if !errors.Is(err, cause) {
		t.Error("WithError must keep the cause reachable via errors.Is")
	}
}
