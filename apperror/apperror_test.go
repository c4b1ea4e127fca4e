package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("title is required", nil), http.StatusBadRequest},
		{"conflict", NewConflictError("username already exists", nil), http.StatusConflict},
		{"auth", NewAuthError("invalid credentials", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("task belongs to another user", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("task not found", nil), http.StatusNotFound},
		{"database", NewDatabaseError("insert failed", errors.New("boom")), http.StatusInternalServerError},
		{"unknown", NewAppError(UnknownError, "weird", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorIncludesWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewDatabaseError("failed to list tasks", inner)

	if got := err.Error(); got != "failed to list tasks: connection refused" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to find the wrapped error")
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	// Predicates must work even when the AppError is buried in a %w chain.
	wrapped := fmt.Errorf("handler: %w", NewForbiddenError("not yours", nil))

	if !IsForbidden(wrapped) {
		t.Fatal("IsForbidden should match a wrapped ForbiddenError")
	}
	if IsNotFound(wrapped) {
		t.Fatal("IsNotFound should not match a ForbiddenError")
	}
}

func TestFromError(t *testing.T) {
	if _, ok := FromError(nil); ok {
		t.Fatal("FromError(nil) should be false")
	}
	if _, ok := FromError(errors.New("plain")); ok {
		t.Fatal("FromError should be false for non-AppError")
	}
	appErr, ok := FromError(NewNotFoundError("gone", nil))
	if !ok || appErr.Type != NotFoundError {
		t.Fatalf("FromError = (%v, %v), want NotFoundError", appErr, ok)
	}
}

func TestToResponseHidesUnderlyingError(t *testing.T) {
	err := NewDatabaseError("could not save task", errors.New("pq: secret dsn detail"))
	resp := err.ToResponse()
	if resp.Error != "could not save task" {
		t.Fatalf("ToResponse().Error = %q, want the user-facing message only", resp.Error)
	}
}
