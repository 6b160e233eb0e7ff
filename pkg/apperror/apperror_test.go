package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type causeError struct{ field string }

func (e *causeError) Error() string { return "bad " + e.field }

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("progress", "u1"), http.StatusNotFound},
		{"invalid input", NewInvalidInput("role is required", nil), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("Email or password is incorrect", nil), http.StatusUnauthorized},
		{"permission", NewPermissionDenied("no session"), http.StatusForbidden},
		{"conflict", NewConflict("user", "email", "a@b.c"), http.StatusConflict},
		{"bad gateway", NewBadGateway("status 503", nil), http.StatusBadGateway},
		{"rate limited", NewTooManyRequests("1.2.3.4"), http.StatusTooManyRequests},
		{"internal", NewInternal("db down", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("outer: %w", NewNotFound("checkpoint", "cp_9")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestAppError_UnwrapReachesCause(t *testing.T) {
	err := NewBadGateway("malformed roadmap", &causeError{field: "skill"})

	var target *causeError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "skill", target.field)
	assert.True(t, errors.Is(err, ErrBadGateway))
	assert.Equal(t, BackendFailureMessage, err.Message)
}

func TestAppError_ToJSON(t *testing.T) {
	err := NewUnauthorized("Email or password is incorrect", nil)
	body := err.ToJSON()

	assert.Equal(t, "unauthorized", body["error"])
	assert.Equal(t, "Email or password is incorrect", body["message"])
}
