package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"wrapped refresh failure", fmt.Errorf("refresh: %w", ErrInvalidRefreshToken), http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
		{"duplicate email is a 400", ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"quota", ErrDailyLimitReached, http.StatusTooManyRequests, "DAILY_LIMIT_REACHED"},
		{"notification failure is hidden as 500", ErrNotificationFailed, http.StatusInternalServerError, "NOTIFICATION_FAILED"},
		{"unknown error", New("db exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_ValidationDetails(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "password", Message: "Password must be at least 8 characters"},
		{Field: "name", Message: "Name must be at least 2 characters"},
	}}

	httpErr := MapErrorToHTTP(err)
	resp := httpErr.ToErrorResponse()

	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, resp.Error, resp.Message)
	assert.Len(t, resp.Errors, 2)
	assert.Equal(t, "password", resp.Errors[0].Field)
}

func TestMapErrorToHTTP_InternalDetailWithheld(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("query users: %w", New("connection refused")))

	assert.Equal(t, "internal server error", httpErr.Message)
}
