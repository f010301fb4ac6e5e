package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorKind
	}{
		{"Invalid login credentials", KindInvalidCredentials},
		{"AuthApiError: Invalid login credentials (400)", KindInvalidCredentials},
		{"Email not confirmed", KindEmailNotConfirmed},
		{"Email rate limit exceeded", KindRateLimited},
		{"User not found", KindUserNotFound},
		{"User already registered", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMessage(tt.msg))
		})
	}
}

func TestNewAPIError_Precedence(t *testing.T) {
	// code wins over message
	e := NewAPIError(http.StatusBadRequest, "email_not_confirmed", "Invalid login credentials")
	assert.Equal(t, KindEmailNotConfirmed, e.Kind)

	// status 429 with an unknown code
	e = NewAPIError(http.StatusTooManyRequests, "", "slow down")
	assert.Equal(t, KindRateLimited, e.Kind)

	// falls back to message
	e = NewAPIError(http.StatusBadRequest, "invalid_grant", "Invalid login credentials")
	assert.Equal(t, KindInvalidCredentials, e.Kind)

	e = NewAPIError(http.StatusUnprocessableEntity, "user_already_exists", "User already registered")
	assert.Equal(t, KindUnknown, e.Kind)
	assert.Equal(t, "User already registered", e.Error())
}

func TestAPIError_ErrorFallbacks(t *testing.T) {
	assert.Equal(t, "weak_password", (&APIError{Code: "weak_password"}).Error())
	assert.Equal(t, "Bad Gateway", (&APIError{Status: http.StatusBadGateway}).Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("sign in: %w", NewAPIError(400, "invalid_credentials", "x"))
	assert.Equal(t, KindInvalidCredentials, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
