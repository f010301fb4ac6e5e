package client

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNoSession   = errors.New("no active session")
)

// ErrorKind is the normalized reason behind a rejection by the identity
// service.
type ErrorKind string

const (
	KindUnknown            ErrorKind = "unknown"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindEmailNotConfirmed  ErrorKind = "email_not_confirmed"
	KindRateLimited        ErrorKind = "rate_limited"
	KindUserNotFound       ErrorKind = "user_not_found"
)

// APIError is a request the identity service received and rejected.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return http.StatusText(e.Status)
}

// NewAPIError builds an APIError, deriving Kind from the error code, the
// HTTP status and finally the message text.
func NewAPIError(status int, code, message string) *APIError {
	kind := classifyCode(code)
	if kind == KindUnknown && status == http.StatusTooManyRequests {
		kind = KindRateLimited
	}
	if kind == KindUnknown {
		kind = ClassifyMessage(message)
	}
	return &APIError{Kind: kind, Status: status, Code: code, Message: message}
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func classifyCode(code string) ErrorKind {
	switch code {
	case "invalid_credentials":
		return KindInvalidCredentials
	case "email_not_confirmed":
		return KindEmailNotConfirmed
	case "over_email_send_rate_limit", "over_request_rate_limit", "over_sms_send_rate_limit":
		return KindRateLimited
	case "user_not_found":
		return KindUserNotFound
	default:
		return KindUnknown
	}
}

// messageKinds is the only place that depends on the service's wording.
var messageKinds = []struct {
	substr string
	kind   ErrorKind
}{
	{"invalid login credentials", KindInvalidCredentials},
	{"email not confirmed", KindEmailNotConfirmed},
	{"email rate limit exceeded", KindRateLimited},
	{"user not found", KindUserNotFound},
}

// ClassifyMessage maps a raw service message to an ErrorKind by substring.
// Unmatched messages are KindUnknown.
func ClassifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	for _, mk := range messageKinds {
		if strings.Contains(lower, mk.substr) {
			return mk.kind
		}
	}
	return KindUnknown
}
