package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/KMDPriyashan/tripzy/internal/client/client"
)

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrTransport  = errors.New("identity service unreachable")
	ErrBusy       = errors.New("another request is in progress")
)

// Kind is the machine-checkable category of a user-facing error.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailNotConfirmed  Kind = "email_not_confirmed"
	KindRateLimited        Kind = "rate_limited"
	KindUserNotFound       Kind = "user_not_found"
	KindUnknown            Kind = "unknown"
	KindTransport          Kind = "transport"
	KindBusy               Kind = "busy"
)

// Action is the single primary action offered with a failure notice.
type Action string

const (
	ActionRetry       Action = "retry"
	ActionResend      Action = "resend"
	ActionAcknowledge Action = "acknowledge"
)

const (
	msgUnexpected      = "An unexpected error occurred. Please try again."
	msgTransport       = "Unable to reach the server. Please check your connection and try again."
	msgBusy            = "Please wait, another request is in progress."
	msgResendFailed    = "Failed to resend verification email. Please try again."
	msgResetFailed     = "Failed to send password reset email. Please try again."
	msgNoSessionIssued = "Sign in did not return a session. Please try again."
)

var authMessages = map[Kind]string{
	KindInvalidCredentials: "Invalid email or password. Please try again.",
	KindEmailNotConfirmed:  "Please confirm your email address before logging in. Check your inbox for the confirmation link.",
	KindRateLimited:        "Too many attempts. Please try again in a few minutes.",
	KindUserNotFound:       "No account found with this email address. Please sign up first.",
}

var authActions = map[Kind]Action{
	KindInvalidCredentials: ActionRetry,
	KindEmailNotConfirmed:  ActionResend,
	KindRateLimited:        ActionAcknowledge,
	KindUserNotFound:       ActionAcknowledge,
}

// UserError is implemented by every error the controller returns.
type UserError interface {
	error
	Kind() Kind
	UserMessage() string
	Action() Action
}

// ValidationError is a local, pre-network input failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ValidationError) Kind() Kind           { return KindValidation }
func (e *ValidationError) UserMessage() string  { return e.Message }
func (e *ValidationError) Action() Action       { return ActionAcknowledge }

// AuthError is a rejection by the identity service. Raw keeps the service's
// own wording.
type AuthError struct {
	Reason Kind
	Raw    string
	// Message, when set, replaces the per-kind text.
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("auth %s: %s", e.Reason, e.Raw)
	}
	return "auth " + string(e.Reason)
}

func (e *AuthError) Unwrap() error        { return e.Err }
func (e *AuthError) Is(target error) bool { return target == ErrAuth }
func (e *AuthError) Kind() Kind           { return e.Reason }

func (e *AuthError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := authMessages[e.Reason]; ok {
		return msg
	}
	if e.Raw != "" {
		return e.Raw
	}
	return msgUnexpected
}

func (e *AuthError) Action() Action {
	if a, ok := authActions[e.Reason]; ok {
		return a
	}
	return ActionRetry
}

// TransportError means the call never completed: network failure, gateway
// error or the request timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Kind() Kind           { return KindTransport }
func (e *TransportError) UserMessage() string  { return msgTransport }
func (e *TransportError) Action() Action       { return ActionRetry }

// BusyError rejects a call while a conflicting one is in flight.
type BusyError struct {
	Op string
}

func (e *BusyError) Error() string {
	return e.Op + " rejected: another request is in progress"
}

func (e *BusyError) Is(target error) bool { return target == ErrBusy }
func (e *BusyError) Kind() Kind           { return KindBusy }
func (e *BusyError) UserMessage() string  { return msgBusy }
func (e *BusyError) Action() Action       { return ActionAcknowledge }

// KindOf returns the Kind of err, KindUnknown for foreign errors and "" for
// nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ue UserError
	if errors.As(err, &ue) {
		return ue.Kind()
	}
	return KindUnknown
}

// MessageOf returns the text to show the user for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ue UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return msgUnexpected
}

// ActionOf returns the primary action to offer for err.
func ActionOf(err error) Action {
	var ue UserError
	if errors.As(err, &ue) {
		return ue.Action()
	}
	return ActionRetry
}

// classify converts a Session Store failure into the controller taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return &TransportError{Err: err}
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return &AuthError{Reason: kindFromClient(apiErr.Kind), Raw: apiErr.Message, Err: err}
	}
	return &AuthError{Reason: KindUnknown, Raw: err.Error(), Err: err}
}

func kindFromClient(k client.ErrorKind) Kind {
	switch k {
	case client.KindInvalidCredentials:
		return KindInvalidCredentials
	case client.KindEmailNotConfirmed:
		return KindEmailNotConfirmed
	case client.KindRateLimited:
		return KindRateLimited
	case client.KindUserNotFound:
		return KindUserNotFound
	default:
		return KindUnknown
	}
}

// withMessage overrides the user text of an AuthError; other errors pass
// through unchanged.
func withMessage(err error, msg string) error {
	var ae *AuthError
	if errors.As(err, &ae) {
		ae.Message = msg
	}
	return err
}
