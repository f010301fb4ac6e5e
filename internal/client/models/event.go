package models

// AuthEventType identifies a session-change notification.
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEventType = "USER_UPDATED"
)

// AuthEvent is pushed by the Session Store when a session is created,
// refreshed or destroyed. Session is nil for EventSignedOut.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}
