package models

import "time"

// Session is the credential bundle issued by the Session Store. Callers hold
// a read-only copy which may be stale.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	UserID       string    `json:"user_id"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

// CanRefresh reports whether the session carries a refresh token.
func (s *Session) CanRefresh() bool {
	return s != nil && s.RefreshToken != ""
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt is treated as never expiring.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Live reports whether s is a usable, non-expired session.
func (s *Session) Live(now time.Time) bool {
	return s != nil && s.AccessToken != "" && !s.Expired(now)
}

// ExpiresWithin reports whether the session expires within d of now.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(s.ExpiresAt)
}

// Clone returns a deep enough copy for handing sessions across goroutines.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.User != nil {
		u := *s.User
		if s.User.Metadata != nil {
			u.Metadata = make(map[string]any, len(s.User.Metadata))
			for k, v := range s.User.Metadata {
				u.Metadata[k] = v
			}
		}
		c.User = &u
	}
	return &c
}
