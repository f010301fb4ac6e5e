// Package models defines client-side data models used by the Tripzy CLI:
// identity records, sessions, the derived auth state and change events.
package models

import "time"

// MetadataFullName is the user metadata key holding the display name set at
// sign-up time.
const MetadataFullName = "full_name"

// User is the identity record owned by the Session Store.
type User struct {
	// ID is the unique user identifier assigned by the identity service.
	ID string `json:"id"`

	// Email is the address the account was registered with.
	Email string `json:"email"`

	// EmailConfirmedAt is set once the user followed the confirmation link.
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`

	// Metadata is the arbitrary profile data supplied at sign-up.
	Metadata map[string]any `json:"user_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EmailVerified reports whether the user's email address has been confirmed.
func (u *User) EmailVerified() bool {
	return u != nil && u.EmailConfirmedAt != nil && !u.EmailConfirmedAt.IsZero()
}

// DisplayName returns the full_name metadata value, or "" when absent.
func (u *User) DisplayName() string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	name, _ := u.Metadata[MetadataFullName].(string)
	return name
}

// Greeting is the name shown on the profile screen.
func (u *User) Greeting() string {
	if name := u.DisplayName(); name != "" {
		return name
	}
	return "Traveler"
}
