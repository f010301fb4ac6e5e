// Package common contains shared constants and helpers used across
// Tripzy client components.
package common

const (
	// APIKeyHeaderName carries the public (anon) project key on every
	// request to the identity service.
	APIKeyHeaderName = "apikey"

	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// AppName is shown in the CLI banner and used as the slog source.
	AppName = "tripzy"

	// DefaultSignUpRedirectURL is the deep link embedded in confirmation
	// emails; it opens the email confirmation callback screen.
	DefaultSignUpRedirectURL = "tripzy://auth/callback"

	// DefaultResetRedirectURL is the deep link embedded in password reset
	// emails.
	DefaultResetRedirectURL = "tripzy://auth/reset-password"
)
