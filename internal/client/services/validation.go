package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgEmailRequired    = "Please enter your email address"
	msgEmailInvalid     = "Please enter a valid email address"
	msgPasswordRequired = "Please enter your password"
	msgFieldsRequired   = "Please fill in all fields"
	msgPasswordShort    = "Password must be at least 6 characters long"
)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail trims and lower-cases an address the way sign-in and
// password reset send it.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: msgEmailRequired}
	}
	if !ValidEmail(email) {
		return &ValidationError{Field: "email", Message: msgEmailInvalid}
	}
	return nil
}

// validateSignIn checks empty email, then email format, then empty password.
// email is expected to be normalized already.
func validateSignIn(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: msgPasswordRequired}
	}
	return nil
}

func validateSignUp(fullName, email, password string) error {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return &ValidationError{Field: "form", Message: msgFieldsRequired}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: msgPasswordShort}
	}
	return nil
}
