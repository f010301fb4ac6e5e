package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"a@b.co",
		"first.last+tag@sub.domain.org",
		"x@y.z",
	}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}

	invalid := []string{
		"",
		"bad-email",
		"user.example.com",
		"user@example",
		"@example.com",
		"user@.com",
		"user@example.",
		"us er@example.com",
		"user@exa mple.com",
		"user@@example.com",
		"user@example@other.com",
	}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM \t"))
}

func TestValidateSignIn_Order(t *testing.T) {
	tests := []struct {
		email, password string
		field, message  string
	}{
		{"", "", "email", msgEmailRequired},
		{"", "x", "email", msgEmailRequired},
		{"bad-email", "", "email", msgEmailInvalid},
		{"bad-email", "x", "email", msgEmailInvalid},
		{"user@example.com", "", "password", msgPasswordRequired},
	}
	for _, tt := range tests {
		err := validateSignIn(tt.email, tt.password)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "%q/%q", tt.email, tt.password)
		assert.Equal(t, tt.field, ve.Field)
		assert.Equal(t, tt.message, ve.Message)
	}

	assert.NoError(t, validateSignIn("user@example.com", "x"))
}

func TestValidateSignUp_PasswordLength(t *testing.T) {
	for n := 1; n < MinPasswordLength; n++ {
		err := validateSignUp("Ann", "a@b.co", strings.Repeat("p", n))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "length %d", n)
		assert.Equal(t, msgPasswordShort, ve.Message)
	}
	for _, n := range []int{6, 7, 12, 64} {
		assert.NoError(t, validateSignUp("Ann", "a@b.co", strings.Repeat("p", n)), "length %d", n)
	}

	// length counts characters, not bytes
	assert.Error(t, validateSignUp("Ann", "a@b.co", "ééééé"))
	assert.NoError(t, validateSignUp("Ann", "a@b.co", "éééééé"))
}

func TestValidateSignUp_AllFieldsRequired(t *testing.T) {
	cases := [][3]string{
		{"", "a@b.co", "secret1"},
		{"   ", "a@b.co", "secret1"},
		{"Ann", " ", "secret1"},
		{"Ann", "a@b.co", ""},
		{"Ann", "a@b.co", "      "},
	}
	for _, c := range cases {
		err := validateSignUp(c[0], c[1], c[2])
		require.ErrorIs(t, err, ErrValidation, "%q", c)
		assert.Equal(t, msgFieldsRequired, MessageOf(err))
	}
}
