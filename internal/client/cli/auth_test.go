package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/KMDPriyashan/tripzy/internal/client/client"
	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInputs answers prompts in order, text and password prompts alike.
func stubInputs(t *testing.T, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	next := func() (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next() }
	getPassword = func(_ *bufio.Reader, _ io.Writer) ([]byte, error) {
		s, err := next()
		return []byte(s), err
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func TestSignUpVerifyLogin(t *testing.T) {
	out := capturePrintln(t)
	a, m := newMemoryApp(t)
	ctx := context.Background()

	stubInputs(t, "Ann Lee", "Ann@Example.com", "secret1")
	require.NoError(t, a.SignUp(ctx))
	assert.Equal(t, "ann@example.com", a.pendingEmail)
	assert.Equal(t, models.RouteLogin, a.screens.Current())
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out(), "[Success] Account created successfully! Please check your email for verification.")

	require.NoError(t, a.Verify(ctx))
	assert.Empty(t, a.pendingEmail)
	assert.Equal(t, models.RouteLogin, a.screens.Current())
	assert.Contains(t, out(), "[Verification Complete] Your email has been verified. Please log in to continue.")

	stubInputs(t, "ann@example.com", "secret1")
	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, models.RouteProfile, a.screens.Current())

	lines := out()
	assert.Contains(t, lines, "[Success!] You have successfully logged in.")
	assert.Contains(t, lines, "Welcome, Ann Lee!")
	assert.Equal(t, 1, m.Calls("sign_in"))
}

func TestLogin_UnverifiedOffersResend(t *testing.T) {
	out := capturePrintln(t)
	a, m := newMemoryApp(t, client.WithUnconfirmedSignIn())
	ctx := context.Background()

	_, _, err := m.SignUp(ctx, "bob@example.com", "secret1", nil, "")
	require.NoError(t, err)

	stubInputs(t, "bob@example.com", "secret1")
	require.NoError(t, a.Login(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "bob@example.com", a.pendingEmail)
	assert.Contains(t, out(), "  (type 'resend' to get a new verification email)")

	require.NoError(t, a.Resend(ctx))
	assert.Contains(t, out(), "[Success] Verification email sent! Please check your inbox.")
	assert.Len(t, m.Outbox(), 2)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name      string
		answers   []string
		failNext  error
		wantLine  string
		wantCalls int
	}{
		{
			name:      "wrong password",
			answers:   []string{"ann@example.com", "nope-nope"},
			wantLine:  "[Login Error] Invalid email or password. Please try again.",
			wantCalls: 1,
		},
		{
			name:     "validation",
			answers:  []string{"not-an-email", "secret1"},
			wantLine: "[Validation Error] Please enter a valid email address",
		},
		{
			name:      "unreachable",
			answers:   []string{"ann@example.com", "secret1"},
			failNext:  client.ErrUnavailable,
			wantLine:  "[Login Error] Unable to reach the server. Please check your connection and try again.",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capturePrintln(t)
			a, m := newSeededApp(t, func(m *client.MemoryClient) {
				_, _, err := m.SignUp(context.Background(), "ann@example.com", "secret1", nil, "")
				require.NoError(t, err)
				require.NoError(t, m.SignOut(context.Background()))
			}, client.WithAutoConfirm())
			if tt.failNext != nil {
				m.FailNext(tt.failNext)
			}

			stubInputs(t, tt.answers...)
			require.Error(t, a.Login(context.Background()))

			assert.Contains(t, out(), tt.wantLine)
			assert.Equal(t, tt.wantCalls, m.Calls("sign_in"))
			assert.False(t, a.isLoggedIn())
		})
	}
}

func TestSignUp_ValidationMakesNoCall(t *testing.T) {
	out := capturePrintln(t)
	a, m := newMemoryApp(t)

	stubInputs(t, "Ann", "ann@example.com", "123")
	err := a.SignUp(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, m.Calls("sign_up"))
	assert.Contains(t, out(), "[Validation Error] Password must be at least 6 characters long")
}

func TestLogout(t *testing.T) {
	out := capturePrintln(t)
	a, _ := newMemoryApp(t, client.WithAutoConfirm())
	ctx := context.Background()

	_, err := a.auth.SignUp(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	require.True(t, a.isLoggedIn())

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, models.RouteLogin, a.screens.Current())
	assert.Contains(t, out(), "You have been logged out.")
}

func TestForgot(t *testing.T) {
	out := capturePrintln(t)
	a, m := newMemoryApp(t)
	ctx := context.Background()
	_, _, err := m.SignUp(ctx, "ann@example.com", "secret1", nil, "")
	require.NoError(t, err)

	stubInputs(t, "ann@example.com")
	require.NoError(t, a.Forgot(ctx))
	assert.Contains(t, out(), "[Success] Password reset email sent! Please check your inbox.")
	assert.Equal(t, client.Email{Kind: "recovery", To: "ann@example.com", RedirectTo: "tripzy://auth/reset-password"}, m.Outbox()[1])

	m.FailNext(errors.New("smtp down"))
	stubInputs(t, "ann@example.com")
	require.Error(t, a.Forgot(ctx))
	assert.Contains(t, out(), "[Error] Failed to send password reset email. Please try again.")
}

func TestVerify_UnknownAddress(t *testing.T) {
	out := capturePrintln(t)
	a, _ := newMemoryApp(t)

	stubInputs(t, "ghost@example.com")
	require.Error(t, a.Verify(context.Background()))
	assert.Equal(t, models.RouteLogin, a.screens.Current())
	assert.Contains(t, out(), "[Verification Error] There was an issue verifying your email. Please try again.")
}

func TestShowAndBack(t *testing.T) {
	out := capturePrintln(t)
	a, _ := newMemoryApp(t)
	ctx := context.Background()

	require.NoError(t, a.Show(ctx, models.RoutePlan))
	require.NoError(t, a.Show(ctx, models.RouteProfile))
	assert.Contains(t, out(), "Not authenticated")

	require.NoError(t, a.Back(ctx))
	assert.Equal(t, models.RoutePlan, a.screens.Current())
	require.NoError(t, a.Back(ctx))
	require.NoError(t, a.Back(ctx))
	assert.Contains(t, out(), "Nothing to go back to.")
}
