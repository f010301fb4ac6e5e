package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_EmailVerified(t *testing.T) {
	now := time.Now()
	var nilUser *User

	assert.False(t, nilUser.EmailVerified())
	assert.False(t, (&User{}).EmailVerified())
	assert.False(t, (&User{EmailConfirmedAt: &time.Time{}}).EmailVerified())
	assert.True(t, (&User{EmailConfirmedAt: &now}).EmailVerified())
}

func TestUser_Greeting(t *testing.T) {
	assert.Equal(t, "Traveler", (&User{}).Greeting())
	assert.Equal(t, "Traveler", (&User{Metadata: map[string]any{MetadataFullName: 42}}).Greeting())
	assert.Equal(t, "Ann Lee", (&User{Metadata: map[string]any{MetadataFullName: "Ann Lee"}}).Greeting())
}

func TestSession_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s := &Session{AccessToken: "a", ExpiresAt: now.Add(time.Minute)}
	assert.False(t, s.Expired(now))
	assert.True(t, s.Live(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
	assert.False(t, s.Live(now.Add(2*time.Minute)))

	assert.True(t, s.ExpiresWithin(now, time.Minute))
	assert.False(t, s.ExpiresWithin(now, 30*time.Second))

	noExpiry := &Session{AccessToken: "a"}
	assert.False(t, noExpiry.Expired(now))
	assert.False(t, noExpiry.ExpiresWithin(now, time.Hour))

	var none *Session
	assert.True(t, none.Expired(now))
	assert.False(t, none.Live(now))
	assert.False(t, none.CanRefresh())
	assert.False(t, (&Session{AccessToken: ""}).Live(now))
}

func TestSession_CloneDetachesUser(t *testing.T) {
	s := &Session{AccessToken: "a", User: &User{ID: "u1", Metadata: map[string]any{"k": "v"}}}
	c := s.Clone()
	require.NotNil(t, c.User)

	c.User.ID = "u2"
	c.User.Metadata["k"] = "changed"

	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, "v", s.User.Metadata["k"])
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestAuthState_IsAuthenticated(t *testing.T) {
	assert.False(t, Unknown().IsAuthenticated())
	assert.False(t, Loading().IsAuthenticated())
	assert.False(t, Unauthenticated().IsAuthenticated())
	assert.False(t, Authenticated(nil).IsAuthenticated())
	assert.True(t, Authenticated(&User{ID: "u"}).IsAuthenticated())
}

func TestRoute_Protected(t *testing.T) {
	assert.True(t, RouteProfile.Protected())
	assert.False(t, RouteLogin.Protected())
	assert.False(t, RouteFeed.Protected())
}
