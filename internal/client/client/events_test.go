package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishFansOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	defer a.Unsubscribe()
	defer b.Unsubscribe()

	h.Publish(models.AuthEvent{Type: models.EventSignedIn})

	assert.Equal(t, models.EventSignedIn, (<-a.Events()).Type)
	assert.Equal(t, models.EventSignedIn, (<-b.Events()).Type)
}

func refreshed(token string) models.AuthEvent {
	return models.AuthEvent{Type: models.EventTokenRefreshed, Session: &models.Session{AccessToken: token}}
}

// drain reads until the subscription stays quiet.
func drain(s *Subscription) []models.AuthEvent {
	var got []models.AuthEvent
	for {
		select {
		case ev := <-s.Events():
			got = append(got, ev)
		case <-time.After(50 * time.Millisecond):
			return got
		}
	}
}

func countType(evs []models.AuthEvent, typ models.AuthEventType) int {
	n := 0
	for _, ev := range evs {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func fullQueue(head ...models.AuthEvent) *Subscription {
	s := &Subscription{wake: make(chan struct{}, 1)}
	s.queue = append(s.queue, head...)
	for i := len(head); i < subscriptionBuffer; i++ {
		s.queue = append(s.queue, refreshed(fmt.Sprint(i)))
	}
	return s
}

func TestSubscription_PushEvictsOldestExceptSignedOut(t *testing.T) {
	signedOut := models.AuthEvent{Type: models.EventSignedOut}

	t.Run("oldest refresh evicted", func(t *testing.T) {
		s := fullQueue(refreshed("old"))
		s.push(refreshed("new"))

		require.Len(t, s.queue, subscriptionBuffer)
		assert.Equal(t, "1", s.queue[0].Session.AccessToken)
		assert.Equal(t, "new", s.queue[subscriptionBuffer-1].Session.AccessToken)
	})

	t.Run("sign-out at head kept", func(t *testing.T) {
		s := fullQueue(signedOut, refreshed("old"))
		s.push(refreshed("new"))

		require.Len(t, s.queue, subscriptionBuffer)
		assert.Equal(t, signedOut, s.queue[0])
		assert.Equal(t, "2", s.queue[1].Session.AccessToken)
		assert.Equal(t, "new", s.queue[subscriptionBuffer-1].Session.AccessToken)
	})

	t.Run("only sign-outs queued grows", func(t *testing.T) {
		head := make([]models.AuthEvent, subscriptionBuffer)
		for i := range head {
			head[i] = signedOut
		}
		s := fullQueue(head...)
		s.push(refreshed("new"))

		require.Len(t, s.queue, subscriptionBuffer+1)
		assert.Equal(t, subscriptionBuffer, countType(s.queue, models.EventSignedOut))
		assert.Equal(t, "new", s.queue[subscriptionBuffer].Session.AccessToken)
	})
}

func TestHub_FullBufferKeepsSignedOutAndNewest(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	defer s.Unsubscribe()

	h.Publish(models.AuthEvent{Type: models.EventSignedOut})
	for i := 0; i < subscriptionBuffer+4; i++ {
		h.Publish(refreshed(fmt.Sprint(i)))
	}

	got := drain(s)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), subscriptionBuffer+1)
	assert.Equal(t, 1, countType(got, models.EventSignedOut))
	assert.Equal(t, models.EventSignedOut, got[0].Type)
	assert.Equal(t, fmt.Sprint(subscriptionBuffer+3), got[len(got)-1].Session.AccessToken)
}

func TestHub_SignedOutNeverDropped(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	defer s.Unsubscribe()

	const signOuts = subscriptionBuffer + 3
	for i := 0; i < signOuts; i++ {
		h.Publish(models.AuthEvent{Type: models.EventSignedOut})
		h.Publish(refreshed(fmt.Sprint(i)))
	}
	h.Publish(models.AuthEvent{Type: models.EventSignedIn})

	got := drain(s)
	assert.Equal(t, signOuts, countType(got, models.EventSignedOut))
	assert.Equal(t, models.EventSignedIn, got[len(got)-1].Type)
}

func TestSubscription_UnsubscribeClosesAndIsIdempotent(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	require.Equal(t, 1, h.Len())

	s.Unsubscribe()
	s.Unsubscribe()

	_, ok := <-s.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len())

	// publishing after release must not panic
	h.Publish(models.AuthEvent{Type: models.EventSignedOut})
}

func TestHub_CloseReleasesAll(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()

	h.Close()
	h.Close()

	_, ok := <-s.Events()
	assert.False(t, ok)
	s.Unsubscribe()

	late := h.Subscribe()
	_, ok = <-late.Events()
	assert.False(t, ok)
	late.Unsubscribe()
}
