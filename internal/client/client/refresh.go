package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/cenkalti/backoff/v5"
)

const refreshMaxTries = 3

// refresh exchanges refreshToken for a new session. Concurrent callers
// holding the same token share one exchange. A rejection ends the session.
func (c *GoTrueClient) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if s := c.current(ctx); s == nil {
		return nil, ErrNoSession
	} else if s.RefreshToken != refreshToken {
		// someone else already rotated it
		return s, nil
	}

	var tr tokenResponse
	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/token", q, "", body, &tr); err != nil {
		if !errors.Is(err, ErrUnavailable) {
			c.endSession(ctx, "refresh rejected: "+err.Error())
		}
		return nil, err
	}

	s := c.toSession(&tr)
	if s.User == nil {
		if prev := c.current(ctx); prev != nil {
			s.User = prev.User
			s.UserID = prev.UserID
		}
	}
	c.setSession(ctx, s)
	c.hub.Publish(models.AuthEvent{Type: models.EventTokenRefreshed, Session: s.Clone()})
	return s, nil
}

// RefreshIfDue refreshes the session when it expires within margin.
// Transport failures are retried with exponential backoff; a rejection is
// permanent.
func (c *GoTrueClient) RefreshIfDue(ctx context.Context, margin time.Duration, b backoff.BackOff) error {
	s := c.current(ctx)
	if s == nil || !s.CanRefresh() || !s.ExpiresWithin(c.now(), margin) {
		return nil
	}
	if b == nil {
		b = backoff.NewExponentialBackOff()
	}

	_, err := backoff.Retry(ctx, func() (*models.Session, error) {
		refreshed, err := c.refresh(ctx, s.RefreshToken)
		if err != nil && !errors.Is(err, ErrUnavailable) {
			return nil, backoff.Permanent(err)
		}
		return refreshed, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(refreshMaxTries))
	return err
}

// StartAutoRefresh checks the session every interval and refreshes it ahead
// of expiry until ctx is done.
func (c *GoTrueClient) StartAutoRefresh(ctx context.Context, interval, margin time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.RefreshIfDue(ctx, margin, nil); err != nil && ctx.Err() == nil {
				c.logger.Warn(ctx, "token refresh failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
