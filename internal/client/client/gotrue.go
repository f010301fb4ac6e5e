package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/common"
	"github.com/KMDPriyashan/tripzy/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const authPathSuffix = "/auth/v1"

// GoTrueClient talks to a hosted GoTrue (Supabase Auth) service over its
// REST API. It keeps the current session in memory, mirrors it to a
// SessionStorage and publishes change events on its Hub.
type GoTrueClient struct {
	baseURL string
	anonKey string
	http    *http.Client
	storage SessionStorage
	hub     *Hub
	logger  logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *models.Session
	loaded  bool

	refreshMu sync.Mutex
}

type GoTrueOption func(*GoTrueClient)

func WithHTTPClient(hc *http.Client) GoTrueOption {
	return func(c *GoTrueClient) { c.http = hc }
}

func WithStorage(s SessionStorage) GoTrueOption {
	return func(c *GoTrueClient) { c.storage = s }
}

func WithLogger(l logging.Logger) GoTrueOption {
	return func(c *GoTrueClient) { c.logger = l }
}

func WithClock(now func() time.Time) GoTrueOption {
	return func(c *GoTrueClient) { c.now = now }
}

// NewGoTrueClient builds a client for the project at projectURL
// (e.g. https://xyz.supabase.co). A URL already ending in /auth/v1 is used
// as is.
func NewGoTrueClient(projectURL, anonKey string, opts ...GoTrueOption) (*GoTrueClient, error) {
	u, err := url.Parse(strings.TrimRight(projectURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse auth url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("auth url %q: scheme must be http or https", projectURL)
	}
	if !strings.HasSuffix(u.Path, authPathSuffix) {
		u.Path += authPathSuffix
	}

	c := &GoTrueClient{
		baseURL: u.String(),
		anonKey: anonKey,
		http:    &http.Client{},
		storage: NewMemoryStorage(),
		hub:     NewHub(),
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ Client = (*GoTrueClient)(nil)

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Code             any    `json:"code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e errorResponse) message() string {
	for _, m := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

func (e errorResponse) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	// newer deployments put the string code in "code", older ones the status
	if s, ok := e.Code.(string); ok {
		return s
	}
	return e.Error
}

func (c *GoTrueClient) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set(common.APIKeyHeaderName, c.anonKey)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Info", common.AppName+"-cli")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *GoTrueClient) mapError(status int, body []byte) error {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return NewAPIError(status, "", strings.TrimSpace(string(body)))
	}
	return NewAPIError(status, er.code(), er.message())
}

// toSession converts a token response. Expiry comes from expires_at,
// expires_in, or the JWT exp claim, in that order.
func (c *GoTrueClient) toSession(tr *tokenResponse) *models.Session {
	now := c.now()
	s := &models.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		IssuedAt:     now,
		User:         tr.User,
	}
	if tr.User != nil {
		s.UserID = tr.User.ID
	}

	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if s.ExpiresAt.IsZero() || s.UserID == "" {
		var claims jwt.RegisteredClaims
		if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, &claims); err == nil {
			if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
				s.ExpiresAt = claims.ExpiresAt.Time
			}
			if s.UserID == "" {
				s.UserID = claims.Subject
			}
			if claims.IssuedAt != nil {
				s.IssuedAt = claims.IssuedAt.Time
			}
		}
	}
	return s
}

// setSession installs s as the current session and persists it. A storage
// failure is logged; the in-memory session stays authoritative.
func (c *GoTrueClient) setSession(ctx context.Context, s *models.Session) {
	c.mu.Lock()
	c.session = s.Clone()
	c.loaded = true
	c.mu.Unlock()

	var err error
	if s == nil {
		err = c.storage.Clear(ctx)
	} else {
		err = c.storage.Save(ctx, s)
	}
	if err != nil {
		c.logger.Warn(ctx, "session storage write failed", "error", err)
	}
}

// current returns the in-memory session, loading it from storage on first
// use. Unreadable storage counts as no session.
func (c *GoTrueClient) current(ctx context.Context) *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		s, err := c.storage.Load(ctx)
		if err != nil {
			c.logger.Warn(ctx, "session storage read failed", "error", err)
		}
		c.session = s
		c.loaded = true
	}
	return c.session.Clone()
}

func (c *GoTrueClient) SignInWithPassword(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	var tr tokenResponse
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token", q, "", body, &tr); err != nil {
		return nil, nil, err
	}

	s := c.toSession(&tr)
	c.setSession(ctx, s)
	c.hub.Publish(models.AuthEvent{Type: models.EventSignedIn, Session: s.Clone()})
	return s.User, s, nil
}

func (c *GoTrueClient) SignUp(ctx context.Context, email, password string, metadata map[string]any, redirectTo string) (*models.User, *models.Session, error) {
	var q url.Values
	if redirectTo != "" {
		q = url.Values{"redirect_to": {redirectTo}}
	}
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/signup", q, "", body, &raw); err != nil {
		return nil, nil, err
	}

	// With autoconfirm the service answers with a full token response,
	// otherwise with the bare user record.
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err == nil && tr.AccessToken != "" {
		s := c.toSession(&tr)
		c.setSession(ctx, s)
		c.hub.Publish(models.AuthEvent{Type: models.EventSignedIn, Session: s.Clone()})
		return s.User, s, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, nil, fmt.Errorf("decode signup response: %w", err)
	}
	return &u, nil, nil
}

// SignOut revokes the session remotely and always drops it locally. A
// service that no longer knows the session counts as success.
func (c *GoTrueClient) SignOut(ctx context.Context) error {
	// an in-flight refresh must not reinstate the session afterwards
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	s := c.current(ctx)

	var err error
	if s != nil {
		err = c.do(ctx, http.MethodPost, "/logout", url.Values{"scope": {"global"}}, s.AccessToken, nil, nil)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				err = nil
			}
		}
	}

	c.setSession(ctx, nil)
	c.hub.Publish(models.AuthEvent{Type: models.EventSignedOut})
	return err
}

// GetSession returns the current session, refreshing an expired one first.
// A rejected refresh ends the session and publishes EventSignedOut.
func (c *GoTrueClient) GetSession(ctx context.Context) (*models.Session, error) {
	s := c.current(ctx)
	if s == nil {
		return nil, nil
	}
	if !s.Expired(c.now()) {
		return s, nil
	}
	if !s.CanRefresh() {
		c.endSession(ctx, "session expired")
		return nil, nil
	}

	refreshed, err := c.refresh(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, nil
	}
	return refreshed, nil
}

func (c *GoTrueClient) GetUser(ctx context.Context) (*models.User, error) {
	s, err := c.GetSession(ctx)
	if err != nil || s == nil {
		return nil, err
	}

	var u models.User
	if err := c.do(ctx, http.MethodGet, "/user", nil, s.AccessToken, nil, &u); err != nil {
		return nil, err
	}

	c.mu.Lock()
	same := c.session != nil && c.session.AccessToken == s.AccessToken
	if same {
		c.session.User = &u
	}
	updated := c.session.Clone()
	c.mu.Unlock()

	if same {
		if err := c.storage.Save(ctx, updated); err != nil {
			c.logger.Warn(ctx, "session storage write failed", "error", err)
		}
	}
	return &u, nil
}

func (c *GoTrueClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	var q url.Values
	if redirectTo != "" {
		q = url.Values{"redirect_to": {redirectTo}}
	}
	return c.do(ctx, http.MethodPost, "/recover", q, "", map[string]string{"email": email}, nil)
}

func (c *GoTrueClient) Resend(ctx context.Context, typ ResendType, email string) error {
	body := map[string]string{"type": string(typ), "email": email}
	return c.do(ctx, http.MethodPost, "/resend", nil, "", body, nil)
}

func (c *GoTrueClient) Subscribe() *Subscription {
	return c.hub.Subscribe()
}

// Close releases subscribers and idle connections. The stored session is
// kept for the next run.
func (c *GoTrueClient) Close() error {
	c.hub.Close()
	c.http.CloseIdleConnections()
	return nil
}

func (c *GoTrueClient) endSession(ctx context.Context, reason string) {
	c.logger.Info(ctx, "session ended", "reason", reason)
	c.setSession(ctx, nil)
	c.hub.Publish(models.AuthEvent{Type: models.EventSignedOut})
}
