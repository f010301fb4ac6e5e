package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Email is a message the in-memory service "sent".
type Email struct {
	Kind       string
	To         string
	RedirectTo string
}

type memUser struct {
	user models.User
	hash []byte
}

// MemoryClient is an in-process identity service with the Client contract.
// It backs the offline demo mode and doubles as a test fake.
type MemoryClient struct {
	mu       sync.Mutex
	users    map[string]*memUser
	refresh  map[string]string
	session  *models.Session
	outbox   []Email
	failNext error
	calls    map[string]int

	hub    *Hub
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	autoConfirm      bool
	allowUnconfirmed bool
}

type MemoryOption func(*MemoryClient)

// WithAutoConfirm marks new accounts as confirmed and signs them in.
func WithAutoConfirm() MemoryOption {
	return func(m *MemoryClient) { m.autoConfirm = true }
}

// WithUnconfirmedSignIn lets unconfirmed users obtain a session instead of
// being rejected with "Email not confirmed".
func WithUnconfirmedSignIn() MemoryOption {
	return func(m *MemoryClient) { m.allowUnconfirmed = true }
}

func WithTokenTTL(d time.Duration) MemoryOption {
	return func(m *MemoryClient) { m.ttl = d }
}

func WithBcryptCost(cost int) MemoryOption {
	return func(m *MemoryClient) { m.cost = cost }
}

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryClient) { m.now = now }
}

func NewMemoryClient(opts ...MemoryOption) *MemoryClient {
	m := &MemoryClient{
		users:   make(map[string]*memUser),
		refresh: make(map[string]string),
		calls:   make(map[string]int),
		hub:     NewHub(),
		secret:  common.GenerateRandByteArray(32),
		ttl:     time.Hour,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Client = (*MemoryClient)(nil)

var (
	errInvalidCredentials = &APIError{Kind: KindInvalidCredentials, Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
	errEmailNotConfirmed  = &APIError{Kind: KindEmailNotConfirmed, Status: http.StatusBadRequest, Code: "email_not_confirmed", Message: "Email not confirmed"}
	errUserExists         = &APIError{Kind: KindUnknown, Status: http.StatusUnprocessableEntity, Code: "user_already_exists", Message: "User already registered"}
	errWeakPassword       = &APIError{Kind: KindUnknown, Status: http.StatusUnprocessableEntity, Code: "weak_password", Message: "Password should be at least 6 characters."}
	errBadJWT             = &APIError{Kind: KindUnknown, Status: http.StatusUnauthorized, Code: "bad_jwt", Message: "invalid JWT"}
)

// enter records the call and returns an injected failure, if any.
// Callers hold m.mu.
func (m *MemoryClient) enter(op string) error {
	m.calls[op]++
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	return nil
}

func (m *MemoryClient) issue(u *memUser) (*models.Session, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":        u.user.ID,
		"email":      u.user.Email,
		"iat":        now.Unix(),
		"exp":        now.Add(m.ttl).Unix(),
		"session_id": uuid.NewString(),
		"role":       "authenticated",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	rt := uuid.NewString()
	m.refresh[rt] = u.user.Email

	user := u.user
	return &models.Session{
		AccessToken:  token,
		RefreshToken: rt,
		TokenType:    "bearer",
		UserID:       u.user.ID,
		IssuedAt:     now,
		ExpiresAt:    now.Add(m.ttl),
		User:         &user,
	}, nil
}

func (m *MemoryClient) SignInWithPassword(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	m.mu.Lock()
	if err := m.enter("sign_in"); err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}

	u, ok := m.users[strings.ToLower(email)]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		m.mu.Unlock()
		return nil, nil, errInvalidCredentials
	}
	if !u.user.EmailVerified() && !m.allowUnconfirmed {
		m.mu.Unlock()
		return nil, nil, errEmailNotConfirmed
	}

	s, err := m.issue(u)
	if err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}
	m.session = s
	m.mu.Unlock()

	m.hub.Publish(models.AuthEvent{Type: models.EventSignedIn, Session: s.Clone()})
	return s.Clone().User, s.Clone(), nil
}

func (m *MemoryClient) SignUp(ctx context.Context, email, password string, metadata map[string]any, redirectTo string) (*models.User, *models.Session, error) {
	m.mu.Lock()
	if err := m.enter("sign_up"); err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}

	key := strings.ToLower(email)
	if _, exists := m.users[key]; exists {
		m.mu.Unlock()
		return nil, nil, errUserExists
	}
	if len([]rune(password)) < minPasswordLength {
		m.mu.Unlock()
		return nil, nil, errWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		m.mu.Unlock()
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	u := &memUser{
		user: models.User{
			ID:        uuid.NewString(),
			Email:     key,
			Metadata:  copyMetadata(metadata),
			CreatedAt: m.now(),
		},
		hash: hash,
	}
	m.users[key] = u

	if !m.autoConfirm {
		m.outbox = append(m.outbox, Email{Kind: "signup", To: key, RedirectTo: redirectTo})
		user := u.user
		m.mu.Unlock()
		return &user, nil, nil
	}

	confirmed := m.now()
	u.user.EmailConfirmedAt = &confirmed
	s, err := m.issue(u)
	if err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}
	m.session = s
	m.mu.Unlock()

	m.hub.Publish(models.AuthEvent{Type: models.EventSignedIn, Session: s.Clone()})
	return s.Clone().User, s.Clone(), nil
}

// SignOut drops the session even when an injected failure is returned.
func (m *MemoryClient) SignOut(ctx context.Context) error {
	m.mu.Lock()
	err := m.enter("sign_out")
	if m.session != nil {
		delete(m.refresh, m.session.RefreshToken)
	}
	m.session = nil
	m.mu.Unlock()

	m.hub.Publish(models.AuthEvent{Type: models.EventSignedOut})
	return err
}

func (m *MemoryClient) GetSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("get_session"); err != nil {
		return nil, err
	}
	if !m.session.Live(m.now()) {
		return nil, nil
	}
	return m.session.Clone(), nil
}

// GetUser validates the current access token like the real service would.
func (m *MemoryClient) GetUser(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("get_user"); err != nil {
		return nil, err
	}
	if m.session == nil {
		return nil, nil
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(m.session.AccessToken, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errBadJWT
	}

	for _, u := range m.users {
		if u.user.ID == claims.Subject {
			user := u.user
			return &user, nil
		}
	}
	return nil, errBadJWT
}

// ResetPasswordForEmail succeeds for unknown addresses too, so callers cannot
// probe which accounts exist.
func (m *MemoryClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("recover"); err != nil {
		return err
	}
	key := strings.ToLower(email)
	if _, ok := m.users[key]; ok {
		m.outbox = append(m.outbox, Email{Kind: "recovery", To: key, RedirectTo: redirectTo})
	}
	return nil
}

func (m *MemoryClient) Resend(ctx context.Context, typ ResendType, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("resend"); err != nil {
		return err
	}
	key := strings.ToLower(email)
	if u, ok := m.users[key]; ok && !u.user.EmailVerified() {
		m.outbox = append(m.outbox, Email{Kind: string(typ), To: key})
	}
	return nil
}

func (m *MemoryClient) Subscribe() *Subscription {
	return m.hub.Subscribe()
}

func (m *MemoryClient) Close() error {
	m.hub.Close()
	return nil
}

// ConfirmEmail marks the account as verified, as following the emailed link
// would.
func (m *MemoryClient) ConfirmEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return errors.New("memory client: unknown user " + email)
	}
	now := m.now()
	u.user.EmailConfirmedAt = &now
	return nil
}

// ExpireSession ends the current session server-side and notifies
// subscribers, like an expired refresh token would.
func (m *MemoryClient) ExpireSession() {
	m.mu.Lock()
	if m.session != nil {
		delete(m.refresh, m.session.RefreshToken)
	}
	m.session = nil
	m.mu.Unlock()

	m.hub.Publish(models.AuthEvent{Type: models.EventSignedOut})
}

// Publish injects a raw change notification.
func (m *MemoryClient) Publish(ev models.AuthEvent) {
	m.hub.Publish(ev)
}

// FailNext makes the next call of any operation return err.
func (m *MemoryClient) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Calls returns how many times op was invoked ("sign_in", "sign_up",
// "sign_out", "get_session", "get_user", "recover", "resend").
func (m *MemoryClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MemoryClient) Outbox() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.outbox...)
}

func (m *MemoryClient) Subscribers() int {
	return m.hub.Len()
}

func copyMetadata(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
