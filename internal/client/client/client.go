package client

import (
	"context"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
)

// ResendType selects which email Resend sends again.
type ResendType string

const (
	ResendSignup      ResendType = "signup"
	ResendEmailChange ResendType = "email_change"
)

// Client is the identity service ("Session Store") contract consumed by the
// auth controller. Implementations own the durable session.
//
// Rejections are returned as *APIError; failures to reach the service wrap
// ErrUnavailable.
type Client interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.User, *models.Session, error)
	// SignUp returns a nil session when the account must be confirmed first.
	SignUp(ctx context.Context, email, password string, metadata map[string]any, redirectTo string) (*models.User, *models.Session, error)
	// SignOut drops the local session and publishes EventSignedOut even when
	// the remote revocation fails.
	SignOut(ctx context.Context) error
	// GetSession returns (nil, nil) when there is no usable session.
	GetSession(ctx context.Context) (*models.Session, error)
	// GetUser returns (nil, nil) when there is no usable session.
	GetUser(ctx context.Context) (*models.User, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	Resend(ctx context.Context, typ ResendType, email string) error
	// Subscribe registers for session-change notifications. The returned
	// subscription must be released with Unsubscribe.
	Subscribe() *Subscription
	Close() error
}

// SessionStorage persists the current session between runs.
type SessionStorage interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
