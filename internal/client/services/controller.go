// Package services contains the application services of the Tripzy client.
//
// AuthController mediates between user intent and the identity service. It
// owns the derived AuthState, validates input before any network call,
// converts Session Store failures into the error taxonomy in errors.go and
// drives redirects through an injected Navigator.
//
// State is guarded by a mutex. Session-change notifications are consumed by
// a single goroutine started in Start and stopped in Close; direct calls run
// on the caller's goroutine and are bounded by the request timeout.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/KMDPriyashan/tripzy/internal/client/client"
	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/common"
	"github.com/KMDPriyashan/tripzy/internal/logging"
)

// DefaultRequestTimeout bounds every Session Store call made by the
// controller.
const DefaultRequestTimeout = 15 * time.Second

var (
	ErrAlreadyStarted = errors.New("auth controller already started")
	ErrClosed         = errors.New("auth controller closed")
)

// Navigator switches the visible screen.
type Navigator interface {
	// Replace shows route and drops the current screen from history.
	Replace(route models.Route)
	// Push shows route on top of the current screen.
	Push(route models.Route)
}

// Outcome describes how a successful sign-in or sign-up call ended.
type Outcome string

const (
	OutcomeSignedIn             Outcome = "signed_in"
	OutcomeVerificationRequired Outcome = "verification_required"
	// OutcomeSuperseded means a sign-out happened while the call was in
	// flight; its session was revoked and the state stays Unauthenticated.
	OutcomeSuperseded Outcome = "superseded"
)

// SignInResult is the outcome of a successful SignIn call.
type SignInResult struct {
	Outcome Outcome
	User    *models.User
}

// SignUpResult is the outcome of a successful SignUp call.
type SignUpResult struct {
	Outcome Outcome
	User    *models.User
}

// Notice is a dismissible message for the view with one primary action.
type Notice struct {
	Title   string
	Message string
	Action  Action
}

// ErrorNotice builds the failure notice for err. Validation failures always
// carry the "Validation Error" title.
func ErrorNotice(title string, err error) Notice {
	if errors.Is(err, ErrValidation) {
		title = "Validation Error"
	}
	return Notice{Title: title, Message: MessageOf(err), Action: ActionOf(err)}
}

// Option configures an AuthController.
type Option func(*AuthController)

// WithRequestTimeout bounds each identity service call. Non-positive values
// keep the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *AuthController) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces time.Now for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *AuthController) { c.now = now }
}

// WithSignUpRedirect sets the link embedded in confirmation emails.
func WithSignUpRedirect(url string) Option {
	return func(c *AuthController) { c.signUpRedirect = url }
}

// WithResetRedirect sets the link embedded in password reset emails.
func WithResetRedirect(url string) Option {
	return func(c *AuthController) { c.resetRedirect = url }
}

// AuthController holds the application's belief about authentication.
type AuthController struct {
	client client.Client
	nav    Navigator
	logger logging.Logger

	timeout        time.Duration
	now            func() time.Time
	signUpRedirect string
	resetRedirect  string

	mu    sync.Mutex
	state models.AuthState
	busy  string
	// busyGen is gen when the busy call started.
	busyGen uint64
	// gen counts sign-outs; results of calls started under an older value
	// are stale.
	gen uint64
	// echoes counts SignedOut events still owed for sign-outs the
	// controller issued itself. Session events queued before them are stale.
	echoes  int
	changes chan models.AuthState
	sub     *client.Subscription
	closed  bool

	wg sync.WaitGroup
}

// NewAuthController returns a controller in the Unknown state. Call Start to
// subscribe to session changes and run the startup probe.
func NewAuthController(c client.Client, nav Navigator, logger logging.Logger, opts ...Option) *AuthController {
	ac := &AuthController{
		client:         c,
		nav:            nav,
		logger:         logger,
		timeout:        DefaultRequestTimeout,
		now:            time.Now,
		signUpRedirect: common.DefaultSignUpRedirectURL,
		resetRedirect:  common.DefaultResetRedirectURL,
		state:          models.Unknown(),
		changes:        make(chan models.AuthState, 1),
	}
	if ac.logger == nil {
		ac.logger = logging.Discard()
	}
	for _, opt := range opts {
		opt(ac)
	}
	return ac
}

// Start subscribes to the Session Store's change stream, moves to Loading
// and probes for an existing session. Any probe failure resolves to
// Unauthenticated.
func (c *AuthController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.sub != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.sub = c.client.Subscribe()
	c.setStateLocked(models.Loading())
	gen := c.gen
	c.wg.Add(1)
	go c.consume(c.sub)
	c.mu.Unlock()

	user, err := c.probe(ctx)
	if err != nil {
		c.logger.Warn(ctx, "startup session probe failed", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// an event may already have resolved the state
	if c.state.Status != models.StatusLoading || c.gen != gen {
		return nil
	}
	if user != nil {
		c.setStateLocked(models.Authenticated(user))
	} else {
		c.setStateLocked(models.Unauthenticated())
	}
	return nil
}

// Close releases the change subscription and waits for the event goroutine
// to exit. It is safe to call more than once.
func (c *AuthController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sub := c.sub
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	c.wg.Wait()
	return nil
}

func (c *AuthController) State() models.AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a sign-in, sign-up or password reset is in flight.
func (c *AuthController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy != ""
}

// Changes delivers the latest state after every transition. Intermediate
// states are coalesced when the reader falls behind.
func (c *AuthController) Changes() <-chan models.AuthState {
	return c.changes
}

// SignIn authenticates with email and password. A verified user becomes
// Authenticated and is routed to the profile screen; an unverified one gets
// OutcomeVerificationRequired and no state change.
func (c *AuthController) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	email = NormalizeEmail(email)
	if err := validateSignIn(email, password); err != nil {
		return SignInResult{}, err
	}

	gen, release, err := c.acquire("sign in")
	if err != nil {
		return SignInResult{}, err
	}
	defer release()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	user, session, err := c.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		err = classify(err)
		c.logger.Info(ctx, "sign in failed", "kind", KindOf(err), "error", err)
		return SignInResult{}, err
	}
	if user == nil && session != nil {
		user = session.User
	}

	if !user.EmailVerified() {
		c.logger.Info(ctx, "sign in needs email verification", "user_id", userID(user))
		return SignInResult{Outcome: OutcomeVerificationRequired, User: user}, nil
	}
	if !session.Live(c.now()) {
		return SignInResult{}, &AuthError{Reason: KindUnknown, Message: msgNoSessionIssued}
	}

	if !c.authenticate(gen, user) {
		c.revokeLate(ctx)
		return SignInResult{Outcome: OutcomeSuperseded, User: user}, nil
	}
	c.logger.Info(ctx, "signed in", "user_id", user.ID)
	c.nav.Replace(models.RouteProfile)
	return SignInResult{Outcome: OutcomeSignedIn, User: user}, nil
}

// SignUp creates an account with {full_name: fullName} as profile metadata.
// The account is assumed unusable until the email is confirmed, unless the
// service answers with a live session for a verified user.
func (c *AuthController) SignUp(ctx context.Context, fullName, email, password string) (SignUpResult, error) {
	if err := validateSignUp(fullName, email, password); err != nil {
		return SignUpResult{}, err
	}
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)

	gen, release, err := c.acquire("sign up")
	if err != nil {
		return SignUpResult{}, err
	}
	defer release()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	metadata := map[string]any{models.MetadataFullName: fullName}
	user, session, err := c.client.SignUp(ctx, email, password, metadata, c.signUpRedirect)
	if err != nil {
		err = classify(err)
		c.logger.Info(ctx, "sign up failed", "kind", KindOf(err), "error", err)
		return SignUpResult{}, err
	}
	if user == nil && session != nil {
		user = session.User
	}

	if session.Live(c.now()) && user.EmailVerified() {
		if !c.authenticate(gen, user) {
			c.revokeLate(ctx)
			return SignUpResult{Outcome: OutcomeSuperseded, User: user}, nil
		}
		c.logger.Info(ctx, "signed up with immediate session", "user_id", user.ID)
		c.nav.Replace(models.RouteProfile)
		return SignUpResult{Outcome: OutcomeSignedIn, User: user}, nil
	}

	c.logger.Info(ctx, "signed up, verification pending", "user_id", userID(user))
	c.nav.Push(models.RouteLogin)
	return SignUpResult{Outcome: OutcomeVerificationRequired, User: user}, nil
}

// SignOut ends the session. Whatever the service reports, the state becomes
// Unauthenticated and the view is sent to login; the remote error is only
// returned for reporting.
func (c *AuthController) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	c.expectEchoLocked()
	c.setStateLocked(models.Unauthenticated())
	c.mu.Unlock()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.client.SignOut(ctx)
	if err != nil {
		c.logger.Warn(ctx, "remote sign out failed", "error", err)
		err = classify(err)
	} else {
		c.logger.Info(ctx, "signed out")
	}
	c.nav.Replace(models.RouteLogin)
	return err
}

// RequestPasswordReset sends a reset link to email. It changes no state.
func (c *AuthController) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	_, release, err := c.acquire("password reset")
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.ResetPasswordForEmail(ctx, email, c.resetRedirect); err != nil {
		err = classify(err)
		c.logger.Info(ctx, "password reset request failed", "kind", KindOf(err), "error", err)
		return withMessage(err, msgResetFailed)
	}
	return nil
}

// ResendVerification sends the sign-up confirmation email again. Failures
// are reported once and never retried.
func (c *AuthController) ResendVerification(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: msgEmailRequired}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Resend(ctx, client.ResendSignup, email); err != nil {
		err = classify(err)
		c.logger.Info(ctx, "resend verification failed", "kind", KindOf(err), "error", err)
		return withMessage(err, msgResendFailed)
	}
	return nil
}

// HandleEmailConfirmation backs the confirmation callback screen: it
// re-probes the session and routes to profile when it is live and verified,
// to login otherwise.
func (c *AuthController) HandleEmailConfirmation(ctx context.Context) (models.Route, Notice) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	user, err := c.probe(ctx)
	switch {
	case err != nil:
		c.logger.Warn(ctx, "email confirmation probe failed", "error", err)
		c.nav.Replace(models.RouteLogin)
		return models.RouteLogin, Notice{
			Title:   "Verification Error",
			Message: "There was an issue verifying your email. Please try again.",
			Action:  ActionAcknowledge,
		}
	case user != nil && c.authenticate(gen, user):
		c.nav.Replace(models.RouteProfile)
		return models.RouteProfile, Notice{
			Title:   "Email Verified!",
			Message: "Your email has been successfully verified. Welcome to Tripzy.",
			Action:  ActionAcknowledge,
		}
	default:
		c.nav.Replace(models.RouteLogin)
		return models.RouteLogin, Notice{
			Title:   "Verification Complete",
			Message: "Your email has been verified. Please log in to continue.",
			Action:  ActionAcknowledge,
		}
	}
}

// probe returns the verified user of the live session, or nil. The cached
// user record is re-fetched when it is not verified yet, since confirmation
// happens out of band.
func (c *AuthController) probe(ctx context.Context) (*models.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	session, err := c.client.GetSession(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if !session.Live(c.now()) {
		return nil, nil
	}

	user := session.User
	if !user.EmailVerified() {
		fresh, err := c.client.GetUser(ctx)
		if err != nil {
			return nil, classify(err)
		}
		user = fresh
	}
	if !user.EmailVerified() {
		return nil, nil
	}
	return user, nil
}

func (c *AuthController) consume(sub *client.Subscription) {
	defer c.wg.Done()
	for ev := range sub.Events() {
		c.handleEvent(ev)
	}
}

func (c *AuthController) handleEvent(ev models.AuthEvent) {
	ctx := context.Background()

	switch ev.Type {
	case models.EventSignedIn, models.EventTokenRefreshed, models.EventUserUpdated:
		if !ev.Session.Live(c.now()) || !ev.Session.User.EmailVerified() {
			c.logger.Debug(ctx, "ignoring session event", "type", ev.Type)
			return
		}
		c.mu.Lock()
		if c.echoes == 0 && !c.busyStaleLocked() {
			c.setStateLocked(models.Authenticated(ev.Session.User))
		}
		c.mu.Unlock()

	case models.EventSignedOut:
		c.mu.Lock()
		if c.echoes > 0 {
			// our own sign-out, already applied
			c.echoes--
			c.mu.Unlock()
			return
		}
		prev := c.state.Status
		c.gen++
		c.setStateLocked(models.Unauthenticated())
		c.mu.Unlock()

		if prev != models.StatusUnauthenticated {
			c.logger.Info(ctx, "session ended by identity service")
			c.nav.Replace(models.RouteLogin)
		}
	}
}

// acquire takes the single busy slot shared by sign-in, sign-up and
// password reset. It returns the sign-out generation the call started in.
func (c *AuthController) acquire(op string) (uint64, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != "" {
		return 0, nil, &BusyError{Op: op}
	}
	c.busy = op
	c.busyGen = c.gen
	return c.gen, func() {
		c.mu.Lock()
		c.busy = ""
		c.mu.Unlock()
	}, nil
}

// busyStaleLocked reports whether a sign-out happened while the busy call
// was in flight. Session events it published are unwanted until it resolves.
// c.mu must be held.
func (c *AuthController) busyStaleLocked() bool {
	return c.busy != "" && c.busyGen != c.gen
}

// authenticate moves to Authenticated unless a sign-out happened since gen.
func (c *AuthController) authenticate(gen uint64, user *models.User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.setStateLocked(models.Authenticated(user))
	return true
}

// revokeLate signs out a session that arrived after the user signed out.
func (c *AuthController) revokeLate(ctx context.Context) {
	c.mu.Lock()
	c.expectEchoLocked()
	c.setStateLocked(models.Unauthenticated())
	c.mu.Unlock()

	c.logger.Info(ctx, "discarding session issued after sign out")
	if err := c.client.SignOut(ctx); err != nil {
		c.logger.Warn(ctx, "revoking late session failed", "error", err)
	}
}

// expectEchoLocked records that the SignedOut event of a sign-out we are
// about to issue will arrive on the subscription. c.mu must be held.
func (c *AuthController) expectEchoLocked() {
	if c.sub != nil && !c.closed {
		c.echoes++
	}
}

// setStateLocked stores st and notifies Changes, replacing an unread value.
// c.mu must be held.
func (c *AuthController) setStateLocked(st models.AuthState) {
	c.state = st
	select {
	case c.changes <- st:
	default:
		select {
		case <-c.changes:
		default:
		}
		c.changes <- st
	}
}

func (c *AuthController) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
