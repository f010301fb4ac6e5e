package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/KMDPriyashan/tripzy/internal/client/client"
	"github.com/KMDPriyashan/tripzy/internal/client/config"
	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/client/repositories/sessions"
	"github.com/KMDPriyashan/tripzy/internal/client/services"
	"github.com/KMDPriyashan/tripzy/internal/filex"
	"github.com/KMDPriyashan/tripzy/internal/logging"

	_ "modernc.org/sqlite"
)

const dbFileName = "tripzy.db"

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   client.Client
	auth    *services.AuthController
	screens *Screens
	reader  *bufio.Reader
	out     io.Writer

	db *sql.DB
	// refresher keeps the GoTrue session fresh until its context ends.
	refresher func(ctx context.Context)
	// confirm stands in for clicking the emailed link; memory store only.
	confirm func(email string) error

	// pendingEmail is the address awaiting verification, used by resend
	// and verify without prompting again.
	pendingEmail string

	wg sync.WaitGroup
}

// NewApp opens local storage and the configured Session Store and wires the
// auth controller to a screen navigator.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	switch cfg.Store {
	case config.StoreMemory:
		m := client.NewMemoryClient()
		a := newApp(cfg, logger, m, os.Stdin, os.Stdout)
		a.confirm = m.ConfirmEmail
		return a, nil

	case config.StoreGoTrue:
		dir, err := filex.EnsureDir(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
		if err != nil {
			logger.Error(ctx, "error initializing database", "error", err)
			return nil, err
		}

		gt, err := client.NewGoTrueClient(cfg.AuthURL, cfg.AnonKey,
			client.WithStorage(sessions.NewCache(db, cfg.CachePassphrase)),
			client.WithLogger(logger.With("component", "gotrue")),
			client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		a := newApp(cfg, logger, gt, os.Stdin, os.Stdout)
		a.db = db
		a.refresher = func(ctx context.Context) {
			gt.StartAutoRefresh(ctx, cfg.RefreshInterval, cfg.RefreshMargin)
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func newApp(cfg *config.Config, logger logging.Logger, store client.Client, in io.Reader, out io.Writer) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	screens := NewScreens(models.RouteWelcome)
	auth := services.NewAuthController(store, screens, logger.With("component", "auth"),
		services.WithRequestTimeout(cfg.RequestTimeout),
		services.WithSignUpRedirect(cfg.SignUpRedirectURL),
		services.WithResetRedirect(cfg.ResetRedirectURL),
	)
	return &App{
		config:  cfg,
		logger:  logger,
		store:   store,
		auth:    auth,
		screens: screens,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run starts the controller and the background workers, then blocks in the
// REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.wg.Wait()
		if err := a.Close(); err != nil {
			a.logger.Warn(ctx, "shutdown", "error", err)
		}
	}()

	if a.refresher != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.refresher(ctx)
		}()
	}

	if err := a.auth.Start(ctx); err != nil {
		return err
	}
	a.Root(ctx)
	return nil
}

// Close releases the controller subscription, the store and the database.
func (a *App) Close() error {
	errs := []error{a.auth.Close(), a.store.Close()}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().IsAuthenticated()
}

// watchState logs every auth state the controller publishes until ctx ends.
func (a *App) watchState(ctx context.Context) {
	for {
		select {
		case st := <-a.auth.Changes():
			a.logger.Debug(ctx, "auth state changed", "status", st.Status, "screen", a.screens.Current())
		case <-ctx.Done():
			return
		}
	}
}
