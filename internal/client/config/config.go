package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/KMDPriyashan/tripzy/internal/common"
	"github.com/KMDPriyashan/tripzy/internal/flagx"
)

const (
	StoreGoTrue = "gotrue"
	StoreMemory = "memory"
)

// Config holds runtime settings for the Tripzy CLI.
type Config struct {
	// AuthURL is the project URL of the identity service, e.g.
	// https://abc.supabase.co. The /auth/v1 path is appended by the client.
	AuthURL string
	// AnonKey is the public project key sent as the apikey header.
	AnonKey string
	// Store selects the Session Store: "gotrue" or "memory".
	Store string
	// DataDir holds tripzy.db with the cached session.
	DataDir string
	// CachePassphrase, when set, encrypts the cached session at rest.
	CachePassphrase string

	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	// RefreshMargin is how long before expiry a token is refreshed.
	RefreshMargin time.Duration

	SignUpRedirectURL string
	ResetRedirectURL  string

	LogLevel string
}

// LoadDefaults populates c with defaults suitable for a local run.
func (c *Config) LoadDefaults() {
	c.Store = StoreGoTrue
	c.DataDir = ".tripzy"
	c.RequestTimeout = 15 * time.Second
	c.RefreshInterval = 30 * time.Second
	c.RefreshMargin = time.Minute
	c.SignUpRedirectURL = common.DefaultSignUpRedirectURL
	c.ResetRedirectURL = common.DefaultResetRedirectURL
	c.LogLevel = "info"
}

// Validate reports settings that would leave the client unusable.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory:
	case StoreGoTrue:
		if c.AuthURL == "" {
			errs = append(errs, errors.New("auth url is required for the gotrue store (-u, or -s memory for offline mode)"))
		}
		if c.AnonKey == "" {
			errs = append(errs, errors.New("anon key is required for the gotrue store (-k)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// the remaining flags from args. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigPath(args); path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// MustLoad is LoadConfig over os.Args that exits on error.
func MustLoad() *Config {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}
