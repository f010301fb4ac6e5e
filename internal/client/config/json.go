package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/KMDPriyashan/tripzy/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations are
// timex.Duration, so "15s" and integer nanoseconds both work.
type JsonConfig struct {
	AuthURL           string         `json:"auth_url"`
	AnonKey           string         `json:"anon_key"`
	Store             string         `json:"store"`
	DataDir           string         `json:"data_dir"`
	CachePassphrase   string         `json:"cache_passphrase"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	RefreshInterval   timex.Duration `json:"refresh_interval"`
	RefreshMargin     timex.Duration `json:"refresh_margin"`
	SignUpRedirectURL string         `json:"signup_redirect_url"`
	ResetRedirectURL  string         `json:"reset_redirect_url"`
	LogLevel          string         `json:"log_level"`
}

// parseJSON overlays cfg with the fields present in the file at path.
// Absent or zero fields keep their current value.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.AuthURL, jc.AuthURL)
	setString(&cfg.AnonKey, jc.AnonKey)
	setString(&cfg.Store, jc.Store)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.CachePassphrase, jc.CachePassphrase)
	setString(&cfg.SignUpRedirectURL, jc.SignUpRedirectURL)
	setString(&cfg.ResetRedirectURL, jc.ResetRedirectURL)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshInterval.Duration > 0 {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.RefreshMargin.Duration > 0 {
		cfg.RefreshMargin = jc.RefreshMargin.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
