package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/KMDPriyashan/tripzy/internal/flagx"
)

var knownFlags = []string{"-u", "-k", "-s", "-d", "-t", "-l"}

// parseFlags overlays cfg with command-line flags:
//
//	-u string     identity service project URL
//	-k string     anon (public) project key
//	-s string     session store: gotrue or memory
//	-d string     data directory
//	-t duration   per-request timeout, e.g. 10s
//	-l string     log level: debug, info, warn, error
//
// Other arguments (-c included) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("tripzy", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.AuthURL, "u", cfg.AuthURL, "identity service project URL")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "anon project key")
	fs.StringVar(&cfg.Store, "s", cfg.Store, "session store (gotrue|memory)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
