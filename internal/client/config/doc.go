// Package config loads runtime configuration for the Tripzy CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional JSON file named by -c or -config.
//  3. Command-line flags -u, -k, -s, -d, -t and -l.
//
// Example file:
//
//	{
//	  "auth_url": "https://abc.supabase.co",
//	  "anon_key": "eyJhbGciOi...",
//	  "store": "gotrue",
//	  "data_dir": "/home/me/.tripzy",
//	  "request_timeout": "15s",
//	  "refresh_margin": "1m"
//	}
//
// The cache passphrase can only come from the file, so it stays out of
// shell history.
package config
