// Package common defines shared constants and sentinel errors used across
// client layers of Tripzy. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrCacheLocked is returned when the local session cache is sealed and
	// no passphrase is configured to open it.
	ErrCacheLocked = errors.New("session cache is encrypted and no passphrase was configured")
)
