// Package cli is the interactive Tripzy client.
//
// It wires configuration, the local session cache and a Session Store (the
// GoTrue HTTP client, or the in-memory store for offline use) to a
// services.AuthController, and drives it from a line-oriented REPL. The
// controller's redirects are applied to a Screens navigator; every command
// renders the screen it lands on.
//
// Commands: signup, login, logout, forgot, resend, verify, profile, feed,
// plan, guide, home, back, help, exit.
//
// App.Run blocks until the user exits.
package cli
