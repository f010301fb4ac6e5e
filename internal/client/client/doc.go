// Package client contains the client-side building blocks that talk to the
// identity service (the "Session Store").
//
// # Overview
//
// The package provides:
//  1. The Client interface: sign-in, sign-up, sign-out, session and user
//     retrieval, password recovery, verification resend and a change
//     notification stream (Subscribe).
//  2. GoTrueClient, an HTTP implementation for Supabase/GoTrue. It keeps
//     the session in a SessionStorage, refreshes it before expiry
//     (StartAutoRefresh) and maps responses to errors.
//  3. MemoryClient, an in-process implementation used for the offline demo
//     mode and in tests.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Rejections are *APIError values with an explicit ErrorKind. Message text
// from the service is interpreted in one place only, ClassifyMessage.
// Transport failures wrap ErrUnavailable and can be matched with errors.Is.
//
// # Concurrency
//
// Implementations are safe for concurrent use. Hub never blocks publishers.
package client
