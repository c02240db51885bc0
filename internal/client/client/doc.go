// Package client contains client-side building blocks for TripKeeper.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the TripKeeper backend: salt/verifier authentication, versioned
//     document access, the notification feed, presigned attachment URLs,
//     and Ping.
//  2. A concrete HTTP implementation (see HTTPClient) that manages a token
//     pair, transparently refreshes an expired access token, and maps API
//     error codes to sentinel errors.
//  3. Adapters over the transport: Provider (identity.Provider) owning the
//     argon2id credential derivation, and PollingStore (docstore.Store)
//     turning versioned reads into change subscriptions.
//  4. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     for the CLI, wiring an SQLite database and applying embedded goose
//     migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrLocalDataNotAvailable,
// plus the shared sentinels in internal/common.
//
// Concurrency & Contexts
//
// Implementations are safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
