// Package client holds the contracts between the offline-first journal and
// its hosted backend, plus the bootstrap of the local database.
//
// # Overview
//
//  1. Backend contracts: AuthBackend (accounts and sessions), RemoteTable
//     (one per record kind, scoped by user id) and CardBackend (card
//     metadata and images). internal/cloud implements them over Postgres
//     and S3; Offline implements them for a device with no backend.
//  2. Local persistence bootstrap: InitDatabase opens the SQLite file and
//     RunMigrations applies the embedded goose migrations.
//
// # Error Handling
//
// Implementations return the sentinels in internal/common so callers can
// match with errors.Is: ErrorUnavailable, ErrorUnauthorized,
// ErrorInvalidLoginPassword, ErrorAlreadyExists, ErrInvalidToken,
// ErrTokenExpired, ErrRefreshTokenExpired. ErrOffline is returned by the
// offline backend.
//
// Concurrency & Contexts
//
// Backends must be safe for concurrent use: mirror writes arrive from many
// goroutines. Every call takes a context and must honor cancellation.
package client
