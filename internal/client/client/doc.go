// Package client talks to the iReporter REST API.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, the shared transport. Every request carries an
//     X-Request-ID and, unless it is an anonymous call, an
//     "Authorization: Bearer <token>" header whose token is read from a
//     TokenSource at the moment the request is sent. Logging out therefore
//     takes effect on the very next request.
//  2. One adapter per backend area built on that transport: Users,
//     Incidents and Notifications. Each satisfies the matching interface
//     (UserAPI, IncidentAPI, NotificationAPI) consumed by the services.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the status and the backend's
// "error"/"message" text. APIError unwraps to a sentinel so callers can use
// errors.Is: ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound and
// ErrUnavailable. Network failures and timeouts also match ErrUnavailable.
//
// Concurrency & Contexts
//
// HTTPClient and the adapters are safe for concurrent use. All operations
// accept a context.Context and honor cancellation and deadlines.
package client
