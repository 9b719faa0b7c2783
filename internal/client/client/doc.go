// Package client talks to the Babel Edit storefront API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) used by the
//     services layer.
//  2. HTTPClient, which attaches the bearer token read from a credentials.Store,
//     retries transport failures with a linear backoff, and recovers from an
//     expired session with a single-flight refresh followed by one retry.
//  3. HealthChecker, a throttled reachability probe with a Watch loop.
//  4. MultipartBody for file uploads that survive retries.
//
// # Error Handling
//
// Failed requests are reported as *APIError. The conditions the UI reacts to
// are exposed as sentinels for errors.Is: ErrNoToken, ErrAccountSuspended,
// ErrSessionExpired, ErrNetwork. A request aborted by its caller is returned
// as the context error instead.
//
// Concurrency & Contexts
//
// HTTPClient and HealthChecker are safe for concurrent use. All operations
// accept context.Context; each physical attempt is additionally bounded by the
// request timeout.
package client
