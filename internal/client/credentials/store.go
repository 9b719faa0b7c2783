// Package credentials persists the session (access token, refresh token and
// role) used by the API client.
//
// The client never touches a storage mechanism directly; it talks to a Store.
// Three implementations are provided:
//
//   - MemoryStore: process-local, used by tests and one-shot commands.
//   - CookieStore: cookies kept in an http.CookieJar scoped to the API URL,
//     mirroring how the storefront keeps its session in the browser.
//   - SQLiteStore: a small SQLite database so the CLI stays logged in across
//     runs, with optional AES-GCM sealing of the stored values.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/babeledit/internal/client/models"
)

// Store is the capability the API client needs from session storage.
//
// Get returns the zero Session when nothing is stored. Set replaces the whole
// session; empty fields are removed. Clear removes everything.
type Store interface {
	Get(ctx context.Context) (models.Session, error)
	Set(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}
