package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// roundTripFunc lets a plain function act as an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T, setup func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, store credentials.Store, opts ...Option) *HTTPClient {
	t.Helper()
	opts = append([]Option{WithRetryDelay(time.Millisecond)}, opts...)
	c, err := New(baseURL, store, opts...)
	require.NoError(t, err)
	return c
}

func loggedIn() *credentials.MemoryStore {
	return credentials.NewMemoryStoreWith(models.Session{AccessToken: "old", RefreshToken: "r1", Role: models.RoleCustomer})
}

// pending reports how many callers are subscribed to the running refresh.
func (r *refresher) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}
