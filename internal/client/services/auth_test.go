package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = models.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleCustomer, Verified: true}

func TestLogin(t *testing.T) {
	seen := make(chan models.LoginInput, 1)
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var in models.LoginInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			seen <- in
			writeJSON(w, http.StatusOK, map[string]any{"accessToken": "a1", "refreshToken": "r1", "user": ada})
		})
	})
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, srv.URL, store), store)

	user, err := svc.Login(context.Background(), models.LoginInput{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(ada, user))
	assert.Equal(t, models.LoginInput{Email: "ada@example.com", Password: "secret"}, <-seen)

	sess, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Session{AccessToken: "a1", RefreshToken: "r1", Role: models.RoleCustomer}, sess)
	assert.True(t, svc.IsAuthenticated(context.Background()))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
		})
	})
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, srv.URL, store), store)

	_, err := svc.Login(context.Background(), models.LoginInput{Email: "ada@example.com", Password: "wrong"})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, svc.IsAuthenticated(context.Background()))
}

func TestLogin_ResponseWithoutToken(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"user": ada})
		})
	})
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, srv.URL, store), store)

	_, err := svc.Login(context.Background(), models.LoginInput{Email: "ada@example.com", Password: "secret"})
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRegister_Validation(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
	})
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, srv.URL, store), store)

	_, err := svc.Register(context.Background(), models.RegisterInput{FirstName: "Ada", Email: "not-an-email", Password: "short"})

	require.ErrorIs(t, err, common.ErrorValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"lastName": "is required",
		"email":    "must be a valid email",
		"password": "must be at least 8 characters",
	}, verr.Fields)
	assert.Zero(t, calls.Load(), "invalid input never reaches the server")
}

func TestRegister(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"token": "a1", "user": ada})
		})
	})
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, srv.URL, store), store)

	user, err := svc.Register(context.Background(), models.RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	sess, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1", sess.AccessToken)
	assert.Empty(t, sess.RefreshToken)
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "server accepts", status: http.StatusNoContent},
		{name: "server fails", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenAuth := make(chan string, 1)
			srv := newBackend(t, func(r chi.Router) {
				r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
					seenAuth <- r.Header.Get("Authorization")
					w.WriteHeader(tt.status)
				})
			})
			store := credentials.NewMemoryStoreWith(models.Session{AccessToken: "a1", RefreshToken: "r1"})
			svc := NewAuthService(newClient(t, srv.URL, store), store)

			err := svc.Logout(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, "Bearer a1", <-seenAuth)
			assert.False(t, svc.IsAuthenticated(context.Background()), "session is cleared either way")
		})
	}
}

func TestLogout_WithoutSessionSkipsServer(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
	})
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, srv.URL, store), store)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Zero(t, calls.Load())
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "bare", body: ada},
		{name: "wrapped", body: map[string]any{"user": ada}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(r chi.Router) {
				r.Get("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, http.StatusOK, tt.body)
				})
			})
			store := credentials.NewMemoryStoreWith(models.Session{AccessToken: "a1"})
			svc := NewAuthService(newClient(t, srv.URL, store), store)

			user, err := svc.Verify(context.Background())
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(ada, user))
		})
	}
}

func TestVerify_NoToken(t *testing.T) {
	store := credentials.NewMemoryStore()
	svc := NewAuthService(newClient(t, "http://api.test", store), store)

	_, err := svc.Verify(context.Background())
	require.ErrorIs(t, err, client.ErrNoToken)
}

func TestSessionInfo(t *testing.T) {
	exp := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	store := credentials.NewMemoryStoreWith(models.Session{
		AccessToken: signedToken(t, "u1", models.RoleAdmin, exp),
		Role:        models.RoleCustomer,
	})
	svc := NewAuthService(newClient(t, "http://api.test", store), store)

	info, err := svc.SessionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", info.Subject)
	assert.Equal(t, models.RoleAdmin, info.Role)
	assert.True(t, exp.Equal(info.ExpiresAt))
	assert.False(t, info.Expired(exp.Add(-time.Hour)))
}

func TestSessionInfo_Errors(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		store := credentials.NewMemoryStore()
		svc := NewAuthService(newClient(t, "http://api.test", store), store)

		_, err := svc.SessionInfo(context.Background())
		require.ErrorIs(t, err, client.ErrNoToken)
	})

	t.Run("opaque token", func(t *testing.T) {
		store := credentials.NewMemoryStoreWith(models.Session{AccessToken: "not-a-jwt"})
		svc := NewAuthService(newClient(t, "http://api.test", store), store)

		_, err := svc.SessionInfo(context.Background())
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})
}
