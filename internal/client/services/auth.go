// Package services contains application services for the Babel Edit client.
// This file defines the authentication service: login, registration, logout,
// profile verification and local inspection of the stored session.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login/Register: authenticate against the server and persist the session.
//   - Logout: tell the server (best effort) and always forget the session.
//   - Verify: fetch the profile behind the current session.
//   - SessionInfo: read subject, role and expiry from the stored access token.
//   - IsAuthenticated: whether an access token is stored.
type AuthService interface {
	Login(ctx context.Context, in models.LoginInput) (models.User, error)
	Register(ctx context.Context, in models.RegisterInput) (models.User, error)
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (models.User, error)
	SessionInfo(ctx context.Context) (models.SessionInfo, error)
	IsAuthenticated(ctx context.Context) bool
}

type authService struct {
	client client.Client
	store  credentials.Store
}

// NewAuthService constructs an AuthService bound to the given API client and
// the store that client reads its tokens from.
func NewAuthService(c client.Client, store credentials.Store) AuthService {
	return &authService{client: c, store: store}
}

// profileResponse accepts the profile either bare or wrapped in "user".
type profileResponse struct {
	models.User
	Wrapped *models.User `json:"user"`
}

func (p profileResponse) user() models.User {
	if p.Wrapped != nil {
		return *p.Wrapped
	}
	return p.User
}

func (a *authService) Login(ctx context.Context, in models.LoginInput) (models.User, error) {
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}
	return a.authenticate(ctx, "/auth/login", in)
}

func (a *authService) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}
	return a.authenticate(ctx, "/auth/register", in)
}

func (a *authService) authenticate(ctx context.Context, endpoint string, body any) (models.User, error) {
	resp, err := client.Fetch[models.AuthResponse](ctx, a.client, endpoint, client.Request{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return models.User{}, err
	}
	if resp.Access() == "" {
		return models.User{}, fmt.Errorf("%s: %w", endpoint, common.ErrInvalidToken)
	}

	sess := models.Session{
		AccessToken:  resp.Access(),
		RefreshToken: resp.RefreshToken,
		Role:         resp.User.Role,
	}
	if err := a.store.Set(ctx, sess); err != nil {
		return models.User{}, fmt.Errorf("failed to save session: %w", err)
	}
	return resp.User, nil
}

// Logout always clears the local session; a server error is returned only
// after that.
func (a *authService) Logout(ctx context.Context) error {
	var serverErr error
	if a.IsAuthenticated(ctx) {
		serverErr = a.client.Do(ctx, "/auth/logout", client.Request{Method: http.MethodPost}, nil)
	}

	if err := a.store.Clear(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return serverErr
}

func (a *authService) Verify(ctx context.Context) (models.User, error) {
	resp, err := client.Fetch[profileResponse](ctx, a.client, "/auth/verify", client.Request{RequireAuth: true})
	if err != nil {
		return models.User{}, err
	}
	return resp.user(), nil
}

// sessionClaims are the claims the storefront puts in its access tokens.
type sessionClaims struct {
	Role   string `json:"role"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// SessionInfo decodes the stored access token without verifying its
// signature; the client holds no key and only uses the claims for display.
func (a *authService) SessionInfo(ctx context.Context) (models.SessionInfo, error) {
	sess, err := a.store.Get(ctx)
	if err != nil {
		return models.SessionInfo{}, err
	}
	if !sess.HasToken() {
		return models.SessionInfo{}, client.ErrNoToken
	}

	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(sess.AccessToken, &claims); err != nil {
		return models.SessionInfo{}, errors.Join(common.ErrInvalidToken, err)
	}

	info := models.SessionInfo{Subject: claims.Subject, Role: claims.Role}
	if info.Subject == "" {
		info.Subject = claims.UserID
	}
	if info.Role == "" {
		info.Role = sess.Role
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time.In(time.UTC)
	}
	return info, nil
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	sess, err := a.store.Get(ctx)
	return err == nil && sess.HasToken()
}
