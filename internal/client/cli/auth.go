package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the profile fields and a password and creates the
// account. The new session is kept, so the user is logged in afterwards.
func (a *App) Register(ctx context.Context) error {
	var in models.RegisterInput
	var err error

	if in.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if in.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if in.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}

	password, err := getPassword("Password (min 8 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	in.Password = string(password)

	user, err := a.auth.Register(ctx, in)
	if err != nil {
		return err
	}

	a.setUser(user.Email)
	a.printf("Account created. Welcome, %s!\n", user.FirstName)
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, models.LoginInput{Email: email, Password: string(password)})
	if err != nil {
		if errors.Is(err, client.ErrNetwork) {
			a.setMode(ctx, ModeOffline)
		}
		return err
	}

	a.setUser(user.Email)
	a.setMode(ctx, ModeOnline)
	a.printf("Logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

// Logout ends the session. The local session is gone even when the server
// could not be told.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.setUser("")
	a.printf("Logged out\n")
	if err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	return nil
}

// Whoami shows the locally known session and the profile the server
// returns for it.
func (a *App) Whoami(ctx context.Context) error {
	info, err := a.auth.SessionInfo(ctx)
	if err != nil && !errors.Is(err, common.ErrInvalidToken) {
		return err
	}
	if err == nil {
		expires := "never"
		if !info.ExpiresAt.IsZero() {
			expires = info.ExpiresAt.Format(time.RFC3339)
			if info.Expired(time.Now()) {
				expires += " (expired, will refresh)"
			}
		}
		a.printf("Session: subject=%s role=%s expires=%s\n", info.Subject, info.Role, expires)
	}

	user, err := a.auth.Verify(ctx)
	if err != nil {
		return err
	}
	a.setUser(user.Email)
	a.printf("%s %s <%s> role=%s verified=%t\n", user.FirstName, user.LastName, user.Email, user.Role, user.Verified)
	if user.IsAdmin() {
		a.printf("Back office access: upload enabled\n")
	}
	return nil
}

// describeError turns an error into the message shown to the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrNoToken):
		return "Please log in first."
	case errors.Is(err, client.ErrAccountSuspended):
		return fmt.Sprintf("Your account is suspended: %s", apiMessage(err))
	case errors.Is(err, client.ErrSessionExpired):
		return "Your session has expired, please log in again."
	case errors.Is(err, client.ErrNetwork), errors.Is(err, client.ErrUnavailable):
		return "Cannot reach the server, check your connection and try again."
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case errors.Is(err, common.ErrorValidation):
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func apiMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
