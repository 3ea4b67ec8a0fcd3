package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rycusapp/rycus-cli/internal/client/api"
	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email, and password and creates an account.
// On success the returned session is installed exactly like a login.
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter your name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, token, err := a.api.Register(ctx, fullName, email, password)
	if err != nil {
		return a.describeAuthError(err)
	}

	a.sessions.Login(ctx, user, token)
	fmt.Println("Account created, you are signed in.")
	return nil
}

// Login prompts for credentials and authenticates against the backend.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, token, err := a.api.Login(ctx, email, password)
	if err != nil {
		return a.describeAuthError(err)
	}

	a.sessions.Login(ctx, user, token)
	fmt.Println("Signed in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

// ChangeEmail asks the backend to move the account to a new address, then
// relocates the locally cached profile data and forces a fresh sign-in.
func (a *App) ChangeEmail(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	newEmail, err := getSimpleText(a.reader, "Enter new email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.ChangeEmail(ctx, u.Email, newEmail, password); err != nil {
		return a.describeAuthError(err)
	}

	// Move cached data before the logout strands it under the old key.
	a.sessions.MoveExtrasToNewEmail(ctx, u.Email, newEmail)
	a.sessions.Logout(ctx)

	fmt.Println("Email changed. Please sign in with your new address.")
	return nil
}

// Reset signs out and wipes everything stored locally, including cached
// per-account extras and preferences. Asks for confirmation first.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Erase all local data? Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("Cancelled.")
		return nil
	}

	a.sessions.Logout(ctx)
	if err := kvstore.NewSQLiteRepository(a.db).Clear(ctx); err != nil {
		return err
	}

	fmt.Println("Local data erased.")
	return nil
}

func (a *App) describeAuthError(err error) error {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return fmt.Errorf("server unavailable, try again later")
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("invalid credentials")
	default:
		return err
	}
}

// describeSessionError handles errors from authenticated calls. A 401 here
// means the token went stale, so the session is dropped and the user is sent
// back to sign-in.
func (a *App) describeSessionError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		a.sessions.Logout(ctx)
		return fmt.Errorf("session expired, please sign in again")
	case errors.Is(err, api.ErrUnavailable):
		return fmt.Errorf("server unavailable, try again later")
	default:
		return err
	}
}
