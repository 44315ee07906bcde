package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dkarpov/examgate/internal/client/api"
	"github.com/dkarpov/examgate/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for staff credentials and authenticates against the server.
//
// On success the session store takes ownership of the token, which also
// installs it as the bearer credential for subsequent requests, and the
// user is told where the web client would land them. The password byte
// slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipe(password)

	raw, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			printlnFn("Invalid username or password")
			return err
		}
		a.log.Error(ctx, "login failed", "error", err)
		printlnFn("Login failed:", err.Error())
		return err
	}

	if err := a.store.SetSession(ctx, raw); err != nil {
		a.log.Error(ctx, "error establishing session", "error", err)
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Success!")
	a.navigate()
	return nil
}

// Logout discards the current exam attempt, if any, and clears the session.
// The store revokes the bearer credential and wipes local storage even when
// the latter fails; the error is still reported.
func (a *App) Logout(ctx context.Context) error {
	a.attempt = nil
	if err := a.store.ClearSession(ctx); err != nil {
		a.log.Error(ctx, "error clearing session", "error", err)
		return err
	}
	printlnFn("Logged out")
	return nil
}

// navigate prints the landing page the current session maps to, mirroring
// what the web client does after login.
func (a *App) navigate() {
	printlnFn(fmt.Sprintf("→ %s", session.Landing(a.store.Role())))
}
