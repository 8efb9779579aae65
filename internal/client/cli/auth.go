package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"github.com/dmitrijs2005/ireporter/internal/client/session"
)

// getSimpleText, getTextOr and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getTextOr     = GetTextOr
	getPassword   = GetPassword
)

// fail shows msg as an error notice and returns it as an error.
func (a *App) fail(msg string) error {
	a.notices.Error(msg)
	return errors.New(msg)
}

// Login prompts for credentials and signs in. On success the dashboard is
// opened and notification polling starts.
func (a *App) Login(ctx context.Context) error {
	if !a.enter(ctx, guard.PathLogin) {
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	res := a.session.Login(ctx, email, password)
	if !res.Success {
		return a.fail(res.Error)
	}

	a.notices.Success("Login successful!")
	a.syncPoller()
	a.navigate(ctx, guard.PathDashboard)
	return nil
}

// Register collects the sign-up form. The password is asked twice.
func (a *App) Register(ctx context.Context) error {
	if !a.enter(ctx, guard.PathRegister) {
		return nil
	}

	var form services.RegisterForm
	var err error
	if form.Name, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if form.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if form.Password, err = getPassword("Enter password", a.out); err != nil {
		return err
	}
	if form.ConfirmPassword, err = getPassword("Confirm password", a.out); err != nil {
		return err
	}

	res := a.session.Register(ctx, form)
	if !res.Success {
		return a.fail(res.Error)
	}

	a.notices.Success("Registration successful! Welcome to iReporter!")
	if !a.session.IsAuthenticated() && res.Data != nil && res.Data.Message != "" {
		a.notices.Info(res.Data.Message)
	}
	a.syncPoller()
	a.navigate(ctx, guard.PathDashboard)
	return nil
}

// Verify confirms an email address with the token from the verification
// mail. A successful verification logs the user in.
func (a *App) Verify(ctx context.Context, args []string) error {
	if !a.enter(ctx, guard.PathVerifyEmail) {
		return nil
	}

	token := ""
	if len(args) > 0 {
		token = args[0]
	} else {
		var err error
		if token, err = getSimpleText(a.reader, "Enter verification token", a.out); err != nil {
			return err
		}
	}
	if strings.TrimSpace(token) == "" {
		return a.fail("Verification token is required")
	}

	res := a.session.VerifyEmail(ctx, strings.TrimSpace(token))
	if !res.Success {
		return a.fail(res.Error)
	}

	a.notices.Success("Email verified successfully! Welcome to iReporter!")
	a.syncPoller()
	a.navigate(ctx, guard.PathDashboard)
	return nil
}

// Resend asks the backend for a fresh verification email.
func (a *App) Resend(ctx context.Context, args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else if u := a.session.User(); u != nil {
		email = u.Email
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}
	if strings.TrimSpace(email) == "" {
		return a.fail("Please enter your email address")
	}

	if _, err := a.users.ResendVerification(ctx, email); err != nil {
		return a.fail(services.Message(err, "Failed to send verification email"))
	}
	a.notices.Success("Verification email sent! Please check your inbox.")
	return nil
}

// Logout ends the session locally; the backend is not contacted.
func (a *App) Logout(ctx context.Context) error {
	if !a.session.IsAuthenticated() && !a.tokenPresent(ctx) {
		a.println("You are not logged in.")
		return nil
	}
	a.session.Logout(ctx)
	a.syncPoller()
	a.notices.Info("Logged out")
	a.navigate(ctx, a.currentPath())
	return nil
}

// Profile shows the current account and lets the user change the name or
// email. Empty answers keep the current values.
func (a *App) Profile(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		a.navigate(ctx, guard.PathDashboard)
		return session.ErrNotAuthenticated
	}

	verified := "no"
	if u.EmailVerified {
		verified = "yes"
	}
	a.println(fmt.Sprintf("Name: %s\nEmail: %s (verified: %s)\nRole: %s", u.Name, u.Email, verified, u.Role))

	name, err := getTextOr(a.reader, "New name", u.Name, a.out)
	if err != nil {
		return err
	}
	email, err := getTextOr(a.reader, "New email", u.Email, a.out)
	if err != nil {
		return err
	}

	var p models.ProfileUpdate
	if name != u.Name {
		p.Name = name
	}
	if email != u.Email {
		p.Email = email
	}
	if p == (models.ProfileUpdate{}) {
		a.println("Nothing to update.")
		return nil
	}

	if err := a.session.UpdateProfile(ctx, p); err != nil {
		return a.fail(services.Message(err, "Failed to update profile"))
	}
	a.notices.Success("Profile updated successfully")
	return nil
}
