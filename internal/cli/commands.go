package cli

import (
	"context"
	"fmt"

	"matdepot/authctl/internal/security"
)

func (a *App) cmdRegister(ctx context.Context) error {
	name, err := a.prompt("name")
	if err != nil {
		return err
	}
	email, err := a.prompt("email")
	if err != nil {
		return err
	}
	password, err := a.prompt("password")
	if err != nil {
		return err
	}

	if err := a.manager.Register(ctx, name, email, password); err != nil {
		return err
	}

	user := a.manager.CurrentUser()
	fmt.Fprintf(a.out, "registered and signed in as %s\n", user.Email)
	return nil
}

func (a *App) cmdLogout(ctx context.Context) error {
	a.manager.Logout(ctx)
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *App) cmdWhoami() error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	user := a.manager.CurrentUser()
	fmt.Fprintf(a.out, "%s <%s> role=%s 2fa=%v\n", user.Name, user.Email, user.Role, user.TwoFactorEnabled)
	return nil
}

func (a *App) cmdSessions(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	sessions, err := a.sessions.Refresh(ctx)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		marker := " "
		if s.Current {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %-15s  %s  last seen %s\n",
			marker, s.ID, s.IPAddress, s.UserAgent, s.LastSeenAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) cmdRevoke(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: authctl revoke <session-id>")
	}

	if _, err := a.sessions.Refresh(ctx); err != nil {
		return err
	}
	if err := a.sessions.Revoke(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "session revoked")
	return nil
}

func (a *App) cmdRevokeOthers(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	if _, err := a.sessions.Refresh(ctx); err != nil {
		return err
	}
	if err := a.sessions.RevokeAllOthers(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "all other sessions revoked")
	return nil
}

func (a *App) cmdChangeEmail(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	currentPassword, err := a.prompt("current password")
	if err != nil {
		return err
	}
	newEmail, err := a.prompt("new email")
	if err != nil {
		return err
	}

	if err := a.manager.RequestEmailChange(ctx, currentPassword, newEmail); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "a confirmation code was sent to the new address")

	code, err := a.prompt("code")
	if err != nil {
		return err
	}
	if err := a.manager.VerifyEmailChange(ctx, newEmail, code); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "email changed to %s\n", a.manager.CurrentUser().Email)
	return nil
}

func (a *App) cmdToggle2FA(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	enabled, err := a.manager.Toggle2FA(ctx)
	if err != nil {
		return err
	}

	if enabled {
		fmt.Fprintln(a.out, "two-factor authentication enabled")
	} else {
		fmt.Fprintln(a.out, "two-factor authentication disabled")
	}
	return nil
}

func (a *App) cmdToken() error {
	token := a.manager.Token()
	if token == "" {
		return fmt.Errorf("no stored token")
	}

	info, err := security.Inspect(token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "subject:    %s\n", info.Subject)
	if info.SessionID != "" {
		fmt.Fprintf(a.out, "session:    %s\n", info.SessionID)
	}
	if !info.IssuedAt.IsZero() {
		fmt.Fprintf(a.out, "issued at:  %s\n", info.IssuedAt)
	}
	if !info.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "expires at: %s\n", info.ExpiresAt)
	}
	return nil
}
