package cli

import (
	"context"
	"fmt"
	"time"

	"matdepot/authctl/internal/auth"
	"matdepot/authctl/internal/flow"
)

// secondsTicker feeds wall-clock seconds into a flow's Tick between
// prompt iterations, so the resend countdown runs while the user reads
// their inbox.
type secondsTicker struct {
	last time.Time
}

func newSecondsTicker() *secondsTicker {
	return &secondsTicker{last: time.Now()}
}

func (t *secondsTicker) catchUp(tick func()) {
	elapsed := int(time.Since(t.last).Seconds())
	for i := 0; i < elapsed; i++ {
		tick()
	}
	t.last = t.last.Add(time.Duration(elapsed) * time.Second)
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	if a.manager.State() == auth.StateAuthenticated {
		fmt.Fprintf(a.out, "already signed in as %s\n", a.manager.CurrentUser().Email)
		return nil
	}

	f := flow.NewLoginFlow(a.manager)
	for _, arg := range args {
		if arg == "--otp" {
			f.SwitchMode(flow.ModeOTPLogin)
		}
	}

	if f.Mode() == flow.ModePassword {
		if err := a.loginWithPassword(ctx, f); err != nil {
			return err
		}
	} else {
		if err := a.loginWithOTP(ctx, f); err != nil {
			return err
		}
	}

	if f.State() == flow.LoginStateOTP {
		if err := a.promptOTP(ctx, f); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "signed in as %s\n", a.manager.CurrentUser().Email)
	return nil
}

func (a *App) loginWithPassword(ctx context.Context, f *flow.LoginFlow) error {
	for f.State() == flow.LoginStatePassword {
		email, err := a.prompt("email")
		if err != nil {
			return err
		}
		password, err := a.prompt("password")
		if err != nil {
			return err
		}

		if err := f.SubmitPassword(ctx, email, password); err != nil {
			fmt.Fprintf(a.out, "login failed: %v\n", err)
		}
	}

	if f.State() == flow.LoginStateOTP {
		fmt.Fprintln(a.out, "a verification code was sent to your email")
	}
	return nil
}

func (a *App) loginWithOTP(ctx context.Context, f *flow.LoginFlow) error {
	for f.State() == flow.LoginStateEmail {
		email, err := a.prompt("email")
		if err != nil {
			return err
		}

		if err := f.RequestCode(ctx, email); err != nil {
			fmt.Fprintf(a.out, "could not send code: %v\n", err)
			continue
		}
		fmt.Fprintln(a.out, "a login code was sent to your email")
	}
	return nil
}

func (a *App) promptOTP(ctx context.Context, f *flow.LoginFlow) error {
	ticker := newSecondsTicker()
	for f.State() == flow.LoginStateOTP {
		input, err := a.prompt("code (or 'resend')")
		if err != nil {
			return err
		}

		ticker.catchUp(f.Tick)

		if input == "resend" {
			if f.Cooldown() > 0 {
				fmt.Fprintf(a.out, "resend available in %ds\n", f.Cooldown())
				continue
			}
			if err := f.RequestCode(ctx, ""); err != nil {
				fmt.Fprintf(a.out, "could not resend code: %v\n", err)
				continue
			}
			fmt.Fprintln(a.out, "a new code was sent")
			continue
		}

		f.SetCode(input)
		if err := f.SubmitCode(ctx); err != nil {
			fmt.Fprintf(a.out, "verification failed: %v\n", err)
		}
	}
	return nil
}
