package cli

import (
	"context"
	"fmt"

	"matdepot/authctl/internal/flow"
)

func (a *App) cmdResetPassword(ctx context.Context) error {
	f := flow.NewResetFlow(a.client)

	for f.State() == flow.ResetStateEmail {
		email, err := a.prompt("email")
		if err != nil {
			return err
		}
		if err := f.SubmitEmail(ctx, email); err != nil {
			fmt.Fprintf(a.out, "could not send reset code: %v\n", err)
			continue
		}
		fmt.Fprintln(a.out, "a reset code was sent to your email")
	}

	ticker := newSecondsTicker()
	for f.State() != flow.ResetStateDone {
		switch f.State() {
		case flow.ResetStateOTP:
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
				if err := f.Resend(ctx); err != nil {
					fmt.Fprintf(a.out, "could not resend code: %v\n", err)
				} else {
					fmt.Fprintln(a.out, "a new code was sent")
				}
				continue
			}

			f.SubmitCode(input)

		case flow.ResetStatePassword:
			newPassword, err := a.prompt("new password")
			if err != nil {
				return err
			}
			confirm, err := a.prompt("confirm password")
			if err != nil {
				return err
			}

			if err := f.SubmitPassword(ctx, newPassword, confirm); err != nil {
				fmt.Fprintf(a.out, "reset failed: %v\n", err)
				if f.State() == flow.ResetStateOTP {
					fmt.Fprintln(a.out, "the code is no longer valid, enter a fresh one")
				}
			}
		}
	}

	fmt.Fprintln(a.out, "password updated; all existing sessions were signed out")
	return nil
}
