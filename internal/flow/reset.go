package flow

import (
	"context"
	"errors"

	"matdepot/authctl/internal/api"
	"matdepot/authctl/internal/models"
)

// Client-side checks run before the reset call; neither one costs a
// network round trip.
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

type ResetState string

const (
	ResetStateEmail    ResetState = "email"
	ResetStateOTP      ResetState = "otp"
	ResetStatePassword ResetState = "password"
	ResetStateDone     ResetState = "done"
)

// PasswordResetter is the slice of the REST client the reset form needs.
type PasswordResetter interface {
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// ResetFlow models the forgot-password form: email, otp, password,
// done, strictly forward except the one fallback edge. The entered code
// is not pre-validated when leaving the OTP step; the backend checks it
// on the final reset call, and an EXPIRED or LOCKED answer sends the
// form back to the OTP step with the code cleared.
type ResetFlow struct {
	client PasswordResetter

	state    ResetState
	email    string
	code     string
	cooldown int
	err      error
}

func NewResetFlow(client PasswordResetter) *ResetFlow {
	return &ResetFlow{client: client, state: ResetStateEmail}
}

func (f *ResetFlow) State() ResetState { return f.state }
func (f *ResetFlow) Err() error        { return f.err }
func (f *ResetFlow) Code() string      { return f.code }
func (f *ResetFlow) Cooldown() int     { return f.cooldown }

// SubmitEmail requests a reset code and advances to the OTP step.
func (f *ResetFlow) SubmitEmail(ctx context.Context, email string) error {
	if f.state != ResetStateEmail {
		return nil
	}

	email = models.NormalizeEmail(email)
	if err := f.client.ForgotPassword(ctx, email); err != nil {
		f.err = err
		return err
	}

	f.email = email
	f.err = nil
	f.cooldown = ResendCooldownSeconds
	f.state = ResetStateOTP
	return nil
}

// Resend re-requests a code from the OTP step; a running countdown
// makes it a no-op. A fresh request clears the entered code.
func (f *ResetFlow) Resend(ctx context.Context) error {
	if f.state != ResetStateOTP {
		return nil
	}
	if f.cooldown > 0 {
		return nil
	}

	if err := f.client.ForgotPassword(ctx, f.email); err != nil {
		f.err = err
		return err
	}

	f.err = nil
	f.code = ""
	f.cooldown = ResendCooldownSeconds
	return nil
}

// SubmitCode stores the entered code and advances to the password step
// without asking the backend about it. The code is only judged by the
// final reset call.
func (f *ResetFlow) SubmitCode(code string) {
	if f.state != ResetStateOTP {
		return
	}
	f.code = code
	f.err = nil
	f.state = ResetStatePassword
}

// SubmitPassword performs the authoritative reset. Validation failures
// and ordinary backend rejections keep the form on the password step;
// an expired or locked code falls back to the OTP step with the code
// field cleared. Done is terminal: every existing session has been
// invalidated server-side.
func (f *ResetFlow) SubmitPassword(ctx context.Context, newPassword, confirmPassword string) error {
	if f.state != ResetStatePassword {
		return nil
	}

	if newPassword != confirmPassword {
		f.err = ErrPasswordMismatch
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLength {
		f.err = ErrPasswordTooShort
		return ErrPasswordTooShort
	}

	if err := f.client.ResetPassword(ctx, f.email, f.code, newPassword); err != nil {
		if apiErr, ok := api.AsError(err); ok && (apiErr.Code == api.CodeExpired || apiErr.Code == api.CodeLocked) {
			f.code = ""
			f.state = ResetStateOTP
		}
		f.err = err
		return err
	}

	f.err = nil
	f.state = ResetStateDone
	return nil
}

// Tick advances the resend countdown by one second, stopping at zero.
func (f *ResetFlow) Tick() {
	if f.cooldown > 0 {
		f.cooldown--
	}
}
