// Package flow holds the page-level step machines for the two
// multi-step auth forms. Flows are driven from a single event loop
// (prompt or UI handler) and are not goroutine-safe.
package flow

import "context"

// ResendCooldownSeconds is the fixed countdown armed whenever an OTP is
// (re)requested. Resend is disabled until it reaches zero.
const ResendCooldownSeconds = 60

type LoginMode string

const (
	ModePassword LoginMode = "password"
	ModeOTPLogin LoginMode = "otp-login"
)

type LoginState string

const (
	LoginStatePassword LoginState = "password-entry"
	LoginStateEmail    LoginState = "email-entry"
	LoginStateOTP      LoginState = "otp-entry"
	LoginStateDone     LoginState = "authenticated"
)

// Authenticator is the slice of the auth manager the login form needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (mfaRequired bool, err error)
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
}

// LoginFlow models the login form: password entry that may fork into an
// OTP challenge, or a passwordless otp-login mode. Errors never advance
// state; the user retries within the state they are in.
type LoginFlow struct {
	auth Authenticator

	mode     LoginMode
	state    LoginState
	email    string
	code     string
	otpSent  bool
	cooldown int
	err      error
}

func NewLoginFlow(auth Authenticator) *LoginFlow {
	return &LoginFlow{
		auth:  auth,
		mode:  ModePassword,
		state: LoginStatePassword,
	}
}

func (f *LoginFlow) Mode() LoginMode     { return f.mode }
func (f *LoginFlow) State() LoginState   { return f.state }
func (f *LoginFlow) Err() error          { return f.err }
func (f *LoginFlow) OTPSent() bool       { return f.otpSent }
func (f *LoginFlow) Code() string        { return f.code }
func (f *LoginFlow) Cooldown() int       { return f.cooldown }
func (f *LoginFlow) SetCode(code string) { f.code = code }

// SwitchMode toggles between password and passwordless login. The
// switch wipes the OTP-sent flag, the entered code, any inline error
// and the resend countdown.
func (f *LoginFlow) SwitchMode(mode LoginMode) {
	if mode == f.mode {
		return
	}
	f.mode = mode
	f.otpSent = false
	f.code = ""
	f.err = nil
	f.cooldown = 0
	if mode == ModeOTPLogin {
		f.state = LoginStateEmail
	} else {
		f.state = LoginStatePassword
	}
}

// SubmitPassword attempts a password login. An mfaRequired answer moves
// the form to OTP entry with the countdown armed; a full success ends
// the flow.
func (f *LoginFlow) SubmitPassword(ctx context.Context, email, password string) error {
	if f.state != LoginStatePassword {
		return nil
	}

	mfaRequired, err := f.auth.Login(ctx, email, password)
	if err != nil {
		f.err = err
		return err
	}

	f.err = nil
	if mfaRequired {
		f.email = email
		f.state = LoginStateOTP
		f.otpSent = true
		f.cooldown = ResendCooldownSeconds
		return nil
	}

	f.state = LoginStateDone
	return nil
}

// RequestCode requests (or re-requests) an OTP. While the countdown is
// running the call is a no-op. A fresh request rearms the countdown and
// clears the previously entered code. An empty email re-uses the one
// already captured (the resend case).
func (f *LoginFlow) RequestCode(ctx context.Context, email string) error {
	if f.state != LoginStateEmail && f.state != LoginStateOTP {
		return nil
	}
	if f.cooldown > 0 {
		return nil
	}
	if email != "" {
		f.email = email
	}

	if err := f.auth.RequestOTP(ctx, f.email); err != nil {
		f.err = err
		return err
	}

	f.err = nil
	f.otpSent = true
	f.code = ""
	f.cooldown = ResendCooldownSeconds
	f.state = LoginStateOTP
	return nil
}

// SubmitCode verifies the entered OTP and completes the login.
func (f *LoginFlow) SubmitCode(ctx context.Context) error {
	if f.state != LoginStateOTP {
		return nil
	}

	if err := f.auth.VerifyOTP(ctx, f.email, f.code); err != nil {
		f.err = err
		return err
	}

	f.err = nil
	f.state = LoginStateDone
	return nil
}

// Tick advances the resend countdown by one second, stopping at zero.
// The caller owns the once-per-second cadence.
func (f *LoginFlow) Tick() {
	if f.cooldown > 0 {
		f.cooldown--
	}
}
