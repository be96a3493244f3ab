package flow

import (
	"context"
	"errors"
	"testing"
)

type fakeAuth struct {
	loginMFA bool
	loginErr error

	requestErr error
	requestN   int

	verifyErr   error
	verifyEmail string
	verifyCode  string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (bool, error) {
	return f.loginMFA, f.loginErr
}

func (f *fakeAuth) RequestOTP(_ context.Context, email string) error {
	if f.requestErr != nil {
		return f.requestErr
	}
	f.requestN++
	return nil
}

func (f *fakeAuth) VerifyOTP(_ context.Context, email, code string) error {
	f.verifyEmail = email
	f.verifyCode = code
	return f.verifyErr
}

func TestPasswordLoginCompletes(t *testing.T) {
	f := NewLoginFlow(&fakeAuth{})

	if err := f.SubmitPassword(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if f.State() != LoginStateDone {
		t.Fatalf("expected done, got %s", f.State())
	}
}

func TestPasswordLoginForksIntoOTP(t *testing.T) {
	f := NewLoginFlow(&fakeAuth{loginMFA: true})

	if err := f.SubmitPassword(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if f.State() != LoginStateOTP {
		t.Fatalf("expected otp entry, got %s", f.State())
	}
	if !f.OTPSent() || f.Cooldown() != ResendCooldownSeconds {
		t.Fatalf("expected armed countdown, got sent=%v cooldown=%d", f.OTPSent(), f.Cooldown())
	}

	f.SetCode("123456")
	if err := f.SubmitCode(context.Background()); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if f.State() != LoginStateDone {
		t.Fatalf("expected done, got %s", f.State())
	}
}

func TestLoginErrorDoesNotAdvance(t *testing.T) {
	auth := &fakeAuth{loginErr: errors.New("bad credentials")}
	f := NewLoginFlow(auth)

	if err := f.SubmitPassword(context.Background(), "a@b.com", "wrong"); err == nil {
		t.Fatalf("expected error")
	}
	if f.State() != LoginStatePassword || f.Err() == nil {
		t.Fatalf("error must keep the form on password entry with an inline error")
	}

	// Retry within the same state succeeds.
	auth.loginErr = nil
	if err := f.SubmitPassword(context.Background(), "a@b.com", "right"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if f.State() != LoginStateDone || f.Err() != nil {
		t.Fatalf("retry must complete and clear the inline error")
	}
}

func TestCooldownCountsDownOncePerTick(t *testing.T) {
	f := NewLoginFlow(&fakeAuth{})
	f.SwitchMode(ModeOTPLogin)

	if err := f.RequestCode(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if f.Cooldown() != ResendCooldownSeconds {
		t.Fatalf("expected %d, got %d", ResendCooldownSeconds, f.Cooldown())
	}

	for want := ResendCooldownSeconds - 1; want >= 0; want-- {
		f.Tick()
		if f.Cooldown() != want {
			t.Fatalf("expected %d after tick, got %d", want, f.Cooldown())
		}
	}

	// Stops at zero.
	f.Tick()
	if f.Cooldown() != 0 {
		t.Fatalf("cooldown must stop at 0, got %d", f.Cooldown())
	}
}

func TestResendIsNoOpWhileCoolingDown(t *testing.T) {
	auth := &fakeAuth{}
	f := NewLoginFlow(auth)
	f.SwitchMode(ModeOTPLogin)

	if err := f.RequestCode(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	f.SetCode("111111")

	if err := f.RequestCode(context.Background(), ""); err != nil {
		t.Fatalf("resend during cooldown must be a silent no-op: %v", err)
	}
	if auth.requestN != 1 {
		t.Fatalf("resend during cooldown must not reach the network")
	}
	if f.Code() != "111111" {
		t.Fatalf("a no-op resend must not clear the entered code")
	}

	for i := 0; i < ResendCooldownSeconds; i++ {
		f.Tick()
	}

	if err := f.RequestCode(context.Background(), ""); err != nil {
		t.Fatalf("resend after cooldown failed: %v", err)
	}
	if auth.requestN != 2 {
		t.Fatalf("resend after cooldown must reach the network")
	}
	if f.Code() != "" {
		t.Fatalf("a fresh request must clear the previously entered code")
	}
	if f.Cooldown() != ResendCooldownSeconds {
		t.Fatalf("a fresh request must rearm the countdown")
	}
}

func TestModeSwitchResetsOTPState(t *testing.T) {
	auth := &fakeAuth{}
	f := NewLoginFlow(auth)
	f.SwitchMode(ModeOTPLogin)

	if err := f.RequestCode(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	f.SetCode("123456")
	auth.requestErr = errors.New("boom")
	_ = f.RequestCode(context.Background(), "") // no-op, cooldown running

	f.SwitchMode(ModePassword)

	if f.State() != LoginStatePassword {
		t.Fatalf("expected password entry, got %s", f.State())
	}
	if f.OTPSent() || f.Code() != "" || f.Err() != nil || f.Cooldown() != 0 {
		t.Fatalf("mode switch must reset otp flag, code, error and cooldown")
	}

	f.SwitchMode(ModeOTPLogin)
	if f.State() != LoginStateEmail {
		t.Fatalf("expected email entry, got %s", f.State())
	}
}

func TestVerifyErrorStaysOnOTP(t *testing.T) {
	auth := &fakeAuth{verifyErr: errors.New("invalid code")}
	f := NewLoginFlow(auth)
	f.SwitchMode(ModeOTPLogin)

	if err := f.RequestCode(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	f.SetCode("000000")
	if err := f.SubmitCode(context.Background()); err == nil {
		t.Fatalf("expected verification error")
	}
	if f.State() != LoginStateOTP {
		t.Fatalf("verification failure must not advance state")
	}

	auth.verifyErr = nil
	f.SetCode("123456")
	if err := f.SubmitCode(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if auth.verifyEmail != "a@b.com" || auth.verifyCode != "123456" {
		t.Fatalf("verify used wrong inputs: %q %q", auth.verifyEmail, auth.verifyCode)
	}
	if f.State() != LoginStateDone {
		t.Fatalf("expected done, got %s", f.State())
	}
}
