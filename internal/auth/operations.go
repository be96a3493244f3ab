package auth

import (
	"context"

	"matdepot/authctl/internal/api"
	"matdepot/authctl/internal/models"
	"matdepot/authctl/internal/store"
)

func (m *Manager) persistCredentials(ctx context.Context, creds models.Credentials) error {
	m.tokens.set(creds)
	return m.store.Save(ctx, creds)
}

func (m *Manager) clearCredentials(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clear credential store failed")
	}
	m.tokens.clear()
}

// Initialize restores a previous session at startup. It never returns
// an error: a missing, stale or rejected token resolves to the
// anonymous state after cleanup.
func (m *Manager) Initialize(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	creds, err := m.store.Load(ctx)
	if err != nil {
		if err != store.ErrNoCredentials {
			m.log.Warn().Err(err).Msg("load credential store failed")
		}
		m.setAnonymous(EventLogout)
		return
	}

	m.tokens.set(creds)

	user, err := m.backend.Me(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("stored token rejected, falling back to anonymous")
		m.clearCredentials(ctx)
		m.setAnonymous(EventLogout)
		return
	}

	m.setAuthenticated(user, EventLoginSuccess)
}

// Login authenticates with password credentials. When the account has
// 2FA enabled the backend withholds the token and the call reports
// mfaRequired=true without touching auth state; the caller drives the
// OTP sub-flow via RequestOTP/VerifyOTP.
func (m *Manager) Login(ctx context.Context, email, password string) (mfaRequired bool, err error) {
	if err := m.begin("login"); err != nil {
		return false, err
	}
	defer m.end("login")

	m.opMu.Lock()
	defer m.opMu.Unlock()

	res, err := m.backend.Login(ctx, models.NormalizeEmail(email), password)
	if err != nil {
		return false, err
	}
	if res.MFARequired {
		return true, nil
	}

	if err := m.persistCredentials(ctx, models.Credentials{Token: res.Token, SessionID: res.SessionID}); err != nil {
		return false, err
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		return false, err
	}

	m.setAuthenticated(user, EventLoginSuccess)
	return false, nil
}

func (m *Manager) RequestOTP(ctx context.Context, email string) error {
	if err := m.begin("request-otp"); err != nil {
		return err
	}
	defer m.end("request-otp")

	return m.backend.RequestOTP(ctx, models.NormalizeEmail(email))
}

// VerifyOTP completes an OTP challenge. The backend returns the user
// inline, so no secondary profile fetch happens here.
func (m *Manager) VerifyOTP(ctx context.Context, email, code string) error {
	if err := m.begin("verify-otp"); err != nil {
		return err
	}
	defer m.end("verify-otp")

	m.opMu.Lock()
	defer m.opMu.Unlock()

	res, err := m.backend.VerifyOTP(ctx, models.NormalizeEmail(email), code)
	if err != nil {
		return err
	}

	if err := m.persistCredentials(ctx, models.Credentials{Token: res.Token, SessionID: res.SessionID}); err != nil {
		return err
	}

	m.setAuthenticated(res.User, EventLoginSuccess)
	return nil
}

// Register creates an account and persists the returned token. The full
// profile is fetched right after; if that fetch fails the cached user
// falls back to a minimal record built from the registration input.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if err := m.begin("register"); err != nil {
		return err
	}
	defer m.end("register")

	m.opMu.Lock()
	defer m.opMu.Unlock()

	email = models.NormalizeEmail(email)

	token, err := m.backend.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	if err := m.persistCredentials(ctx, models.Credentials{Token: token}); err != nil {
		return err
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("profile fetch after register failed, caching minimal user")
		user = models.User{Name: name, Email: email}
	}

	m.setAuthenticated(user, EventLoginSuccess)
	return nil
}

// Logout invalidates the server-side session best-effort, then clears
// local state unconditionally.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.backend.Logout(ctx); err != nil {
		m.log.Debug().Err(err).Msg("server-side logout failed, clearing locally anyway")
	}

	m.clearCredentials(ctx)
	m.setAnonymous(EventLogout)
}

func (m *Manager) RequestEmailChange(ctx context.Context, currentPassword, newEmail string) error {
	if err := m.begin("request-email-change"); err != nil {
		return err
	}
	defer m.end("request-email-change")

	return m.backend.RequestEmailChange(ctx, currentPassword, models.NormalizeEmail(newEmail))
}

// VerifyEmailChange confirms the pending address with its OTP. Only the
// email field of the cached user changes.
func (m *Manager) VerifyEmailChange(ctx context.Context, newEmail, code string) error {
	if err := m.begin("verify-email-change"); err != nil {
		return err
	}
	defer m.end("verify-email-change")

	m.opMu.Lock()
	defer m.opMu.Unlock()

	email, err := m.backend.VerifyEmailChange(ctx, models.NormalizeEmail(newEmail), code)
	if err != nil {
		return err
	}

	m.patchUser(EventEmailChanged, func(u *models.User) {
		u.Email = email
	})
	return nil
}

// Toggle2FA flips the account flag server-side and mirrors the result.
func (m *Manager) Toggle2FA(ctx context.Context) (bool, error) {
	if err := m.begin("toggle-2fa"); err != nil {
		return false, err
	}
	defer m.end("toggle-2fa")

	m.opMu.Lock()
	defer m.opMu.Unlock()

	enabled, err := m.backend.Toggle2FA(ctx)
	if err != nil {
		return false, err
	}

	m.patchUser(EventTwoFAToggled, func(u *models.User) {
		u.TwoFactorEnabled = enabled
	})
	return enabled, nil
}

// UpdateUser merges a partial profile edit into the cached user. Local
// only, no network call.
func (m *Manager) UpdateUser(patch models.UserPatch) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.patchUser(EventProfilePatched, func(u *models.User) {
		*u = patch.Apply(*u)
	})
}

// Revalidate re-checks the held token against the backend. A rejected
// token clears local state like the startup path does; transport
// failures leave the session alone and are returned to the caller.
func (m *Manager) Revalidate(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.tokens.Token() == "" {
		return nil
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			m.log.Info().Msg("session revoked remotely, logging out")
			m.clearCredentials(ctx)
			m.setAnonymous(EventLogout)
			return nil
		}
		return err
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	return nil
}
