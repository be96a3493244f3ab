package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"matdepot/authctl/internal/api"
	"matdepot/authctl/internal/models"
	"matdepot/authctl/internal/store"
)

// ErrInFlight is returned when an operation of the same kind is already
// outstanding. Callers treat it as a no-op, not a failure.
var ErrInFlight = errors.New("operation already in flight")

type State string

const (
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

type Event string

const (
	EventLoginSuccess   Event = "LOGIN_SUCCESS"
	EventLogout         Event = "LOGOUT"
	EventProfilePatched Event = "PROFILE_PATCHED"
	EventEmailChanged   Event = "EMAIL_CHANGED"
	EventTwoFAToggled   Event = "2FA_TOGGLED"
)

// Listener observes state transitions. The user argument is a snapshot;
// nil after logout.
type Listener func(Event, *models.User)

// Backend is the slice of the REST client the manager depends on.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Me(ctx context.Context) (models.User, error)
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (api.VerifyOTPResult, error)
	Logout(ctx context.Context) error
	RequestEmailChange(ctx context.Context, currentPassword, newEmail string) error
	VerifyEmailChange(ctx context.Context, newEmail, code string) (string, error)
	Toggle2FA(ctx context.Context) (bool, error)
}

// Manager is the process-wide authentication state machine. It is the
// sole writer of the credential store, the token source and the cached
// user; every other component reads through it.
type Manager struct {
	backend Backend
	store   store.CredentialStore
	tokens  *TokenSource
	log     zerolog.Logger

	// opMu serializes mutating operations so e.g. a login and a logout
	// can never interleave around the persisted token.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	user      *models.User
	listeners map[int]Listener
	nextID    int

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewManager(backend Backend, creds store.CredentialStore, tokens *TokenSource, log zerolog.Logger) *Manager {
	return &Manager{
		backend:   backend,
		store:     creds,
		tokens:    tokens,
		log:       log,
		state:     StateLoading,
		listeners: make(map[int]Listener),
		inflight:  make(map[string]struct{}),
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns a copy of the cached user, or nil when anonymous.
func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Token() string     { return m.tokens.Token() }
func (m *Manager) SessionID() string { return m.tokens.SessionID() }

// Subscribe registers a listener and returns its unsubscribe func.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setAuthenticated(user models.User, event Event) {
	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = &user
	m.mu.Unlock()
	m.notify(event)
}

func (m *Manager) setAnonymous(event Event) {
	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()
	m.notify(event)
}

func (m *Manager) patchUser(event Event, patch func(*models.User)) {
	m.mu.Lock()
	if m.user != nil {
		patch(m.user)
	}
	m.mu.Unlock()
	m.notify(event)
}

func (m *Manager) notify(event Event) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	user := m.CurrentUser()
	for _, l := range listeners {
		l(event, user)
	}
}

// begin claims the in-flight slot for an operation kind. A duplicate
// concurrent trigger of the same kind is rejected rather than reaching
// the network twice.
func (m *Manager) begin(kind string) error {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	if _, busy := m.inflight[kind]; busy {
		return ErrInFlight
	}
	m.inflight[kind] = struct{}{}
	return nil
}

func (m *Manager) end(kind string) {
	m.inflightMu.Lock()
	delete(m.inflight, kind)
	m.inflightMu.Unlock()
}
