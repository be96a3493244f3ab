// Package session lets an authenticated user view and terminate their
// own active device sessions.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"matdepot/authctl/internal/models"
)

// ErrCurrentSession is returned when a revocation targets the session
// this client is running on.
var ErrCurrentSession = errors.New("cannot revoke the current session")

// Backend is the slice of the REST client the session list needs.
type Backend interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	RevokeSession(ctx context.Context, sessionID string) error
	RevokeOtherSessions(ctx context.Context) error
}

// Manager mirrors the server-side session list. The local copy is only
// updated after the server confirms a change; a failed revocation
// leaves it untouched.
type Manager struct {
	backend Backend
	// currentID yields the locally persisted session id.
	currentID func() string
	log       zerolog.Logger

	mu   sync.RWMutex
	list []models.Session
}

func NewManager(backend Backend, currentID func() string, log zerolog.Logger) *Manager {
	return &Manager{
		backend:   backend,
		currentID: currentID,
		log:       log,
	}
}

// Refresh fetches the session list and marks the entry matching the
// locally held session id as current. Exactly one entry matches for a
// live session.
func (m *Manager) Refresh(ctx context.Context) ([]models.Session, error) {
	sessions, err := m.backend.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	current := m.currentID()
	for i := range sessions {
		sessions[i].Current = sessions[i].ID == current
	}

	m.mu.Lock()
	m.list = sessions
	m.mu.Unlock()

	return m.List(), nil
}

// List returns a copy of the last fetched session list.
func (m *Manager) List() []models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Session, len(m.list))
	copy(out, m.list)
	return out
}

// Revoke terminates exactly one non-current session. The local entry is
// removed only after the delete call succeeds.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == m.currentID() {
		return ErrCurrentSession
	}

	if err := m.backend.RevokeSession(ctx, sessionID); err != nil {
		return err
	}

	m.mu.Lock()
	kept := m.list[:0]
	for _, s := range m.list {
		if s.ID != sessionID {
			kept = append(kept, s)
		}
	}
	m.list = kept
	m.mu.Unlock()

	m.log.Info().Str("session_id", sessionID).Msg("session revoked")
	return nil
}

// RevokeAllOthers bulk-revokes every session except the current one.
// On success the local list collapses to just the current entry.
func (m *Manager) RevokeAllOthers(ctx context.Context) error {
	if err := m.backend.RevokeOtherSessions(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	kept := m.list[:0]
	for _, s := range m.list {
		if s.Current {
			kept = append(kept, s)
		}
	}
	m.list = kept
	m.mu.Unlock()

	m.log.Info().Msg("all other sessions revoked")
	return nil
}
