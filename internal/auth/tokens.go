package auth

import (
	"sync"

	"matdepot/authctl/internal/models"
)

// TokenSource is the in-memory mirror of the persisted credential pair.
// The API client reads it on every request; only the Manager writes it.
type TokenSource struct {
	mu    sync.RWMutex
	creds models.Credentials
}

func NewTokenSource() *TokenSource {
	return &TokenSource{}
}

func (t *TokenSource) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.creds.Token
}

func (t *TokenSource) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.creds.SessionID
}

func (t *TokenSource) set(creds models.Credentials) {
	t.mu.Lock()
	t.creds = creds
	t.mu.Unlock()
}

func (t *TokenSource) clear() {
	t.set(models.Credentials{})
}
