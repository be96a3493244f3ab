package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"matdepot/authctl/internal/models"
)

// FileStore keeps credentials in a 0600 JSON file. When a secret is
// configured the payload is sealed with a key derived from it (see
// crypto.go).
type FileStore struct {
	path   string
	secret string
}

func NewFileStore(path, secret string) *FileStore {
	return &FileStore{path: os.ExpandEnv(path), secret: secret}
}

func (s *FileStore) Load(_ context.Context) (models.Credentials, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Credentials{}, ErrNoCredentials
		}
		return models.Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	if s.secret != "" {
		raw, err = open(raw, s.secret)
		if err != nil {
			return models.Credentials{}, fmt.Errorf("decrypt credentials: %w", err)
		}
	}

	var creds models.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return models.Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	if creds.Token == "" {
		return models.Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

func (s *FileStore) Save(_ context.Context, creds models.Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if s.secret != "" {
		raw, err = seal(raw, s.secret)
		if err != nil {
			return fmt.Errorf("encrypt credentials: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	// Write-then-rename so a crash never leaves a half-written pair.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
