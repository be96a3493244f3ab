package store

import (
	"context"
	"errors"

	"matdepot/authctl/internal/models"
)

// ErrNoCredentials is returned by Load when nothing is persisted.
var ErrNoCredentials = errors.New("no stored credentials")

// CredentialStore persists the bearer token and session id as a single
// unit. Token and session id are saved and cleared together; a partial
// pair never exists on disk.
type CredentialStore interface {
	Load(ctx context.Context) (models.Credentials, error)
	Save(ctx context.Context, creds models.Credentials) error
	Clear(ctx context.Context) error
}
