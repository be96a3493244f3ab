package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"matdepot/authctl/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, "")
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials on empty store, got %v", err)
	}

	creds := models.Credentials{Token: "tok", SessionID: "s1"}
	if err := s.Save(ctx, creds); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != creds {
		t.Fatalf("expected %+v, got %+v", creds, got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("credentials file must be 0600, got %v", info.Mode().Perm())
	}
}

func TestFileStoreClearRemovesBothEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, "")
	ctx := context.Background()

	if err := s.Save(ctx, models.Credentials{Token: "tok", SessionID: "s1"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials after clear, got %v", err)
	}

	// Clearing an already-empty store is fine.
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("double clear failed: %v", err)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path, "hunter2")
	ctx := context.Background()

	creds := models.Credentials{Token: "secret-token", SessionID: "s1"}
	if err := s.Save(ctx, creds); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if strings.Contains(string(raw), "secret-token") {
		t.Fatalf("token must not appear in plaintext on disk")
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != creds {
		t.Fatalf("expected %+v, got %+v", creds, got)
	}

	// A different secret cannot open the payload.
	wrong := NewFileStore(path, "other-secret")
	if _, err := wrong.Load(ctx); err == nil {
		t.Fatalf("expected decryption failure with the wrong secret")
	}
}
