package store

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const saltSize = 16

func deriveKey(secret string, salt []byte) (*[32]byte, error) {
	raw, err := scrypt.Key([]byte(secret), salt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// seal produces salt || nonce || box.
func seal(plaintext []byte, secret string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key, err := deriveKey(secret, salt)
	if err != nil {
		return nil, err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

func open(sealed []byte, secret string) ([]byte, error) {
	if len(sealed) < saltSize+24+secretbox.Overhead {
		return nil, fmt.Errorf("sealed payload too short")
	}

	key, err := deriveKey(secret, sealed[:saltSize])
	if err != nil {
		return nil, err
	}

	var nonce [24]byte
	copy(nonce[:], sealed[saltSize:saltSize+24])

	plaintext, ok := secretbox.Open(nil, sealed[saltSize+24:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("payload authentication failed")
	}
	return plaintext, nil
}
