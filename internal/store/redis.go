package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matdepot/authctl/internal/config"
	"matdepot/authctl/internal/models"
)

// RedisStore keeps the credential pair under a single key, for headless
// installs where several processes share one login. One key keeps the
// token/session-id pair atomic.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, key: cfg.Key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (models.Credentials, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.Credentials{}, ErrNoCredentials
		}
		return models.Credentials{}, fmt.Errorf("redis get: %w", err)
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

func (s *RedisStore) Save(ctx context.Context, creds models.Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
