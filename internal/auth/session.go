package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionTTL = 7 * 24 * time.Hour

// SessionStore keeps signed-in identities keyed by an opaque token.
type SessionStore interface {
	Create(ctx context.Context, id Identity) (string, error)
	Get(ctx context.Context, token string) (*Identity, error)
	Delete(ctx context.Context, token string) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, id Identity) (string, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("auth: failed to generate session token: %w", err)
	}

	data, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("auth: failed to marshal identity: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(token.String()), data, sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("auth: failed to store session: %w", err)
	}

	return token.String(), nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Identity, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: failed to load session: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("auth: failed to unmarshal identity: %w", err)
	}

	return &id, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("auth: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
