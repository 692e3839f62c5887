package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// RedisStore implements Store backed by Redis. Keys expire together with the
// device code, so the store cleans up abandoned flows on its own.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create stores the session with a TTL derived from its expiry time.
func (s *RedisStore) Create(ctx context.Context, sess *Session) (string, error) {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return "", errors.New("session has already expired")
	}

	id := uuid.NewString()
	sess.ID = id

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshaling session: %w", err)
	}

	if err := s.client.Set(ctx, sessionPrefix+id, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}

	return id, nil
}

// Get retrieves a session, mapping redis.Nil to ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}

	return &sess, nil
}

// Delete removes a session. DEL on an absent key is a no-op, which gives the
// delete-if-present semantics concurrent pollers rely on.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CheckHealth verifies Redis connectivity.
func (s *RedisStore) CheckHealth(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
