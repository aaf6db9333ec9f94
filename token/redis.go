package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the session under the configured key names in
// Redis. Intended for headless consumers (dashboard agents, schedulers)
// that share one session across restarts or replicas. TTL, when positive,
// bounds how long an untouched session survives; zero keeps it until
// Clear.
type RedisStore struct {
	client redis.UniversalClient
	keys   KeyNames
	ttl    time.Duration
}

// NewRedisStore returns a store backed by the given client.
func NewRedisStore(client redis.UniversalClient, keys KeyNames, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if !keys.valid() {
		return nil, ErrInvalidKeyNames
	}
	return &RedisStore{client: client, keys: keys, ttl: ttl}, nil
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	vals, err := r.client.MGet(ctx, r.keys.AccessToken, r.keys.RefreshToken, r.keys.expiresKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess := &Session{
		AccessToken:  stringValue(vals[0]),
		RefreshToken: stringValue(vals[1]),
	}
	if !sess.Complete() {
		return nil, ErrNotFound
	}
	if v := stringValue(vals[2]); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			sess.ExpiresAt = t
		}
	}
	return sess, nil
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.keys.AccessToken, s.AccessToken, r.ttl)
	pipe.Set(ctx, r.keys.RefreshToken, s.RefreshToken, r.ttl)
	if s.ExpiresAt.IsZero() {
		pipe.Del(ctx, r.keys.expiresKey())
	} else {
		pipe.Set(ctx, r.keys.expiresKey(), s.ExpiresAt.UTC().Format(time.RFC3339), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context) error {
	err := r.client.Del(ctx, r.keys.AccessToken, r.keys.RefreshToken, r.keys.expiresKey()).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
