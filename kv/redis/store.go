package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vitalsync/donorlink/kv"
)

// Store is a Redis-backed [kv.Store]. Keys are namespaced under a fixed
// prefix so one Redis instance can serve several deployments.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] backed by the given Redis client. prefix sets
// the Redis key namespace; empty means "dl".
//
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "dl"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(key string) string {
	return s.prefix + ":" + key
}

// Get returns the value for key and whether it was present.
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return value, true, nil
}

// Set stores value under key with no expiry, overwriting any prior value.
//
//	Performance: 1 Redis SET.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
//
//	Performance: 1 Redis DEL.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}
