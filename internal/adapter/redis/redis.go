// Package redis implements the key-value store on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"armonia/internal/domain"
)

// Store implements domain.KVStore with plain Redis strings. Every key is
// namespaced with prefix.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ domain.KVStore = (*Store)(nil)

// Open connects to addr and pings it.
func Open(addr, prefix string) (*Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, prefix), nil
}

// New wraps an existing client.
func New(rdb goredis.UniversalClient, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}
