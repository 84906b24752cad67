// Package cache wraps a translation Backend with a Redis-backed result cache.
// Identical (text, source, target) requests are answered without calling the
// backend until the entry expires.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nadzzz/parley/internal/translator"
)

const keyPrefix = "parley:translation:"

// Store is the key/value surface the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisStore implements Store on a go-redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses redisURL and verifies the server is reachable.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get returns the value at key; ok is false on a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value at key with a ttl.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Backend is a caching translator.Backend.
type Backend struct {
	next  translator.Backend
	store Store
	ttl   time.Duration
}

var _ translator.Backend = (*Backend)(nil)

// New wraps next with store. Cache failures are logged and fall through to
// next; they never fail a translation.
func New(next translator.Backend, store Store, ttl time.Duration) *Backend {
	return &Backend{next: next, store: store, ttl: ttl}
}

// Name reports the wrapped backend's name.
func (b *Backend) Name() string { return b.next.Name() + "+cache" }

// Translate answers from the cache or delegates and stores the result.
func (b *Backend) Translate(ctx context.Context, text, source, target string) (*translator.Translation, error) {
	key := Key(b.next.Name(), text, source, target)

	if raw, ok, err := b.store.Get(ctx, key); err != nil {
		slog.Warn("translation cache read failed", "error", err)
	} else if ok {
		var cached translator.Translation
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			slog.Debug("translation cache hit", "key", key)
			return &cached, nil
		}
		slog.Warn("discarding corrupt cache entry", "key", key)
	}

	out, err := b.next.Translate(ctx, text, source, target)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := b.store.Set(ctx, key, string(data), b.ttl); err != nil {
			slog.Warn("translation cache write failed", "error", err)
		}
	}
	return out, nil
}

// Ping reports whether the cache store is reachable.
func (b *Backend) Ping(ctx context.Context) error { return b.store.Ping(ctx) }

// Close closes the store and the wrapped backend.
func (b *Backend) Close() error {
	storeErr := b.store.Close()
	if err := b.next.Close(); err != nil {
		return err
	}
	return storeErr
}

// Key derives the cache key for a request.
func Key(backend, text, source, target string) string {
	h := sha256.New()
	for _, part := range []string{backend, source, target, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
