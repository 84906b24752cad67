package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nadzzz/parley/internal/translator"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }
func (m *memStore) Close() error                   { return nil }

type countingBackend struct {
	calls int
	err   error
}

func (c *countingBackend) Name() string { return "counting" }

func (c *countingBackend) Translate(ctx context.Context, text, source, target string) (*translator.Translation, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &translator.Translation{Text: "Hello world", DetectedSource: "fr"}, nil
}

func (c *countingBackend) Close() error { return nil }

func TestCacheHit(t *testing.T) {
	t.Parallel()

	next := &countingBackend{}
	store := newMemStore()
	b := New(next, store, time.Hour)

	for i := 0; i < 3; i++ {
		out, err := b.Translate(context.Background(), "Bonjour le monde", "auto", "en")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if out.Text != "Hello world" || out.DetectedSource != "fr" {
			t.Fatalf("out = %+v", out)
		}
	}
	if next.calls != 1 {
		t.Errorf("backend calls = %d, want 1", next.calls)
	}
	key := Key("counting", "Bonjour le monde", "auto", "en")
	if store.ttls[key] != time.Hour {
		t.Errorf("ttl = %v", store.ttls[key])
	}
}

func TestCacheKeyDistinguishesTargets(t *testing.T) {
	t.Parallel()

	if Key("b", "text", "auto", "en") == Key("b", "text", "auto", "de") {
		t.Fatal("keys collide across targets")
	}
	if Key("b", "ab", "c", "d") == Key("b", "a", "bc", "d") {
		t.Fatal("keys collide across field boundaries")
	}
}

func TestCacheFailuresFallThrough(t *testing.T) {
	t.Parallel()

	next := &countingBackend{}
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	b := New(next, store, time.Minute)

	if _, err := b.Translate(context.Background(), "Hola", "auto", "en"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("backend calls = %d, want 1", next.calls)
	}
}

func TestBackendErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	next := &countingBackend{err: errors.New("network error")}
	store := newMemStore()
	b := New(next, store, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := b.Translate(context.Background(), "Hola", "auto", "en"); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 || len(store.data) != 0 {
		t.Errorf("calls = %d, cached = %d", next.calls, len(store.data))
	}
	if b.Name() != "counting+cache" {
		t.Errorf("name = %q", b.Name())
	}
}
