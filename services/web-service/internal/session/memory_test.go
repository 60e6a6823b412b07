package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	if _, ok, _ := s.Get(ctx, "a", "k"); ok {
		t.Fatalf("expected missing key")
	}
	_ = s.Set(ctx, "a", "k", "v1")
	_ = s.Set(ctx, "a", "other", "v2")
	_ = s.Set(ctx, "b", "k", "b1")

	if v, ok, _ := s.Get(ctx, "a", "k"); !ok || v != "v1" {
		t.Fatalf("expected v1, got %q ok=%v", v, ok)
	}

	_ = s.Delete(ctx, "a", "k")
	if _, ok, _ := s.Get(ctx, "a", "k"); ok {
		t.Fatalf("expected k deleted")
	}
	if v, _, _ := s.Get(ctx, "a", "other"); v != "v2" {
		t.Fatalf("expected other key kept, got %q", v)
	}

	_ = s.Delete(ctx, "a")
	if _, ok, _ := s.Get(ctx, "a", "other"); ok {
		t.Fatalf("expected whole session deleted")
	}
	if v, _, _ := s.Get(ctx, "b", "k"); v != "b1" {
		t.Fatalf("expected other session untouched, got %q", v)
	}
}

func TestMemoryStoreExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "a", "k", "v")

	now = now.Add(50 * time.Minute)
	if _, ok, _ := s.Get(ctx, "a", "k"); !ok {
		t.Fatalf("expected value before ttl")
	}

	// writes extend the session
	_ = s.Set(ctx, "a", "k2", "v2")
	now = now.Add(50 * time.Minute)
	if _, ok, _ := s.Get(ctx, "a", "k"); !ok {
		t.Fatalf("expected value after refresh")
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := s.Get(ctx, "a", "k"); ok {
		t.Fatalf("expected session expired")
	}
}

func TestMemoryStoreEvictsOnWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "old", "k", "v")
	now = now.Add(time.Hour)
	_ = s.Set(ctx, "new", "k", "v")

	s.mu.Lock()
	n := len(s.data)
	s.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 live session, got %d", n)
	}
}
