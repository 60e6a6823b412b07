package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fabclean/fabclean-web/services/web-service/internal/session"
)

func TestOpenSessionStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	var bg background

	store, checks, err := openSessionStore(ctx, logger, "", nil, time.Hour, &bg)
	if err != nil {
		t.Fatalf("expected memory store, got %v", err)
	}
	if _, ok := store.(*session.MemoryStore); !ok {
		t.Fatalf("expected *session.MemoryStore, got %T", store)
	}
	if len(checks) != 0 {
		t.Fatalf("expected no ready checks, got %d", len(checks))
	}

	if _, _, err := openSessionStore(ctx, logger, "redis", nil, time.Hour, &bg); err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected REDIS_ADDR error, got %v", err)
	}

	t.Setenv("DATABASE_URL", "")
	if _, _, err := openSessionStore(ctx, logger, "postgres", nil, time.Hour, &bg); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}

	if _, _, err := openSessionStore(ctx, logger, "etcd", nil, time.Hour, &bg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBackgroundWaitJoinsWorkers(t *testing.T) {
	var bg background
	ctx, cancel := context.WithCancel(context.Background())
	flushed := make(chan struct{})
	bg.Go(func() {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		close(flushed)
	})

	cancel()
	if !bg.Wait(time.Second) {
		t.Fatal("expected workers to finish")
	}
	select {
	case <-flushed:
	default:
		t.Fatal("expected Wait to return only after the worker finished")
	}
}

func TestBackgroundWaitIsBounded(t *testing.T) {
	var bg background
	release := make(chan struct{})
	defer close(release)
	bg.Go(func() { <-release })

	start := time.Now()
	if bg.Wait(20 * time.Millisecond) {
		t.Fatal("expected Wait to give up on a stuck worker")
	}
	if time.Since(start) > time.Second {
		t.Fatal("expected Wait to respect its bound")
	}
}
