package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRateLimiterOnlyCountsListedMethods(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Middleware(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		return rw.Code
	}

	if code := do(http.MethodPost); code != http.StatusOK {
		t.Fatalf("expected first POST to pass, got %d", code)
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for second POST, got %d", code)
	}
	if code := do(http.MethodGet); code != http.StatusOK {
		t.Fatalf("expected GET to bypass limiter, got %d", code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || rl.allow("a") {
		t.Fatal("expected exactly one request in the first window")
	}
	now = now.Add(2 * time.Minute)
	if !rl.allow("a") {
		t.Fatal("expected a fresh window after reset time")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	var outbound string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		outbound = r.Header.Get(RequestIDHeader)
	}))
	defer upstream.Close()

	client := &http.Client{Transport: RequestIDTransport{}}
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, _ := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Errorf("outbound call failed: %v", err)
			return
		}
		resp.Body.Close()
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("expected response header req-123, got %q", rw.Header().Get(RequestIDHeader))
	}
	if outbound != "req-123" {
		t.Fatalf("expected outbound request id req-123, got %q", outbound)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected [a b], got %v", order)
	}
}

func TestWithRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := WithRecover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/orders", nil))
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
}

func redisLimited(rl *RedisRateLimiter, failOpen bool) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return rl.Middleware(logger, failOpen, http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func serveMethod(h http.Handler, method string) int {
	req := httptest.NewRequest(method, "/login", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw.Code
}

func TestRedisRateLimiterSkipsUnlistedMethods(t *testing.T) {
	// Nothing listens on port 1, so any Redis round trip fails.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	closed := redisLimited(NewRedisRateLimiter(rdb, 1, time.Minute, "test"), false)
	if code := serveMethod(closed, http.MethodGet); code != http.StatusOK {
		t.Fatalf("expected GET to bypass the limiter, got %d", code)
	}
	if code := serveMethod(closed, http.MethodPost); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for POST with redis down, got %d", code)
	}

	open := redisLimited(NewRedisRateLimiter(rdb, 1, time.Minute, "test"), true)
	if code := serveMethod(open, http.MethodPost); code != http.StatusOK {
		t.Fatalf("expected fail-open POST to pass, got %d", code)
	}
}

func TestRedisRateLimiterCountsPosts(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	prefix := "test-rl-" + time.Now().Format("150405.000000000")
	h := redisLimited(NewRedisRateLimiter(rdb, 1, time.Minute, prefix), false)

	for i := 0; i < 3; i++ {
		if code := serveMethod(h, http.MethodGet); code != http.StatusOK {
			t.Fatalf("expected GET %d to pass, got %d", i, code)
		}
	}
	if code := serveMethod(h, http.MethodPost); code != http.StatusOK {
		t.Fatalf("expected first POST to pass, got %d", code)
	}
	if code := serveMethod(h, http.MethodPost); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second POST, got %d", code)
	}
}
