package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fabclean/fabclean-web/libs/config"
	"github.com/fabclean/fabclean-web/libs/db"
	"github.com/fabclean/fabclean-web/libs/httpx"
	"github.com/fabclean/fabclean-web/libs/kafkax"
	otelx "github.com/fabclean/fabclean-web/libs/otel"
	"github.com/fabclean/fabclean-web/libs/runtime"
	"github.com/fabclean/fabclean-web/services/web-service/internal/api"
	"github.com/fabclean/fabclean-web/services/web-service/internal/events"
	"github.com/fabclean/fabclean-web/services/web-service/internal/pages"
	"github.com/fabclean/fabclean-web/services/web-service/internal/session"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "web-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var (
		checks []runtime.ReadyCheck
		bg     background
	)

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		redisDB := 0
		if v, err := strconv.Atoi(config.String("REDIS_DB", "0")); err == nil && v >= 0 {
			redisDB = v
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		defer func() { _ = rdb.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: session.RedisReadyCheck(rdb)})
	}

	sessionTTL := time.Duration(config.PositiveInt("SESSION_TTL_HOURS", 720)) * time.Hour
	store, storeChecks, err := openSessionStore(ctx, logger, config.String("SESSION_STORE", "memory"), rdb, sessionTTL, &bg)
	if err != nil {
		logger.Error("session store init failed", "err", err)
		return
	}
	checks = append(checks, storeChecks...)

	sessionSecret := config.String("SESSION_SECRET", "")
	if sessionSecret == "" {
		sessionSecret = "dev-session-secret"
		logger.Warn("SESSION_SECRET not set, using development secret")
	}

	publisher := events.Publisher(events.NoopPublisher{})
	if brokers := kafkax.SplitBrokers(config.String("KAFKA_BROKERS", "")); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:    brokers,
			BufferSize: config.PositiveInt("EVENT_BUFFER_SIZE", 256),
		}, logger)
		bg.Go(func() { kp.Run(ctx) })
		publisher = kp
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
		logger.Info("event publishing enabled", "brokers", strings.Join(brokers, ","))
	} else {
		logger.Warn("event publishing disabled (no kafka brokers configured)")
	}

	apiBaseURL := config.String("API_BASE_URL", "https://fabfab.onrender.com")
	client := api.NewClient(apiBaseURL, config.Seconds("API_TIMEOUT_SECONDS", 15*time.Second))

	views, err := pages.New(pages.Config{
		API: client,
		Sessions: &session.Manager{
			Store:  store,
			Secret: sessionSecret,
			Secure: config.Bool("COOKIE_SECURE", false),
			MaxAge: sessionTTL,
		},
		Events:        publisher,
		Logger:        logger,
		DashboardPath: config.String("DASHBOARD_PATH", "/dashboard"),
	})
	if err != nil {
		logger.Error("views init failed", "err", err)
		return
	}

	mux := runtime.NewBaseMux(checks...)
	views.Register(mux)

	limitPerMinute := config.PositiveInt("RATE_LIMIT_PER_MINUTE", 60)
	var rateLimitMW httpx.Middleware
	if rdb != nil {
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl:web"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true), http.MethodPost)
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware(http.MethodPost)
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(int64(config.PositiveInt("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 30*time.Second)),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("remote api configured", "base_url", apiBaseURL)
	runtime.Serve(ctx, srv, logger, 10*time.Second)
	if !bg.Wait(10 * time.Second) {
		logger.Warn("background workers did not stop in time")
	}
}

func openSessionStore(ctx context.Context, logger *slog.Logger, backend string, rdb *redis.Client, ttl time.Duration, bg *background) (session.Store, []runtime.ReadyCheck, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		logger.Info("session store: memory")
		return session.NewMemoryStore(ttl), nil, nil
	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("SESSION_STORE=redis requires REDIS_ADDR")
		}
		logger.Info("session store: redis")
		return session.NewRedisStore(rdb, config.String("SESSION_REDIS_PREFIX", "sess"), ttl), nil, nil
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return nil, nil, err
		}
		pool, err := db.Open(ctx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		store, err := session.NewPostgresStore(ctx, pool, ttl)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("session table: %w", err)
		}
		bg.Go(func() {
			store.RunJanitor(ctx, 10*time.Minute, logger)
			pool.Close()
		})
		logger.Info("session store: postgres")
		return store, []runtime.ReadyCheck{{Name: "postgres", Check: db.ReadyCheck(pool)}}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q (want memory, redis or postgres)", backend)
	}
}
