// Command api-sim serves an in-memory FabClean API for local development.
package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/fabclean/fabclean-web/libs/config"
	"github.com/fabclean/fabclean-web/libs/httpx"
	"github.com/fabclean/fabclean-web/libs/runtime"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		addr     = flag.String("addr", ":"+config.String("PORT", "9090"), "listen address")
		secret   = flag.String("secret", config.String("JWT_SECRET", "dev-secret"), "HS256 token signing secret")
		tokenTTL = flag.Duration("token-ttl", config.Seconds("TOKEN_TTL_SECONDS", 24*time.Hour), "issued token lifetime")
	)
	flag.Parse()

	logger := runtime.NewLogger("api-sim", config.String("LOG_LEVEL", "info"))
	ctx, stop := runtime.SignalContext()
	defer stop()

	sim := newServer(*secret, *tokenTTL)
	mux := runtime.NewBaseMux()
	sim.routes(mux)

	srv := &http.Server{
		Addr: *addr,
		Handler: httpx.Chain(mux,
			httpx.WithRequestID,
			httpx.WithAccessLog(logger),
			httpx.WithRecover(logger),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger, 5*time.Second)
}
