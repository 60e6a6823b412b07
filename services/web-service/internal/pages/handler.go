// Package pages serves the Login, Signup and Orders views.
package pages

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fabclean/fabclean-web/libs/httpx"
	"github.com/fabclean/fabclean-web/services/web-service/internal/api"
	"github.com/fabclean/fabclean-web/services/web-service/internal/events"
	"github.com/fabclean/fabclean-web/services/web-service/internal/session"
)

const genericAuthMessage = "Something went wrong. Try again later."

// API is the subset of the remote API the views call.
type API interface {
	Login(ctx context.Context, creds api.Credentials) (api.AuthResult, error)
	Signup(ctx context.Context, req api.SignupRequest) (api.AuthResult, error)
	ListServices(ctx context.Context) ([]api.Service, error)
	CreateOrder(ctx context.Context, token string, req api.OrderRequest) error
}

type Config struct {
	API           API
	Sessions      *session.Manager
	Events        events.Publisher
	Logger        *slog.Logger
	DashboardPath string
}

type Handler struct {
	api           API
	sessions      *session.Manager
	events        events.Publisher
	logger        *slog.Logger
	busy          *busyTracker
	views         map[string]*template.Template
	dashboardPath string
}

func New(cfg Config) (*Handler, error) {
	if cfg.API == nil || cfg.Sessions == nil {
		return nil, errors.New("pages: api and sessions are required")
	}
	views, err := parseViews()
	if err != nil {
		return nil, err
	}
	if cfg.Events == nil {
		cfg.Events = events.NoopPublisher{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	dashboard := strings.TrimSpace(cfg.DashboardPath)
	if dashboard == "" {
		dashboard = "/dashboard"
	}
	return &Handler{
		api:           cfg.API,
		sessions:      cfg.Sessions,
		events:        cfg.Events,
		logger:        cfg.Logger,
		busy:          newBusyTracker(),
		views:         views,
		dashboardPath: dashboard,
	}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("POST /signup", h.SignupSubmit)
	mux.HandleFunc("GET /orders", h.OrdersPage)
	mux.HandleFunc("POST /orders", h.OrdersSubmit)
	mux.HandleFunc("GET /orders/total", h.OrderTotal)
	mux.HandleFunc("GET /dashboard", h.Dashboard)
	mux.HandleFunc("GET /logout", h.Logout)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

// failure maps an API error to what the user sees. Server-provided messages
// are shown as is; anything else is logged and replaced by generic.
func (h *Handler) failure(ctx context.Context, action string, err error, fallback, generic string) (string, int) {
	if msg, ok := api.UserMessage(err, fallback); ok {
		h.logger.Info(action+" rejected",
			"err", err,
			"request_id", httpx.RequestIDFromContext(ctx),
		)
		return msg, http.StatusUnprocessableEntity
	}
	h.logger.Error(action+" failed",
		"err", err,
		"request_id", httpx.RequestIDFromContext(ctx),
	)
	return generic, http.StatusBadGateway
}

// serverMessage reports whether err carries a message written by the API.
func serverMessage(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.Message != ""
}

// publish never fails the action that triggered it.
func (h *Handler) publish(ctx context.Context, eventType, key string, payload any) {
	e, err := events.New(ctx, eventType, key, payload)
	if err != nil {
		h.logger.Error("event build failed", "err", err, "event_type", eventType)
		return
	}
	h.events.Publish(ctx, e)
}
