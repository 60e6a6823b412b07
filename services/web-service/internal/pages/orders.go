package pages

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fabclean/fabclean-web/libs/httpx"
	"github.com/fabclean/fabclean-web/services/web-service/internal/api"
	"github.com/fabclean/fabclean-web/services/web-service/internal/events"
	"github.com/fabclean/fabclean-web/services/web-service/internal/forms"
	"github.com/fabclean/fabclean-web/services/web-service/internal/session"
	"golang.org/x/sync/errgroup"
)

var timeNow = time.Now

type ordersView struct {
	Form     forms.OrderForm
	Services []api.Service
	Message  string
	Success  bool
	// Verbatim marks a message written by the API, shown exactly as sent.
	Verbatim bool
	Busy     bool
}

// OrdersPage prefills the customer fields from the session and loads the
// catalog. The two are independent and run concurrently.
func (h *Handler) OrdersPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc := h.sessions.For(w, r)

	var (
		form     forms.OrderForm
		services = []api.Service{}
		g        errgroup.Group
	)
	g.Go(func() error {
		p := sc.Profile(ctx)
		form.Prefill(p.Name, p.Phone, p.Email)
		return nil
	})
	g.Go(func() error {
		list, err := h.api.ListServices(ctx)
		if err != nil {
			h.logger.Error("services fetch failed", "err", err)
			return nil
		}
		services = list
		return nil
	})
	_ = g.Wait()

	h.rememberServices(ctx, sc, services)
	form.Recompute(services)
	h.render(w, http.StatusOK, "orders", ordersView{Form: form, Services: services})
}

func (h *Handler) OrdersSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	sc := h.sessions.For(w, r)

	services := h.shownServices(ctx, sc)
	form := forms.OrderFormFromValues(r.PostForm)
	form.Recompute(services)
	view := ordersView{Form: form, Services: services}

	if err := form.Validate(); err != nil {
		view.Message = err.Error()
		h.render(w, http.StatusUnprocessableEntity, "orders", view)
		return
	}

	release, ok := h.busy.acquire(sc.ID(), "order")
	if !ok {
		view.Busy = true
		h.render(w, http.StatusConflict, "orders", view)
		return
	}
	defer release()

	// The catalog saved at mount can be missing (new session, eviction, another
	// replica). The total must come from a list that contains the selection.
	if !forms.HasService(services, form.ServiceID) {
		list, err := h.api.ListServices(ctx)
		if err != nil {
			h.logger.Error("services fetch before order failed", "err", err, "request_id", httpx.RequestIDFromContext(ctx))
			view.Message = "Error submitting order"
			h.render(w, http.StatusBadGateway, "orders", view)
			return
		}
		services = list
		h.rememberServices(ctx, sc, services)
		form.Recompute(services)
		view.Form, view.Services = form, services
		if !forms.HasService(services, form.ServiceID) {
			view.Message = "Please select a service"
			h.render(w, http.StatusUnprocessableEntity, "orders", view)
			return
		}
	}

	token, _, err := sc.Load(ctx)
	if err != nil {
		h.logger.Warn("session load failed, submitting without token", "err", err, "session_id", sc.ID())
	}

	req := form.Request()
	if err := h.api.CreateOrder(ctx, token, req); err != nil {
		msg, status := h.failure(ctx, "order submit", err, "Failed to create order", "Error submitting order")
		view.Message = msg
		view.Verbatim = serverMessage(err)
		h.render(w, status, "orders", view)
		return
	}

	h.publish(ctx, events.TypeOrderSubmitted, req.CustomerEmail, events.OrderPayload{
		CustomerEmail: req.CustomerEmail,
		ServiceID:     req.ServiceID,
		PickupDate:    req.PickupDate,
		Total:         string(req.Total),
		OccurredAt:    timeNow().UTC(),
	})

	view.Message = "Order created successfully!"
	view.Success = true
	view.Form.ResetAfterSubmit()

	if list, err := h.api.ListServices(ctx); err != nil {
		h.logger.Error("services refresh failed", "err", err)
	} else {
		view.Services = list
		h.rememberServices(ctx, sc, list)
	}
	view.Form.Recompute(view.Services)
	h.render(w, http.StatusOK, "orders", view)
}

// OrderTotal returns the derived total for a service id against the catalog
// this session was shown.
func (h *Handler) OrderTotal(w http.ResponseWriter, r *http.Request) {
	sc := h.sessions.For(w, r)
	total := forms.ComputeTotal(h.shownServices(r.Context(), sc), r.URL.Query().Get("serviceId"))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(struct {
		Total api.Amount `json:"total"`
	}{Total: total})
}

func (h *Handler) rememberServices(ctx context.Context, sc *session.Context, services []api.Service) {
	if err := sc.SaveJSON(ctx, session.ServicesKey, services); err != nil {
		h.logger.Warn("catalog view state save failed", "err", err, "session_id", sc.ID())
	}
}

func (h *Handler) shownServices(ctx context.Context, sc *session.Context) []api.Service {
	services := []api.Service{}
	if _, err := sc.LoadJSON(ctx, session.ServicesKey, &services); err != nil {
		h.logger.Warn("catalog view state load failed", "err", err, "session_id", sc.ID())
		return []api.Service{}
	}
	return services
}
