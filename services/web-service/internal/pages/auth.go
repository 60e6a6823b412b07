package pages

import (
	"net/http"

	"github.com/fabclean/fabclean-web/services/web-service/internal/api"
	"github.com/fabclean/fabclean-web/services/web-service/internal/events"
	"github.com/fabclean/fabclean-web/services/web-service/internal/forms"
	"github.com/fabclean/fabclean-web/services/web-service/internal/session"
)

type loginView struct {
	Form  forms.Credentials
	Error string
	Busy  bool
}

type signupView struct {
	Form  forms.Registration
	Error string
	Busy  bool
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", loginView{})
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	sc := h.sessions.For(w, r)
	view := loginView{Form: forms.CredentialsFromValues(r.PostForm)}

	release, ok := h.busy.acquire(sc.ID(), "login")
	if !ok {
		view.Busy = true
		h.render(w, http.StatusConflict, "login", view)
		return
	}
	defer release()

	res, err := h.api.Login(r.Context(), view.Form.Request())
	if err != nil {
		msg, status := h.failure(r.Context(), "login", err, "Login failed", genericAuthMessage)
		view.Error = msg
		h.render(w, status, "login", view)
		return
	}
	if !h.establish(w, r, sc, res, events.TypeCustomerLoggedIn, view.Form.Email) {
		view.Error = genericAuthMessage
		h.render(w, http.StatusInternalServerError, "login", view)
	}
}

func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signup", signupView{})
}

func (h *Handler) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	sc := h.sessions.For(w, r)
	view := signupView{Form: forms.RegistrationFromValues(r.PostForm)}

	if err := view.Form.Validate(); err != nil {
		view.Error = err.Error()
		h.render(w, http.StatusUnprocessableEntity, "signup", view)
		return
	}

	release, ok := h.busy.acquire(sc.ID(), "signup")
	if !ok {
		view.Busy = true
		h.render(w, http.StatusConflict, "signup", view)
		return
	}
	defer release()

	res, err := h.api.Signup(r.Context(), view.Form.Request())
	if err != nil {
		msg, status := h.failure(r.Context(), "signup", err, "Signup failed", genericAuthMessage)
		view.Error = msg
		h.render(w, status, "signup", view)
		return
	}
	if !h.establish(w, r, sc, res, events.TypeCustomerSignedUp, view.Form.Email) {
		view.Error = genericAuthMessage
		h.render(w, http.StatusInternalServerError, "signup", view)
	}
}

// establish persists the issued token and customer, then redirects to the
// dashboard. It reports false, without writing a response, when the session
// could not be saved.
func (h *Handler) establish(w http.ResponseWriter, r *http.Request, sc *session.Context, res api.AuthResult, eventType, email string) bool {
	if err := sc.Save(r.Context(), res.Token, res.Customer); err != nil {
		h.logger.Error("session save failed", "err", err, "session_id", sc.ID())
		return false
	}

	profile := session.ProfileFromUser(res.Customer)
	if profile.Email != "" {
		email = profile.Email
	}
	h.publish(r.Context(), eventType, email, events.CustomerPayload{
		Email:      email,
		Name:       profile.Name,
		OccurredAt: timeNow().UTC(),
	})

	http.Redirect(w, r, h.dashboardPath, http.StatusSeeOther)
	return true
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sc := h.sessions.For(w, r)
	h.render(w, http.StatusOK, "dashboard", dashboardView{Profile: sc.Profile(r.Context())})
}

type dashboardView struct {
	Profile session.Profile
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sc := h.sessions.For(w, r)
	if err := sc.Clear(r.Context()); err != nil {
		h.logger.Error("session clear failed", "err", err, "session_id", sc.ID())
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
