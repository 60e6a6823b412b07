package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/fabclean/fabclean-web/libs/auth"
	"github.com/google/uuid"
)

const DefaultCookieName = "fabclean_sid"

// Manager binds browsers to session records through a signed id cookie.
type Manager struct {
	Store      Store
	Secret     string
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// For returns the session for r, issuing a new id cookie on w when the request
// carries none or a forged one.
func (m *Manager) For(w http.ResponseWriter, r *http.Request) *Context {
	if sid, ok := m.sessionID(r); ok {
		return NewContext(m.Store, sid)
	}
	sid := uuid.NewString()
	http.SetCookie(w, m.cookie(sid))
	return NewContext(m.Store, sid)
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.name())
	if err != nil {
		return "", false
	}
	sid, err := auth.VerifyValue(c.Value, m.Secret)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(sid); err != nil {
		return "", false
	}
	return sid, true
}

func (m *Manager) cookie(sid string) *http.Cookie {
	c := &http.Cookie{
		Name:     m.name(),
		Value:    auth.SignValue(sid, m.Secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.MaxAge > 0 {
		c.MaxAge = int(m.MaxAge / time.Second)
	}
	return c
}

func (m *Manager) name() string {
	if n := strings.TrimSpace(m.CookieName); n != "" {
		return n
	}
	return DefaultCookieName
}
