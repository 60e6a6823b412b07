package runtime

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

// NewBaseMux returns a mux with /healthz and /readyz registered. Nil checks are skipped.
func NewBaseMux(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if failures := runChecks(r.Context(), checks); len(failures) > 0 {
			writeText(w, http.StatusServiceUnavailable, strings.Join(failures, "; "))
			return
		}
		writeText(w, http.StatusOK, "ok")
	})
	return mux
}

func runChecks(ctx context.Context, checks []ReadyCheck) []string {
	var failures []string
	for _, check := range checks {
		if check.Check == nil {
			continue
		}
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check.Check(checkCtx)
		cancel()
		if err != nil {
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			failures = append(failures, name+": "+err.Error())
		}
	}
	return failures
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
