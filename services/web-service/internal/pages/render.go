package pages

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewNames = []string{"login", "signup", "orders", "dashboard"}

func parseViews() (map[string]*template.Template, error) {
	views := make(map[string]*template.Template, len(viewNames))
	for _, name := range viewNames {
		t, err := template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		views[name] = t
	}
	return views, nil
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.views[name].Execute(&buf, data); err != nil {
		h.logger.Error("render failed", "err", err, "view", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
