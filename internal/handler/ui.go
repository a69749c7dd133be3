package handler

import (
	"html/template"
	"log/slog"
	"net/http"
)

type indexData struct {
	Token string
}

// UIHandler renders the single-page UI.
type UIHandler struct {
	BaseHandler
	tmpl  *template.Template
	token string
}

func NewUIHandler(logger *slog.Logger, tmpl *template.Template, token string) *UIHandler {
	return &UIHandler{BaseHandler: BaseHandler{Logger: logger}, tmpl: tmpl, token: token}
}

// Index serves index.html with the boundary token embedded for API calls.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", indexData{Token: h.token}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
