package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pdfmailer/internal/shell"
)

type desktop interface {
	PickFolder(ctx context.Context) (string, error)
	OpenWindow(arg string) error
}

type openWindowRequest struct {
	Arg string `json:"arg"`
}

// ShellHandler exposes native dialogs and window opening.
type ShellHandler struct {
	BaseHandler
	desktop desktop
}

func NewShellHandler(logger *slog.Logger, d desktop) *ShellHandler {
	return &ShellHandler{BaseHandler: BaseHandler{Logger: logger}, desktop: d}
}

// SelectFolder answers with the chosen path, or false if the user canceled.
func (h *ShellHandler) SelectFolder(w http.ResponseWriter, r *http.Request) {
	var result any
	path, err := h.desktop.PickFolder(r.Context())
	switch {
	case errors.Is(err, shell.ErrCanceled):
		result = false
	case err != nil:
		h.serverErrorResponse(w, r, err)
		return
	default:
		result = path
	}

	if err := h.writeJSON(w, http.StatusOK, result, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// OpenWindow opens another UI window with arg as its route.
func (h *ShellHandler) OpenWindow(w http.ResponseWriter, r *http.Request) {
	var req openWindowRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.desktop.OpenWindow(req.Arg); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
