package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pdfmailer/internal/model"
	"github.com/pdfmailer/internal/store"
)

type settingsStore interface {
	Load(ctx context.Context) (*model.UserSettings, error)
	Save(ctx context.Context, settings *model.UserSettings) error
	Exists(ctx context.Context) (bool, error)
}

// loadSettings returns the stored settings, falling back to defaults when
// the stored record is corrupt. Other errors are returned as-is.
func loadSettings(ctx context.Context, logger *slog.Logger, settings settingsStore) (*model.UserSettings, error) {
	s, err := settings.Load(ctx)
	if errors.Is(err, store.ErrCorruptSettings) {
		logger.Warn("settings: stored record is corrupt, using defaults", "err", err)
		return model.DefaultUserSettings(), nil
	}
	return s, err
}

// SettingsHandler serves the user settings record.
type SettingsHandler struct {
	BaseHandler
	settings settingsStore
}

func NewSettingsHandler(logger *slog.Logger, settings settingsStore) *SettingsHandler {
	return &SettingsHandler{BaseHandler: BaseHandler{Logger: logger}, settings: settings}
}

// Get returns the current settings, or the all-empty defaults.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := loadSettings(r.Context(), h.Logger, h.settings)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	err = h.writeJSON(w, http.StatusOK, s, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
}

// Update replaces the whole settings record. Fields are not validated.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	s := &model.UserSettings{}
	if err := h.readJSON(w, r, s); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.settings.Save(r.Context(), s); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
