package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/pdfmailer/internal/folder"
	"github.com/pdfmailer/internal/model"
)

var errNoFolder = errors.New("no PDF folder configured")

// FilesHandler lists, writes and removes files in the selected PDF folder.
type FilesHandler struct {
	BaseHandler
	settings       settingsStore
	maxUploadBytes int64
}

func NewFilesHandler(logger *slog.Logger, settings settingsStore, maxUploadBytes int64) *FilesHandler {
	return &FilesHandler{BaseHandler: BaseHandler{Logger: logger}, settings: settings, maxUploadBytes: maxUploadBytes}
}

// List returns the PDFs in the selected folder. Missing settings and an
// unreadable folder both yield an empty list; the read error is only logged.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	items := []model.FileListItem{}

	exists, err := h.settings.Exists(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	if exists {
		s, err := loadSettings(r.Context(), h.Logger, h.settings)
		if err != nil {
			h.serverErrorResponse(w, r, err)
			return
		}
		res := folder.List(s.SelectedPdfFolderPath)
		if res.Err != nil {
			h.Logger.Warn("files: listing failed, returning empty list", "err", res.Err)
		}
		items = res.Items
	}

	if err := h.writeJSON(w, http.StatusOK, items, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// Download writes the raw request body to <folder>/<filename>.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the parameter escaped.
	filename := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		var err error
		filename, err = url.PathUnescape(filename)
		if err != nil {
			h.badRequestResponse(w, r, fmt.Errorf("bad filename: %w", err))
			return
		}
	}

	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if s.SelectedPdfFolderPath == "" {
		h.errorResponse(w, r, http.StatusConflict, errNoFolder.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			h.errorResponse(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("body must not be larger than %s", humanize.IBytes(uint64(maxBytesError.Limit))))
			return
		}
		h.badRequestResponse(w, r, err)
		return
	}

	n, err := folder.Write(s.SelectedPdfFolderPath, filename, data)
	if errors.Is(err, folder.ErrInvalidFilename) {
		h.badRequestResponse(w, r, err)
		return
	} else if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.Logger.Info("files: saved", "filename", filename, "size", humanize.Bytes(uint64(n)))
	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes the file at ?path=. Failures are logged and the caller
// still gets a success response.
func (h *FilesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.badRequestResponse(w, r, errors.New("path is required"))
		return
	}

	if err := folder.Remove(path); err != nil {
		h.Logger.Warn("files: remove failed", "path", path, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
