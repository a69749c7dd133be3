package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pdfmailer/internal/mailer"
)

type transportDispatcher interface {
	CreateTransport(cfg *mailer.Config) uuid.UUID
	State() (mailer.State, uuid.UUID)
	Send(ctx context.Context, msg mailer.Message) error
}

// Enqueuer accepts messages for background delivery.
type Enqueuer interface {
	Enqueue(msg mailer.Message) error
}

type sendMailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	FilePath string `json:"filePath"`
}

type transportStatus struct {
	State      string `json:"state"`
	Generation string `json:"generation,omitempty"`
}

// MailHandler creates the SMTP transport and sends PDFs through it.
type MailHandler struct {
	BaseHandler
	settings   settingsStore
	dispatcher transportDispatcher
	queue      Enqueuer // nil: send synchronously
	smtpPort   int
	timeout    time.Duration
}

func NewMailHandler(logger *slog.Logger, settings settingsStore, d transportDispatcher, queue Enqueuer, smtpPort int, timeout time.Duration) *MailHandler {
	return &MailHandler{
		BaseHandler: BaseHandler{Logger: logger},
		settings:    settings,
		dispatcher:  d,
		queue:       queue,
		smtpPort:    smtpPort,
		timeout:     timeout,
	}
}

// CreateTransport (re)builds the shared SMTP transport from the stored
// settings. Settings saved later are not picked up until this is called again.
func (h *MailHandler) CreateTransport(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.dispatcher.CreateTransport(mailer.NewConfigFromSettings(s, h.smtpPort, h.timeout))
	w.WriteHeader(http.StatusNoContent)
}

// Status reports whether a transport exists.
func (h *MailHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, gen := h.dispatcher.State()
	status := transportStatus{State: state.String()}
	if state == mailer.TransportReady {
		status.Generation = gen.String()
	}
	if err := h.writeJSON(w, http.StatusOK, status, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// Send mails one PDF. In sync mode SMTP failures are returned as 502; in
// async mode the message is queued and 202 is returned.
func (h *MailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMailRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if req.To == "" || req.FilePath == "" {
		h.badRequestResponse(w, r, errors.New("to and filePath are required"))
		return
	}

	msg := mailer.Message{To: req.To, Subject: req.Subject, FilePath: req.FilePath}

	if h.queue != nil {
		err := h.queue.Enqueue(msg)
		switch {
		case errors.Is(err, mailer.ErrTransportNotInitialized):
			h.errorResponse(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, mailer.ErrQueueFull), errors.Is(err, mailer.ErrQueueClosed):
			h.errorResponse(w, r, http.StatusServiceUnavailable, err.Error())
		case err != nil:
			h.serverErrorResponse(w, r, err)
		default:
			w.WriteHeader(http.StatusAccepted)
		}
		return
	}

	err := h.dispatcher.Send(r.Context(), msg)
	switch {
	case errors.Is(err, mailer.ErrTransportNotInitialized):
		h.errorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, os.ErrNotExist):
		h.badRequestResponse(w, r, err)
	case err != nil:
		h.Logger.Error("mail: send failed", "to", req.To, "err", err)
		h.errorResponse(w, r, http.StatusBadGateway, "send failed: "+err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
