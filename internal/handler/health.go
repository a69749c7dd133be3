package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pdfmailer/internal/mailer"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type transportStater interface {
	State() (mailer.State, uuid.UUID)
}

type healthStatus struct {
	Status string `json:"status"`
	Mail   string `json:"mail"`
}

// Health reports settings-store connectivity and whether a mail transport
// has been created. Only an unreachable store makes the process unhealthy.
func Health(db pinger, mail transportStater) http.HandlerFunc {
	h := BaseHandler{}
	return func(w http.ResponseWriter, r *http.Request) {
		state, _ := mail.State()
		status := healthStatus{Status: "ok", Mail: state.String()}
		code := http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}

		_ = h.writeJSON(w, code, status, nil)
	}
}
