package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pdfmailer/internal/handler"
	"github.com/pdfmailer/internal/middleware"
	"github.com/pdfmailer/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LoopbackHost(app.port))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS))))

	uiHandler := handler.NewUIHandler(app.logger, web.Templates, app.token)
	r.Get("/", uiHandler.Index)

	// Health check
	r.Get("/api/health", handler.Health(app.kvStore, app.dispatcher))

	var queue handler.Enqueuer
	if app.queue != nil {
		queue = app.queue
	}

	settingsHandler := handler.NewSettingsHandler(app.logger, app.settingsStore)
	filesHandler := handler.NewFilesHandler(app.logger, app.settingsStore, int64(app.config.MaxUploadSizeMB)<<20)
	mailHandler := handler.NewMailHandler(app.logger, app.settingsStore, app.dispatcher, queue, app.config.SMTPPort, app.config.MailTimeout)
	shellHandler := handler.NewShellHandler(app.logger, app.desktop)

	// Boundary operations, callable only from the page that carries the token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(app.token))

		r.Post("/api/folder/select", shellHandler.SelectFolder)
		r.Post("/api/window", shellHandler.OpenWindow)

		r.Get("/api/settings", settingsHandler.Get)
		r.Put("/api/settings", settingsHandler.Update)

		r.Get("/api/files", filesHandler.List)
		r.Post("/api/files/{filename}", filesHandler.Download)
		r.Delete("/api/files", filesHandler.Remove)

		r.Post("/api/mail/transport", mailHandler.CreateTransport)
		r.Get("/api/mail/transport", mailHandler.Status)
		r.With(middleware.RateLimit(middleware.PerMinute(app.config.SendRatePerMinute), app.config.SendRatePerMinute)).
			Post("/api/mail/send", mailHandler.Send)
	})
	return r
}
