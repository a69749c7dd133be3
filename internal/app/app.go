package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdfmailer/internal/auth"
	"github.com/pdfmailer/internal/config"
	"github.com/pdfmailer/internal/crypto"
	dbpkg "github.com/pdfmailer/internal/db"
	"github.com/pdfmailer/internal/mailer"
	"github.com/pdfmailer/internal/shell"
	"github.com/pdfmailer/internal/store"
)

type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	kvStore       *store.KVStore
	settingsStore *store.SettingsStore
	dispatcher    *mailer.Dispatcher
	queue         *mailer.Queue // nil in sync delivery mode
	desktop       *shell.Desktop
	token         string
	port          string // the only port accepted in the Host header
}

func (app *App) Close() {
	app.db.Close()
}

// Stores is the storage layer shared by the server and the CLI commands.
type Stores struct {
	DB       *sql.DB
	KV       *store.KVStore
	Settings *store.SettingsStore
}

// OpenStores opens the database selected by cfg, migrates it and builds the
// encrypted settings store on top.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	dialect := dbpkg.SQLite
	if cfg.IsPostgres() {
		dialect = dbpkg.Postgres
	}

	db, err := dbpkg.Open(ctx, cfg.DatabaseURL, dialect)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	secret := cfg.SettingsEncryptionKey
	if secret == "" {
		secret = crypto.MachineSecret()
	}
	crypter := crypto.New(crypto.DeriveKey(secret))

	kv := store.NewKVStore(db, dialect)
	return &Stores{
		DB:       db,
		KV:       kv,
		Settings: store.NewSettingsStore(kv, crypter),
	}, nil
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	_, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		stores.DB.Close()
		return nil, fmt.Errorf("invalid ADDR: %w", err)
	}

	dispatcher := mailer.New()

	var queue *mailer.Queue
	if cfg.MailDelivery == config.DeliveryAsync {
		queue = mailer.NewQueue(dispatcher, cfg.MailQueueSize)
	}

	return &App{
		config:        cfg,
		logger:        logger,
		db:            stores.DB,
		kvStore:       stores.KV,
		settingsStore: stores.Settings,
		dispatcher:    dispatcher,
		queue:         queue,
		desktop:       shell.NewDesktop("http://" + cfg.Addr + "/"),
		token:         auth.GenerateToken(),
		port:          port,
	}, nil
}

// Start serves the UI and API until ctx is cancelled. The transport starts
// in the NoTransport state; the UI creates it after loading settings.
func (app *App) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	baseURL := "http://" + ln.Addr().String() + "/"
	app.desktop.BaseURL = baseURL
	// ADDR may ask for port 0; Host checks need the one actually bound.
	_, app.port, _ = net.SplitHostPort(ln.Addr().String())

	// Create an errgroup derived from the parent context
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:     app.routes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 30 * time.Second,
		// A synchronous send may hold the request for the full SMTP timeout.
		WriteTimeout: app.config.MailTimeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	// Start the server in a goroutine
	g.Go(func() error {
		app.logger.Info("starting server", "addr", ln.Addr().String(), "env", app.config.Env, "delivery", app.config.MailDelivery)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("server failed", "error", err)
			return err
		}
		return nil
	})

	// The queue outlives the server so requests still in flight during
	// Shutdown can enqueue; it is stopped once Shutdown returns.
	queueCtx, stopQueue := context.WithCancel(context.Background())
	if app.queue != nil {
		g.Go(func() error {
			app.queue.Start(queueCtx)
			return nil
		})
	}

	if app.config.OpenBrowser {
		g.Go(func() error {
			if err := app.desktop.OpenWindow(""); err != nil {
				app.logger.Warn("could not open browser, visit the UI manually", "url", baseURL, "err", err)
			}
			return nil
		})
	}

	// Start shutdown listener
	g.Go(func() error {
		<-gctx.Done() // Wait for OS signal or parent context to fail

		app.logger.Info("shutting down server")
		defer stopQueue()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo

	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	slog.SetDefault(logger)
	return logger
}
