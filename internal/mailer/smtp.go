package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	gomail "gopkg.in/mail.v2"

	"github.com/pdfmailer/internal/model"
)

// DefaultPort is SMTP over implicit TLS.
const DefaultPort = 465

// ErrTransportNotInitialized is returned by Send before any CreateTransport.
var ErrTransportNotInitialized = errors.New("mailer: transport not initialized")

// State is the dispatcher's transport state.
type State int

const (
	NoTransport State = iota
	TransportReady
)

func (s State) String() string {
	switch s {
	case TransportReady:
		return "ready"
	default:
		return "none"
	}
}

// Config is the snapshot of SMTP settings a transport is built from.
type Config struct {
	Host     string
	Port     int
	Login    string
	Password string
	Timeout  time.Duration
}

// NewConfigFromSettings copies the SMTP fields out of the user settings.
// Login doubles as the sender address.
func NewConfigFromSettings(s *model.UserSettings, port int, timeout time.Duration) *Config {
	if port == 0 {
		port = DefaultPort
	}
	return &Config{
		Host:     s.SMTPHost,
		Port:     port,
		Login:    s.SMTPLogin,
		Password: s.SMTPPassword,
		Timeout:  timeout,
	}
}

// Message is one send request: a single PDF to a single recipient.
type Message struct {
	To       string
	Subject  string
	FilePath string
}

// AttachmentName is the filename recipients see: "<to>.pdf".
func (m Message) AttachmentName() string {
	return m.To + ".pdf"
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type transport struct {
	id     uuid.UUID
	cfg    Config
	dialer dialer
}

// Dispatcher holds the current SMTP transport. It starts with none; each
// CreateTransport replaces the previous one.
type Dispatcher struct {
	mu      sync.RWMutex
	current *transport

	// dialFn builds the SMTP dialer for a config. Overridden in tests.
	dialFn func(cfg Config) dialer
}

func New() *Dispatcher {
	return &Dispatcher{dialFn: newGomailDialer}
}

func newGomailDialer(cfg Config) dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Login, cfg.Password)
	d.SSL = true
	d.Timeout = cfg.Timeout
	return d
}

// CreateTransport builds a new transport from cfg and makes it current. No
// connection is attempted; problems surface on the first Send.
func (d *Dispatcher) CreateTransport(cfg *Config) uuid.UUID {
	t := &transport{
		id:     uuid.New(),
		cfg:    *cfg,
		dialer: d.dialFn(*cfg),
	}

	d.mu.Lock()
	d.current = t
	d.mu.Unlock()

	slog.Info("mailer: transport created", "generation", t.id, "host", cfg.Host, "port", cfg.Port, "login", cfg.Login)
	return t.id
}

// State reports whether a transport exists and, if so, its generation.
func (d *Dispatcher) State() (State, uuid.UUID) {
	t := d.snapshot()
	if t == nil {
		return NoTransport, uuid.Nil
	}
	return TransportReady, t.id
}

// Send mails msg.FilePath to msg.To through the current transport.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	t := d.snapshot()
	if t == nil {
		return ErrTransportNotInitialized
	}
	return d.sendWith(ctx, t, msg)
}

func (d *Dispatcher) snapshot() *transport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// sendWith uses a single transport for every field of the message, so a
// concurrent CreateTransport never yields a mix of old and new settings.
func (d *Dispatcher) sendWith(ctx context.Context, t *transport, msg Message) error {
	info, err := os.Stat(msg.FilePath)
	if err != nil {
		return fmt.Errorf("mailer: attachment: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", t.cfg.Login)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", "")
	m.Attach(msg.FilePath, gomail.Rename(msg.AttachmentName()))

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mailer: sending to %s: %w", msg.To, err)
	}

	slog.Info("mailer: sent",
		"generation", t.id,
		"to", msg.To,
		"attachment", msg.AttachmentName(),
		"size", humanize.Bytes(uint64(info.Size())),
	)
	return nil
}
