package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DeliverySync  = "sync"
	DeliveryAsync = "async"

	appFolderName = "pdfmailer"
)

type Config struct {
	// Server
	Addr string
	Env  string // development, production

	// Storage
	DatabaseURL           string
	SettingsEncryptionKey string

	// Mail
	SMTPPort          int
	MailTimeout       time.Duration
	MailDelivery      string
	MailQueueSize     int
	SendRatePerMinute int

	// Files
	MaxUploadSizeMB int

	OpenBrowser bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present. Flags bound by the CLI override the
// returned values before Validate is called.
func Load() (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		p, err := DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
		dbURL = p
	}

	cfg := &Config{
		Addr:                  getEnv("ADDR", "127.0.0.1:4317"),
		Env:                   getEnv("ENV", "production"),
		DatabaseURL:           dbURL,
		SettingsEncryptionKey: getEnv("SETTINGS_ENCRYPTION_KEY", ""),
		SMTPPort:              getEnvInt("SMTP_PORT", 465),
		MailTimeout:           getEnvDuration("MAIL_TIMEOUT", 120*time.Second),
		MailDelivery:          getEnv("MAIL_DELIVERY", DeliverySync),
		MailQueueSize:         getEnvInt("MAIL_QUEUE_SIZE", 64),
		SendRatePerMinute:     getEnvInt("SEND_RATE_PER_MINUTE", 60),
		MaxUploadSizeMB:       getEnvInt("MAX_UPLOAD_SIZE_MB", 50),
		OpenBrowser:           getEnv("OPEN_BROWSER", "true") == "true",
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validateLoopbackAddr(c.Addr); err != nil {
		return err
	}

	switch c.MailDelivery {
	case DeliverySync, DeliveryAsync:
	default:
		return fmt.Errorf("MAIL_DELIVERY must be %q or %q, got %q", DeliverySync, DeliveryAsync, c.MailDelivery)
	}

	if c.MailTimeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive")
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", c.SMTPPort)
	}

	if c.MailQueueSize <= 0 {
		return fmt.Errorf("MAIL_QUEUE_SIZE must be positive")
	}

	if c.SendRatePerMinute <= 0 {
		return fmt.Errorf("SEND_RATE_PER_MINUTE must be positive")
	}

	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}

	if c.SettingsEncryptionKey != "" && len(c.SettingsEncryptionKey) < 32 {
		return fmt.Errorf("SETTINGS_ENCRYPTION_KEY must be at least 32 characters")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// validateLoopbackAddr accepts only localhost or a loopback IP.
func validateLoopbackAddr(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("ADDR must be host:port: %w", err)
	}
	if strings.EqualFold(host, "localhost") {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("ADDR must be a loopback address, got %q", addr)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsPostgres reports whether DatabaseURL points at a PostgreSQL server rather
// than a local SQLite file.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// DefaultDatabasePath returns <user config dir>/pdfmailer/settings.db,
// creating the folder if needed.
func DefaultDatabasePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	folder := filepath.Join(dir, appFolderName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating config folder: %w", err)
	}
	return filepath.Join(folder, "settings.db"), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
