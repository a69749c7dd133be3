package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Addr:              "127.0.0.1:0",
		Env:               "production",
		DatabaseURL:       "settings.db",
		SMTPPort:          465,
		MailTimeout:       time.Minute,
		MailDelivery:      DeliverySync,
		MailQueueSize:     8,
		SendRatePerMinute: 10,
		MaxUploadSizeMB:   50,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"ADDR", "ENV", "DATABASE_URL", "SMTP_PORT", "MAIL_TIMEOUT", "MAIL_DELIVERY", "OPEN_BROWSER"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SMTPPort != 465 {
		t.Errorf("SMTPPort = %d, want 465", cfg.SMTPPort)
	}
	if cfg.MailDelivery != DeliverySync {
		t.Errorf("MailDelivery = %q, want %q", cfg.MailDelivery, DeliverySync)
	}
	if cfg.MailTimeout != 120*time.Second {
		t.Errorf("MailTimeout = %s, want 2m0s", cfg.MailTimeout)
	}
	if filepath.Base(cfg.DatabaseURL) != "settings.db" {
		t.Errorf("DatabaseURL = %q, want a settings.db path", cfg.DatabaseURL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", "127.0.0.1:9999")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("MAIL_TIMEOUT", "15s")
	t.Setenv("MAIL_DELIVERY", "async")
	t.Setenv("OPEN_BROWSER", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if !cfg.IsPostgres() {
		t.Errorf("expected postgres URL to select the postgres backend")
	}
	if cfg.MailTimeout != 15*time.Second {
		t.Errorf("MailTimeout = %s", cfg.MailTimeout)
	}
	if cfg.MailDelivery != DeliveryAsync {
		t.Errorf("MailDelivery = %q", cfg.MailDelivery)
	}
	if cfg.OpenBrowser {
		t.Errorf("OpenBrowser should be false")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown delivery", func(c *Config) { c.MailDelivery = "later" }, "MAIL_DELIVERY"},
		{"zero timeout", func(c *Config) { c.MailTimeout = 0 }, "MAIL_TIMEOUT"},
		{"bad port", func(c *Config) { c.SMTPPort = 70000 }, "SMTP_PORT"},
		{"short key", func(c *Config) { c.SettingsEncryptionKey = "short" }, "SETTINGS_ENCRYPTION_KEY"},
		{"long key", func(c *Config) { c.SettingsEncryptionKey = strings.Repeat("k", 32) }, ""},
		{"empty queue", func(c *Config) { c.MailQueueSize = 0 }, "MAIL_QUEUE_SIZE"},
		{"zero upload size", func(c *Config) { c.MaxUploadSizeMB = 0 }, "MAX_UPLOAD_SIZE_MB"},
		{"localhost addr", func(c *Config) { c.Addr = "localhost:4317" }, ""},
		{"ipv6 loopback addr", func(c *Config) { c.Addr = "[::1]:4317" }, ""},
		{"all interfaces", func(c *Config) { c.Addr = ":4317" }, "ADDR"},
		{"lan addr", func(c *Config) { c.Addr = "192.168.1.10:4317" }, "ADDR"},
		{"addr without port", func(c *Config) { c.Addr = "127.0.0.1" }, "ADDR"},
		{"no database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
