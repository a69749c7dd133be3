package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfmailer/internal/config"
	"github.com/pdfmailer/internal/middleware"
	"github.com/pdfmailer/internal/model"
)

func newTestApp(t *testing.T, delivery string) *App {
	t.Helper()
	return newTestAppWith(t, func(c *config.Config) { c.MailDelivery = delivery })
}

func newTestAppWith(t *testing.T, mutate func(c *config.Config)) *App {
	t.Helper()
	cfg := &config.Config{
		Addr:                  "127.0.0.1:0",
		Env:                   "production",
		DatabaseURL:           filepath.Join(t.TempDir(), "settings.db"),
		SettingsEncryptionKey: strings.Repeat("k", 32),
		SMTPPort:              465,
		MailTimeout:           time.Second,
		MailDelivery:          config.DeliverySync,
		MailQueueSize:         4,
		SendRatePerMinute:     600,
		MaxUploadSizeMB:       1,
	}
	mutate(cfg)

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func do(t *testing.T, app *App, method, target string, body []byte, withToken bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Host = "127.0.0.1:" + app.port
	if withToken {
		req.Header.Set(middleware.TokenHeader, app.token)
	}
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)
	return rr
}

func TestAPIRequiresToken(t *testing.T) {
	app := newTestApp(t, config.DeliverySync)

	routes := []struct{ method, target string }{
		{http.MethodGet, "/api/settings"},
		{http.MethodPut, "/api/settings"},
		{http.MethodGet, "/api/files"},
		{http.MethodPost, "/api/files/a.pdf"},
		{http.MethodDelete, "/api/files?path=/tmp/x"},
		{http.MethodPost, "/api/mail/transport"},
		{http.MethodPost, "/api/mail/send"},
		{http.MethodPost, "/api/folder/select"},
		{http.MethodPost, "/api/window"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.target, func(t *testing.T) {
			rr := do(t, app, rt.method, rt.target, nil, false)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
		})
	}
}

func TestForeignHostIsRejected(t *testing.T) {
	app := newTestApp(t, config.DeliverySync)
	handler := app.routes()

	for _, target := range []string{"/", "/api/settings", "/api/health"} {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			req.Host = "attacker.example:" + app.port
			req.Header.Set(middleware.TokenHeader, app.token)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusForbidden {
				t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
			}
			if strings.Contains(rr.Body.String(), app.token) {
				t.Error("token leaked to a foreign host")
			}
		})
	}
}

func TestSendRateLimitIgnoresForwardedFor(t *testing.T) {
	app := newTestAppWith(t, func(c *config.Config) { c.SendRatePerMinute = 1 })
	handler := app.routes()

	body := `{"to":"a@example.org","subject":"s","filePath":"/tmp/a.pdf"}`
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/mail/send", strings.NewReader(body))
		req.Host = "127.0.0.1:" + app.port
		req.Header.Set(middleware.TokenHeader, app.token)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	// No transport yet, so the one allowed request gets 409.
	want := []int{http.StatusConflict, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: expected %d, got %d", i, want[i], codes[i])
		}
	}
}

func TestIndexCarriesToken(t *testing.T) {
	app := newTestApp(t, config.DeliverySync)

	rr := do(t, app, http.MethodGet, "/", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), app.token) {
		t.Error("expected index page to embed the boundary token")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected security headers on the index page")
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, config.DeliverySync)

	rr := do(t, app, http.MethodGet, "/api/health", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestSettingsThenFilesFlow(t *testing.T) {
	app := newTestApp(t, config.DeliverySync)
	dir := t.TempDir()

	rr := do(t, app, http.MethodGet, "/api/files", nil, true)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty list before settings exist, got %s", rr.Body.String())
	}

	s := model.UserSettings{SelectedPdfFolderPath: dir, SMTPHost: "smtp.example.org", SMTPLogin: "me@example.org", SMTPPassword: "pw"}
	body, _ := json.Marshal(s)
	if rr := do(t, app, http.MethodPut, "/api/settings", body, true); rr.Code != http.StatusNoContent {
		t.Fatalf("save settings: status %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/api/settings", nil, true)
	var got model.UserSettings
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Fatalf("expected %+v, got %+v", s, got)
	}

	payload := []byte("%PDF-1.4 test")
	if rr := do(t, app, http.MethodPost, "/api/files/"+url.PathEscape("bob@example.org.pdf"), payload, true); rr.Code != http.StatusNoContent {
		t.Fatalf("download: status %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/api/files", nil, true)
	var items []model.FileListItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Email != "bob@example.org" {
		t.Fatalf("expected bob@example.org, got %+v", items)
	}

	path := filepath.Join(dir, "bob@example.org.pdf")
	if rr := do(t, app, http.MethodDelete, "/api/files?path="+url.QueryEscape(path), nil, true); rr.Code != http.StatusNoContent {
		t.Fatalf("remove: status %d", rr.Code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file removed, stat err = %v", err)
	}
}

func TestSendBeforeTransport(t *testing.T) {
	for _, delivery := range []string{config.DeliverySync, config.DeliveryAsync} {
		t.Run(delivery, func(t *testing.T) {
			app := newTestApp(t, delivery)

			body := []byte(`{"to":"a@example.org","subject":"s","filePath":"/tmp/a.pdf"}`)
			rr := do(t, app, http.MethodPost, "/api/mail/send", body, true)
			if rr.Code != http.StatusConflict {
				t.Fatalf("expected status %d, got %d", http.StatusConflict, rr.Code)
			}
		})
	}
}

func TestCreateTransportChangesState(t *testing.T) {
	app := newTestApp(t, config.DeliverySync)

	var status struct {
		State      string `json:"state"`
		Generation string `json:"generation"`
	}
	rr := do(t, app, http.MethodGet, "/api/mail/transport", nil, true)
	_ = json.Unmarshal(rr.Body.Bytes(), &status)
	if status.State != "none" {
		t.Fatalf("expected initial state none, got %q", status.State)
	}

	if rr := do(t, app, http.MethodPost, "/api/mail/transport", nil, true); rr.Code != http.StatusNoContent {
		t.Fatalf("create transport: status %d", rr.Code)
	}

	rr = do(t, app, http.MethodGet, "/api/mail/transport", nil, true)
	_ = json.Unmarshal(rr.Body.Bytes(), &status)
	if status.State != "ready" || status.Generation == "" {
		t.Fatalf("expected ready with a generation, got %+v", status)
	}
}

func TestAsyncModeHasQueue(t *testing.T) {
	if app := newTestApp(t, config.DeliveryAsync); app.queue == nil {
		t.Error("expected a delivery queue in async mode")
	}
	if app := newTestApp(t, config.DeliverySync); app.queue != nil {
		t.Error("expected no delivery queue in sync mode")
	}
}

func TestStartAndShutdown(t *testing.T) {
	app := newTestApp(t, config.DeliveryAsync)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
