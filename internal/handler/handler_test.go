package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pdfmailer/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSettings struct {
	s       *model.UserSettings
	exists  bool
	loadErr error
	saveErr error
	saved   []*model.UserSettings
}

func (f *fakeSettings) Load(ctx context.Context) (*model.UserSettings, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.s == nil {
		return model.DefaultUserSettings(), nil
	}
	cp := *f.s
	return &cp, nil
}

func (f *fakeSettings) Save(ctx context.Context, s *model.UserSettings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *s
	f.s = &cp
	f.exists = true
	f.saved = append(f.saved, &cp)
	return nil
}

func (f *fakeSettings) Exists(ctx context.Context) (bool, error) {
	return f.exists, nil
}

// withURLParam attaches a chi route parameter so handlers can be called directly.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error string `json:"error"`
	}
	decodeBody(t, rr, &env)
	return env.Error
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
