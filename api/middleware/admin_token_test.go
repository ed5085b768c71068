package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockpinghq/stockping-backend/pkg/config"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Output: io.Discard})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAdminTokenAcceptsMatchingBearer(t *testing.T) {
	handler := AdminToken(config.AdminConfig{Token: "s3cret"}, testLogger())(okHandler())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/v1/digest/run", nil)
	r.Header.Set("Authorization", "Bearer s3cret")

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected passthrough, got %d", w.Code)
	}
}

func TestAdminTokenRejectsWrongToken(t *testing.T) {
	handler := AdminToken(config.AdminConfig{Token: "s3cret"}, testLogger())(okHandler())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/v1/digest/run", nil)
	r.Header.Set("Authorization", "Bearer wrong")

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminTokenRejectsMissingHeader(t *testing.T) {
	handler := AdminToken(config.AdminConfig{Token: "s3cret"}, testLogger())(okHandler())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/v1/digest/run", nil)

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminTokenDisabledWithoutConfiguredToken(t *testing.T) {
	handler := AdminToken(config.AdminConfig{}, testLogger())(okHandler())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/v1/digest/run", nil)
	r.Header.Set("Authorization", "Bearer anything")

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when disabled, got %d", w.Code)
	}
}

func TestRecovererTurnsPanicsInto500(t *testing.T) {
	handler := Recoverer(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestRequestIDGeneratesAndEchoesHeader(t *testing.T) {
	handler := RequestID(testLogger())(okHandler())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.ServeHTTP(w, r)

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id")
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "req-123")

	handler.ServeHTTP(w, r)

	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}
