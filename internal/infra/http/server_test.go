package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func newTestServer() *Server {
	return NewServer(zerolog.Nop(), prometheus.NewRegistry())
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected status %q", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Fatalf("timestamp is not RFC3339: %v", err)
	}
}

func TestRoot(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "Telegram Support Bot is running!" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	s := NewServer(zerolog.Nop(), reg)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "test_counter_total 1") {
		t.Fatalf("expected counter in output, got %q", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	s := newTestServer()
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := s.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("start after shutdown must be a no-op, got %v", err)
	}
}

func TestRequestDeadlineWithinServerTimeout(t *testing.T) {
	if requestTimeout >= serverTimeout {
		t.Fatalf("request timeout %v must be below server timeout %v", requestTimeout, serverTimeout)
	}
	s := newTestServer()
	var left time.Duration
	s.Router.Get("/deadline", func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		if !ok {
			t.Error("expected request deadline")
			return
		}
		left = time.Until(deadline)
	})
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	if left <= 0 || left > requestTimeout {
		t.Fatalf("unexpected deadline %v", left)
	}
}
