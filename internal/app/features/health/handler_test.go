package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/dalemusser/wardwatch/internal/app/features/health"
	"go.uber.org/zap"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestServe(t *testing.T) {
	tests := []struct {
		name       string
		store      health.Pinger
		wantStatus int
		wantBody   string
		wantDB     string
	}{
		{"connected", docstore.NewMemory(), http.StatusOK, "ok", "connected"},
		{"down", downStore{}, http.StatusServiceUnavailable, "error", "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(tt.store, "memory", zap.NewNop())
			rec := httptest.NewRecorder()
			health.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp struct {
				Status   string `json:"status"`
				Database string `json:"database"`
				Message  string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.Status != tt.wantBody || resp.Database != tt.wantDB {
				t.Errorf("response = %+v", resp)
			}
			if resp.Message == "connection refused" {
				t.Error("raw store error leaked")
			}
		})
	}
}
