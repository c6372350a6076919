package auditlog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/features/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/dalemusser/wardwatch/internal/testutil"
)

type listResponse struct {
	Items []struct {
		EventType  string `json:"eventType"`
		ActorName  string `json:"actorName"`
		TargetName string `json:"targetName"`
	} `json:"items"`
	EventTypes []string `json:"eventTypes"`
}

func TestServeList(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@example.com")
	ravi := env.Officer(t, "ravi@example.com", "Ravi", "Ward 12", models.AdmissionPending)

	ctx := context.Background()
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for _, e := range []audit.Event{
		{Timestamp: at, Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: admin.ID, Success: true},
		{Timestamp: at.Add(time.Minute), Category: audit.CategoryAdmin, EventType: audit.EventOfficerApproved, ActorID: admin.ID, UserID: ravi.ID, Success: true},
	} {
		if err := env.AuditStore.Log(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	router := auditlog.Routes(auditlog.NewHandler(env.AuditStore, env.Accounts, env.Log), env.SessionMgr)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst string
	}{
		{"all", "", 2, audit.EventOfficerApproved},
		{"admin category", "?category=admin", 1, audit.EventOfficerApproved},
		{"auth category", "?category=auth", 1, audit.EventLoginSuccess},
		{"event type", "?event_type=login_success", 1, audit.EventLoginSuccess},
		{"limit", "?limit=1", 1, audit.EventOfficerApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.WithAccount(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), admin))
			rec.AssertStatus(t, http.StatusOK)

			var resp listResponse
			rec.DecodeJSON(t, &resp)
			if len(resp.Items) != tt.wantCount {
				t.Fatalf("items = %d, want %d", len(resp.Items), tt.wantCount)
			}
			if resp.Items[0].EventType != tt.wantFirst {
				t.Errorf("first = %q, want %q", resp.Items[0].EventType, tt.wantFirst)
			}
		})
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAccount(httptest.NewRequest(http.MethodGet, "/?category=admin", nil), admin))
	var resp listResponse
	rec.DecodeJSON(t, &resp)
	if resp.Items[0].ActorName != "Admin" || resp.Items[0].TargetName != "Ravi" {
		t.Errorf("names = %q / %q", resp.Items[0].ActorName, resp.Items[0].TargetName)
	}
}

func TestServeList_Validation(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@example.com")
	router := auditlog.Routes(auditlog.NewHandler(env.AuditStore, env.Accounts, env.Log), env.SessionMgr)

	for _, q := range []string{"?category=security", "?start_date=yesterday"} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAccount(httptest.NewRequest(http.MethodGet, "/"+q, nil), admin))
		rec.AssertStatus(t, http.StatusUnprocessableEntity)
	}
}

func TestServeList_AdminOnly(t *testing.T) {
	env := testutil.NewEnv(t)
	ravi := env.Officer(t, "ravi@example.com", "Ravi", "Ward 12", models.AdmissionApproved)
	router := auditlog.Routes(auditlog.NewHandler(env.AuditStore, env.Accounts, env.Log), env.SessionMgr)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAccount(httptest.NewRequest(http.MethodGet, "/", nil), ravi))
	rec.AssertStatus(t, http.StatusForbidden)
}
