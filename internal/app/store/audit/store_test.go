package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
)

func TestStore_LogAndQuery(t *testing.T) {
	store := audit.New(docstore.NewMemory())
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: "u1", Success: true, Timestamp: base},
		{Category: audit.CategoryAdmin, EventType: audit.EventOfficerApproved, UserID: "o1", ActorID: "a1", Success: true, Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, UserID: "u1", FailureReason: "role-mismatch", Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.GetByUser(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].EventType != audit.EventLoginFailed {
		t.Errorf("expected newest first, got %s", got[0].EventType)
	}
	if got[0].ID == "" {
		t.Error("expected ID to be generated")
	}

	admin, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil || len(admin) != 1 || admin[0].ActorID != "a1" {
		t.Fatalf("category filter: %v %+v", err, admin)
	}

	since := base.Add(90 * time.Second)
	recent, err := store.Query(ctx, audit.QueryFilter{Since: &since})
	if err != nil || len(recent) != 1 {
		t.Fatalf("since filter: %v %+v", err, recent)
	}

	limited, _ := store.GetRecent(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: %d", len(limited))
	}
}

func TestStore_Log_AutoSetsTimestamp(t *testing.T) {
	store := audit.New(docstore.NewMemory())
	ctx := context.Background()
	before := time.Now().Add(-time.Second)

	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Success: true}); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetRecent(ctx, 10)
	if len(got) != 1 || got[0].Timestamp.Before(before) {
		t.Fatalf("timestamp not set: %+v", got)
	}
}
