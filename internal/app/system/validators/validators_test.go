package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/system/validators"
	"github.com/dalemusser/wardwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "credentials", "complaints", "audit_events"} {
		if !have[want] {
			t.Errorf("collection %q not created", want)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	users := db.Collection("users")
	now := time.Now()

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{"citizen", bson.M{"_id": "u1", "email": "a@ward.test", "role": "user", "createdAt": now}, false},
		{"pending officer", bson.M{"_id": "u2", "email": "b@ward.test", "role": "officer", "status": "pending", "ward": "Ward 1", "createdAt": now}, false},
		{"missing email", bson.M{"_id": "u3", "role": "user", "createdAt": now}, true},
		{"unknown role", bson.M{"_id": "u4", "email": "c@ward.test", "role": "superadmin", "createdAt": now}, true},
		{"unknown status", bson.M{"_id": "u5", "email": "d@ward.test", "role": "officer", "status": "suspended", "createdAt": now}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComplaintsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	complaints := db.Collection("complaints")

	valid := func() bson.M {
		return bson.M{
			"userId":      "u1",
			"ward":        "Ward 1",
			"zoneId":      "zone-1",
			"category":    "Garbage Accumulation",
			"description": "Overflowing bin",
			"status":      "Pending",
			"latitude":    nil,
			"longitude":   nil,
			"createdAt":   time.Now(),
		}
	}

	if _, err := complaints.InsertOne(ctx, valid()); err != nil {
		t.Fatalf("valid complaint rejected: %v", err)
	}

	bad := valid()
	bad["status"] = "Closed"
	if _, err := complaints.InsertOne(ctx, bad); err == nil {
		t.Error("expected unknown status to be rejected")
	}

	bad = valid()
	bad["description"] = "   "
	if _, err := complaints.InsertOne(ctx, bad); err == nil {
		t.Error("expected blank description to be rejected")
	}

	bad = valid()
	bad["category"] = "Potholes"
	if _, err := complaints.InsertOne(ctx, bad); err == nil {
		t.Error("expected unknown category to be rejected")
	}
}
