package indexes_test

import (
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/system/indexes"
	"github.com/dalemusser/wardwatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("Decode index failed: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":        {"uniq_users_email", "idx_users_role_status_ward"},
		"credentials":  {"uniq_credentials_uid"},
		"complaints":   {"idx_complaints_user_created", "idx_complaints_ward_created", "idx_complaints_officer_created", "idx_complaints_created"},
		"audit_events": {"idx_audit_timestamp", "idx_audit_category_type_timestamp", "idx_audit_user_timestamp"},
	}
	for coll, names := range want {
		got := indexNames(t, db, coll)
		for _, n := range names {
			if !got[n] {
				t.Errorf("%s: missing index %s", coll, n)
			}
		}
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("complaints").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("legacy_created"),
	})
	if err != nil {
		t.Fatalf("CreateOne failed: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	got := indexNames(t, db, "complaints")
	if got["legacy_created"] || !got["idx_complaints_created"] {
		t.Errorf("indexes = %v", got)
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	users := db.Collection("users")
	if _, err := users.InsertOne(ctx, bson.M{"_id": "u1", "email": "asha@example.com"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"_id": "u2", "email": "asha@example.com"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
}
