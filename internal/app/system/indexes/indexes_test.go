package indexes_test

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/munidesk/internal/app/system/indexes"
	"github.com/dalemusser/munidesk/internal/testutil"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

// indexNames lists the names of all indexes on a collection.
func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, collection string) map[string]bool {
	t.Helper()

	cur, err := db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", collection, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesUserIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db, "users")
	expected := []string{
		"uniq_users_email",
		"idx_users_role_status_created",
		"idx_users_role_company_status",
		"idx_users_fullnameci__id",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected index %q to exist on users collection", name)
		}
	}
}

func TestEnsureAll_CreatesCompanyIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db, "external_companies")
	expected := []string{
		"uniq_companies_nameci",
		"idx_companies_categories_nameci",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected index %q to exist on external_companies collection", name)
		}
	}
}

func TestEnsureAll_CreatesReportIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db, "reports")
	expected := []string{
		"idx_reports_status_category_created",
		"idx_reports_submitter_created",
		"idx_reports_officer_status",
		"idx_reports_maintainer_status",
		"idx_reports_company_status",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected index %q to exist on reports collection", name)
		}
	}
}

func TestEnsureAll_CreatesNoteAndNotificationIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	noteNames := indexNames(t, ctx, db, "internal_notes")
	if !noteNames["idx_notes_report_created"] {
		t.Error("expected index idx_notes_report_created to exist on internal_notes collection")
	}

	notifNames := indexNames(t, ctx, db, "notifications")
	expected := []string{
		"uniq_notifications_dedup",
		"idx_notifications_pending",
		"idx_notifications_recipient_created",
	}
	for _, name := range expected {
		if !notifNames[name] {
			t.Errorf("expected index %q to exist on notifications collection", name)
		}
	}
}

func TestEnsureAll_UniqueEmailEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	users := db.Collection("users")
	if _, err := users.InsertOne(ctx, bson.M{"email": "dup@example.com"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"email": "dup@example.com"}); err == nil {
		t.Error("expected duplicate email insert to fail")
	}
}
