package notestore_test

import (
	"testing"
	"time"

	notestore "github.com/dalemusser/munidesk/internal/app/store/notes"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusInProgress, citizen.ID)

	created, err := store.Create(ctx, models.InternalNote{
		ReportID:   report.ID,
		AuthorID:   officer.ID,
		AuthorRole: officer.Role,
		Content:    "ordered cold mix, patching scheduled",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if created.AuthorRole != models.RoleRoadsOfficer {
		t.Errorf("author role: got %q", created.AuthorRole)
	}
}

func TestStore_Create_EmptyContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.InternalNote{
		ReportID: primitive.NewObjectID(),
		AuthorID: primitive.NewObjectID(),
	})
	if err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestStore_ListByReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusInProgress, citizen.ID)
	other := fixtures.CreateReport(ctx, "Dark street", models.CategoryPublicLighting, models.StatusInProgress, citizen.ID)

	fixtures.CreateNote(ctx, report.ID, officer, "first note")
	time.Sleep(5 * time.Millisecond)
	fixtures.CreateNote(ctx, report.ID, officer, "second note")
	fixtures.CreateNote(ctx, other.ID, officer, "unrelated note")

	got, err := store.ListByReport(ctx, report.ID)
	if err != nil {
		t.Fatalf("ListByReport failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d notes, want 2", len(got))
	}
	// Oldest first.
	if got[0].Content != "first note" || got[1].Content != "second note" {
		t.Errorf("unexpected order: %q, %q", got[0].Content, got[1].Content)
	}
}
