package reportstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	reportstore "github.com/dalemusser/munidesk/internal/app/store/reports"
	"github.com/dalemusser/munidesk/internal/app/system/paging"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cursorAt builds the keyset cursor that points at the given report.
func cursorAt(t *testing.T, ctx context.Context, store *reportstore.Store, id primitive.ObjectID) string {
	t.Helper()
	rep, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID for cursor: %v", err)
	}
	return wafflemongo.EncodeCursor(paging.CursorKey(rep.CreatedAt), rep.ID)
}

func titles(rows []models.Report) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")

	created, err := store.Create(ctx, models.Report{
		Title:       "  Pothole on   Main Street  ",
		Description: "Deep pothole near the crosswalk",
		Category:    models.CategoryRoads,
		Latitude:    40.62,
		Longitude:   22.96,
		SubmitterID: citizen.ID,
		// Status set by callers is ignored; creation always starts pending.
		Status: models.StatusResolved,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.StatusPendingApproval {
		t.Errorf("status: got %q, want %q", created.Status, models.StatusPendingApproval)
	}
	if created.Title != "Pothole on Main Street" {
		t.Errorf("title not normalized: got %q", created.Title)
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
	if created.AssignedOfficerID != nil || created.ExternalCompanyID != nil {
		t.Error("expected no assignments on a new report")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_InvalidCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")

	_, err := store.Create(ctx, models.Report{
		Title:       "Broken thing",
		Description: "desc",
		Category:    "unicorns",
		SubmitterID: citizen.ID,
	})
	if err == nil {
		t.Fatal("expected error for invalid category")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, reportstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Approve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusPendingApproval, citizen.ID)

	updated, err := store.Approve(ctx, report.ID, officer.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if updated.Status != models.StatusAssigned {
		t.Errorf("status: got %q, want %q", updated.Status, models.StatusAssigned)
	}
	if updated.AssignedOfficerID == nil || *updated.AssignedOfficerID != officer.ID {
		t.Error("expected officer to be bound")
	}

	// Second approval loses the conditional write.
	_, err = store.Approve(ctx, report.ID, officer.ID)
	if !errors.Is(err, reportstore.ErrStateConflict) {
		t.Errorf("second approve: expected ErrStateConflict, got %v", err)
	}
}

func TestStore_Reject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	report := fixtures.CreateReport(ctx, "Duplicate", models.CategoryParks, models.StatusPendingApproval, citizen.ID)

	updated, err := store.Reject(ctx, report.ID, "duplicate of an existing report")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if updated.Status != models.StatusRejected {
		t.Errorf("status: got %q, want %q", updated.Status, models.StatusRejected)
	}
	if updated.RejectedReason != "duplicate of an existing report" {
		t.Errorf("rejected reason: got %q", updated.RejectedReason)
	}

	_, err = store.Reject(ctx, report.ID, "again")
	if !errors.Is(err, reportstore.ErrStateConflict) {
		t.Errorf("re-reject: expected ErrStateConflict, got %v", err)
	}
}

func TestStore_UpdateStatus_Conditional(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	updated, err := store.UpdateStatus(ctx, report.ID, models.StatusAssigned, models.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.StatusInProgress {
		t.Errorf("status: got %q, want %q", updated.Status, models.StatusInProgress)
	}

	// The same from-state no longer matches.
	_, err = store.UpdateStatus(ctx, report.ID, models.StatusAssigned, models.StatusInProgress)
	if !errors.Is(err, reportstore.ErrStateConflict) {
		t.Errorf("stale update: expected ErrStateConflict, got %v", err)
	}

	_, err = store.UpdateStatus(ctx, primitive.NewObjectID(), models.StatusAssigned, models.StatusInProgress)
	if !errors.Is(err, reportstore.ErrNotFound) {
		t.Errorf("missing report: expected ErrNotFound, got %v", err)
	}
}

func TestStore_AssignExternal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	company := fixtures.CreateCompany(ctx, "Asphalt Works", true, models.CategoryRoads)
	maintainer := fixtures.CreateMaintainer(ctx, "Kostas Field", company.ID)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	updated, err := store.AssignExternal(ctx, report.ID, company.ID, &maintainer.ID)
	if err != nil {
		t.Fatalf("AssignExternal failed: %v", err)
	}
	if updated.Status != models.StatusExternalAssigned {
		t.Errorf("status: got %q, want %q", updated.Status, models.StatusExternalAssigned)
	}
	if updated.ExternalCompanyID == nil || *updated.ExternalCompanyID != company.ID {
		t.Error("expected company to be bound")
	}
	if updated.ExternalMaintainerID == nil || *updated.ExternalMaintainerID != maintainer.ID {
		t.Error("expected maintainer to be bound")
	}
	if updated.AssignedOfficerID == nil || *updated.AssignedOfficerID != officer.ID {
		t.Error("officer binding must survive external assignment")
	}

	// Already externally assigned: the conditional filter misses.
	_, err = store.AssignExternal(ctx, report.ID, company.ID, nil)
	if !errors.Is(err, reportstore.ErrStateConflict) {
		t.Errorf("double assign: expected ErrStateConflict, got %v", err)
	}
}

func TestStore_ReassignExternal_DropsMaintainer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	companyA := fixtures.CreateCompany(ctx, "Asphalt Works", true, models.CategoryRoads)
	companyB := fixtures.CreateCompany(ctx, "Road Repair Ltd", false, models.CategoryRoads)
	maintainer := fixtures.CreateMaintainer(ctx, "Kostas Field", companyA.ID)

	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)
	report = fixtures.AssignExternal(ctx, report, companyA.ID, &maintainer.ID)

	updated, err := store.ReassignExternal(ctx, report.ID, companyB.ID, nil)
	if err != nil {
		t.Fatalf("ReassignExternal failed: %v", err)
	}
	if updated.ExternalCompanyID == nil || *updated.ExternalCompanyID != companyB.ID {
		t.Error("expected new company to be bound")
	}
	if updated.ExternalMaintainerID != nil {
		t.Error("expected maintainer binding to be cleared for company-only reassignment")
	}
}

func TestStore_ReassignExternal_RequiresExternalAssignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	company := fixtures.CreateCompany(ctx, "Asphalt Works", false, models.CategoryRoads)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)

	_, err := store.ReassignExternal(ctx, report.ID, company.ID, nil)
	if !errors.Is(err, reportstore.ErrStateConflict) {
		t.Errorf("expected ErrStateConflict, got %v", err)
	}
}

func TestStore_ReassignExternal_FromSuspended(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	companyA := fixtures.CreateCompany(ctx, "Asphalt Works", true, models.CategoryRoads)
	companyB := fixtures.CreateCompany(ctx, "Road Repair Ltd", false, models.CategoryRoads)
	maintainer := fixtures.CreateMaintainer(ctx, "Kostas Field", companyA.ID)

	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)
	report = fixtures.AssignExternal(ctx, report, companyA.ID, &maintainer.ID)
	if _, err := store.UpdateStatus(ctx, report.ID, models.StatusExternalAssigned, models.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus to in_progress failed: %v", err)
	}
	if _, err := store.UpdateStatus(ctx, report.ID, models.StatusInProgress, models.StatusSuspended); err != nil {
		t.Fatalf("UpdateStatus to suspended failed: %v", err)
	}

	updated, err := store.ReassignExternal(ctx, report.ID, companyB.ID, nil)
	if err != nil {
		t.Fatalf("ReassignExternal failed: %v", err)
	}
	if updated.Status != models.StatusExternalAssigned {
		t.Errorf("expected status %s, got %s", models.StatusExternalAssigned, updated.Status)
	}
	if updated.ExternalCompanyID == nil || *updated.ExternalCompanyID != companyB.ID {
		t.Error("expected new company to be bound")
	}
	if updated.ExternalMaintainerID != nil {
		t.Error("expected maintainer binding to be cleared for company-only reassignment")
	}
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateCitizen(ctx, "Alice")
	bob := fixtures.CreateCitizen(ctx, "Bob")
	fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusPendingApproval, alice.ID)
	fixtures.CreateReport(ctx, "Dark street", models.CategoryPublicLighting, models.StatusPendingApproval, alice.ID)
	fixtures.CreateReport(ctx, "Leaking main", models.CategoryWaterSupply, models.StatusResolved, bob.ID)

	page, err := store.List(ctx, reportstore.ListFilter{SubmitterID: &alice.ID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Reports) != 2 {
		t.Errorf("submitter filter: got %d reports, want 2", len(page.Reports))
	}

	page, err = store.List(ctx, reportstore.ListFilter{Status: models.StatusResolved})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Reports) != 1 {
		t.Errorf("status filter: got %d reports, want 1", len(page.Reports))
	}

	page, err = store.List(ctx, reportstore.ListFilter{Category: models.CategoryRoads})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Reports) != 1 {
		t.Errorf("category filter: got %d reports, want 1", len(page.Reports))
	}
}

func TestStore_List_KeysetPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Alice")
	for i := 0; i < 3; i++ {
		fixtures.CreateReport(ctx, fmt.Sprintf("Report %d", i), models.CategoryRoads, models.StatusPendingApproval, citizen.ID)
		time.Sleep(5 * time.Millisecond)
	}

	first, err := store.List(ctx, reportstore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(first.Reports) != 3 {
		t.Fatalf("first page: got %d reports, want 3", len(first.Reports))
	}
	if first.Reports[0].Title != "Report 2" {
		t.Errorf("expected newest first, got %q", first.Reports[0].Title)
	}
	if first.HasPrev || first.HasNext {
		t.Errorf("three reports fit one page: HasPrev=%v HasNext=%v", first.HasPrev, first.HasNext)
	}

	// An "after" cursor placed on the newest report yields the older two.
	cursorPage, err := store.List(ctx, reportstore.ListFilter{
		After: cursorAt(t, ctx, store, first.Reports[0].ID),
	})
	if err != nil {
		t.Fatalf("List after cursor failed: %v", err)
	}
	if len(cursorPage.Reports) != 2 {
		t.Fatalf("after cursor: got %d reports, want 2", len(cursorPage.Reports))
	}
	if cursorPage.Reports[0].Title != "Report 1" {
		t.Errorf("after cursor: expected Report 1 first, got %q", cursorPage.Reports[0].Title)
	}
	if !cursorPage.HasPrev {
		t.Error("after cursor: expected HasPrev")
	}

	// Walking back with "before" from the middle report returns the newest.
	backPage, err := store.List(ctx, reportstore.ListFilter{
		Before: cursorAt(t, ctx, store, cursorPage.Reports[0].ID),
	})
	if err != nil {
		t.Fatalf("List before cursor failed: %v", err)
	}
	if len(backPage.Reports) != 1 || backPage.Reports[0].Title != "Report 2" {
		t.Errorf("before cursor: got %v, want just Report 2", titles(backPage.Reports))
	}
	if !backPage.HasNext {
		t.Error("before cursor: expected HasNext")
	}
}

func TestStore_CountOpenAssignedTo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)

	open := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusInProgress, citizen.ID)
	fixtures.AssignOfficer(ctx, open, officer.ID)

	closed := fixtures.CreateReport(ctx, "Old pothole", models.CategoryRoads, models.StatusResolved, citizen.ID)
	fixtures.AssignOfficer(ctx, closed, officer.ID)

	n, err := store.CountOpenAssignedTo(ctx, officer.ID)
	if err != nil {
		t.Fatalf("CountOpenAssignedTo failed: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d open reports, want 1", n)
	}
}
