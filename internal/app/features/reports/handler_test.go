package reports_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/munidesk/internal/app/features/reports"
	"github.com/dalemusser/munidesk/internal/app/lifecycle"
	auditstore "github.com/dalemusser/munidesk/internal/app/store/audit"
	companystore "github.com/dalemusser/munidesk/internal/app/store/companies"
	notestore "github.com/dalemusser/munidesk/internal/app/store/notes"
	notificationstore "github.com/dalemusser/munidesk/internal/app/store/notifications"
	reportstore "github.com/dalemusser/munidesk/internal/app/store/reports"
	userstore "github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	engine := lifecycle.New(
		reportstore.New(db),
		userstore.New(db),
		companystore.New(db),
		notestore.New(db),
		notificationstore.New(db),
		logger,
	)
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth: "log", Report: "log", Admin: "log",
	})
	handler := reports.NewHandler(engine, reportstore.New(db), audit, logger)
	return handler, testutil.NewFixtures(t, db)
}

func asUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
}

func TestCreate_CitizenFilesReport(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")

	req := testutil.NewJSONRequest(t, "POST", "/api/reports", map[string]any{
		"title":       "Pothole on Main Street",
		"description": "Deep pothole near the crosswalk",
		"category":    "roads",
		"latitude":    40.64,
		"longitude":   22.94,
	}, asUser(citizen))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var got struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Category string `json:"category"`
	}
	rec.DecodeJSON(t, &got)
	if got.Status != "pending_approval" {
		t.Errorf("status: got %q, want pending_approval", got.Status)
	}
	if got.Category != "roads" {
		t.Errorf("category: got %q", got.Category)
	}
}

func TestCreate_NonCitizenForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports", map[string]any{
		"title":       "Pothole",
		"description": "desc",
		"category":    "roads",
	}, asUser(officer))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestCreate_UnknownFieldRejected(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")

	req := testutil.NewJSONRequest(t, "POST", "/api/reports", map[string]any{
		"title":       "Pothole",
		"description": "desc",
		"category":    "roads",
		"bogus_field": true,
	}, asUser(citizen))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestApprove_DefaultOfficer(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	pr := fixtures.CreatePublicRelations(ctx, "Eleni PR")
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusPendingApproval, citizen.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/approve", map[string]any{}, asUser(pr))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Approve(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Status            string `json:"status"`
		AssignedOfficerID string `json:"assigned_officer_id"`
	}
	rec.DecodeJSON(t, &got)
	if got.Status != "assigned" {
		t.Errorf("status: got %q, want assigned", got.Status)
	}
	if got.AssignedOfficerID != officer.ID.Hex() {
		t.Errorf("assigned officer: got %q, want %q", got.AssignedOfficerID, officer.ID.Hex())
	}
}

func TestApprove_CitizenForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusPendingApproval, citizen.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/approve", map[string]any{}, asUser(citizen))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Approve(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestReject_RequiresReason(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	pr := fixtures.CreatePublicRelations(ctx, "Eleni PR")
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusPendingApproval, citizen.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/reject", map[string]any{
		"reason": "   ",
	}, asUser(pr))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Reject(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)

	req = testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/reject", map[string]any{
		"reason": "duplicate of an existing report",
	}, asUser(pr))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec = testutil.NewRecorder()
	handler.Reject(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "rejected")
}

func TestUpdateStatus_AssignedOfficer(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/status", map[string]any{
		"status": "in_progress",
	}, asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.UpdateStatus(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "in_progress")
}

func TestUpdateStatus_UnassignedOfficerForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	assigned := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	other := fixtures.CreateOfficer(ctx, "Petros Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, assigned.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/status", map[string]any{
		"status": "in_progress",
	}, asUser(other))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.UpdateStatus(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestUpdateStatus_DisallowedTarget(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	// "assigned" is not a caller-settable status.
	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/status", map[string]any{
		"status": "assigned",
	}, asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.UpdateStatus(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "must be equal to one of the allowed values")
}

func TestAssignExternal_Flow(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	company := fixtures.CreateCompany(ctx, "Asphalt Works", true, models.CategoryRoads)
	maintainer := fixtures.CreateMaintainer(ctx, "Kostas Field", company.ID)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/assign-external", map[string]any{
		"company_id":    company.ID.Hex(),
		"maintainer_id": maintainer.ID.Hex(),
	}, asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.AssignExternal(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Status               string `json:"status"`
		ExternalCompanyID    string `json:"external_company_id"`
		ExternalMaintainerID string `json:"external_maintainer_id"`
	}
	rec.DecodeJSON(t, &got)
	if got.Status != "external_assigned" {
		t.Errorf("status: got %q, want external_assigned", got.Status)
	}
	if got.ExternalCompanyID != company.ID.Hex() {
		t.Errorf("company: got %q", got.ExternalCompanyID)
	}
	if got.ExternalMaintainerID != maintainer.ID.Hex() {
		t.Errorf("maintainer: got %q", got.ExternalMaintainerID)
	}
}

func TestAssignExternal_WrongCategoryCompany(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	company := fixtures.CreateCompany(ctx, "Aqua Services", false, models.CategoryWaterSupply)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/assign-external", map[string]any{
		"company_id": company.ID.Hex(),
	}, asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.AssignExternal(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "does not service this report category")
}

func TestList_RoleScoping(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateCitizen(ctx, "Alice")
	bob := fixtures.CreateCitizen(ctx, "Bob")
	pr := fixtures.CreatePublicRelations(ctx, "Eleni PR")
	fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusPendingApproval, alice.ID)
	fixtures.CreateReport(ctx, "Dark street", models.CategoryPublicLighting, models.StatusPendingApproval, bob.ID)

	// Citizens see only their own reports.
	req := testutil.NewAuthenticatedRequest("GET", "/api/reports", asUser(alice))
	rec := testutil.NewRecorder()
	handler.List(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var page struct {
		Reports []map[string]any `json:"reports"`
		HasNext bool             `json:"has_next"`
	}
	rec.DecodeJSON(t, &page)
	if len(page.Reports) != 1 {
		t.Errorf("citizen list: got %d reports, want 1", len(page.Reports))
	}

	// Public relations sees everything.
	req = testutil.NewAuthenticatedRequest("GET", "/api/reports", asUser(pr))
	rec = testutil.NewRecorder()
	handler.List(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	rec.DecodeJSON(t, &page)
	if len(page.Reports) != 2 {
		t.Errorf("pr list: got %d reports, want 2", len(page.Reports))
	}
	if page.HasNext {
		t.Error("two reports fit one page")
	}
}

func TestGet_AnonymousHidesSubmitter(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateCitizen(ctx, "Alice")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)

	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, alice.ID)
	report.IsAnonymous = true
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	// The assigned officer must not see the submitter identity.
	req := testutil.NewAuthenticatedRequest("GET", "/api/reports/"+report.ID.Hex(), asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Get(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var got map[string]any
	rec.DecodeJSON(t, &got)
	if v, present := got["submitter_id"]; present && v != "" {
		t.Errorf("submitter_id leaked to officer: %v", v)
	}

	// The submitter still sees their own identity.
	req = testutil.NewAuthenticatedRequest("GET", "/api/reports/"+report.ID.Hex(), asUser(alice))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec = testutil.NewRecorder()
	handler.Get(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &got)
	if got["submitter_id"] != alice.ID.Hex() {
		t.Errorf("submitter should see own id, got %v", got["submitter_id"])
	}
}

func TestNotes_GateByAssignment(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	officer := fixtures.CreateOfficer(ctx, "Nikos Roads", models.RoleRoadsOfficer)
	other := fixtures.CreateOfficer(ctx, "Petros Roads", models.RoleRoadsOfficer)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusInProgress, citizen.ID)
	report = fixtures.AssignOfficer(ctx, report, officer.ID)

	// The assigned officer writes a note.
	req := testutil.NewJSONRequest(t, "POST", "/api/reports/"+report.ID.Hex()+"/notes", map[string]any{
		"content": "patching scheduled for Tuesday",
	}, asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec := testutil.NewRecorder()
	handler.CreateNote(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	// An unassigned officer cannot read the notes.
	req = testutil.NewAuthenticatedRequest("GET", "/api/reports/"+report.ID.Hex()+"/notes", asUser(other))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec = testutil.NewRecorder()
	handler.ListNotes(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The assigned officer reads them back.
	req = testutil.NewAuthenticatedRequest("GET", "/api/reports/"+report.ID.Hex()+"/notes", asUser(officer))
	req = testutil.WithChiURLParam(req, "reportID", report.ID.Hex())
	rec = testutil.NewRecorder()
	handler.ListNotes(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "patching scheduled for Tuesday")
}
