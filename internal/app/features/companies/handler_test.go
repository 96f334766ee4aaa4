package companies_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/munidesk/internal/app/features/companies"
	auditstore "github.com/dalemusser/munidesk/internal/app/store/audit"
	companystore "github.com/dalemusser/munidesk/internal/app/store/companies"
	reportstore "github.com/dalemusser/munidesk/internal/app/store/reports"
	userstore "github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*companies.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth: "log", Report: "log", Admin: "log",
	})
	handler := companies.NewHandler(companystore.New(db), userstore.New(db), reportstore.New(db), audit, logger)
	return handler, testutil.NewFixtures(t, db)
}

func TestCreate(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/companies", map[string]any{
		"name":            "Asphalt Works",
		"categories":      []string{"roads", "traffic_signs"},
		"platform_access": true,
		"contact_email":   "ops@asphaltworks.com",
	}, testutil.AdminUser())
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Asphalt Works")

	var got models.ExternalCompany
	rec.DecodeJSON(t, &got)
	if len(got.Categories) != 2 {
		t.Errorf("categories: got %d, want 2", len(got.Categories))
	}
	if !got.PlatformAccess {
		t.Error("expected platform access")
	}
}

func TestCreate_BadCategorySet(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"empty name", map[string]any{"name": "  ", "categories": []string{"roads"}}},
		{"no categories", map[string]any{"name": "X", "categories": []string{}}},
		{"three categories", map[string]any{"name": "X", "categories": []string{"roads", "sewer", "parks"}}},
		{"unknown category", map[string]any{"name": "X", "categories": []string{"unicorns"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/api/companies", tc.body, testutil.AdminUser())
			rec := testutil.NewRecorder()
			handler.Create(rec, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateCompany(ctx, "Asphalt Works", false, models.CategoryRoads)

	req := testutil.NewJSONRequest(t, "POST", "/api/companies", map[string]any{
		"name":       "asphalt works",
		"categories": []string{"roads"},
	}, testutil.AdminUser())
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
}

func TestList_ByCategory(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateCompany(ctx, "Asphalt Works", false, models.CategoryRoads)
	fixtures.CreateCompany(ctx, "Aqua Services", true, models.CategoryWaterSupply)

	req := testutil.NewAuthenticatedRequest("GET", "/api/companies?category=roads", testutil.AdminUser())
	rec := testutil.NewRecorder()
	handler.List(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var got []models.ExternalCompany
	rec.DecodeJSON(t, &got)
	if len(got) != 1 {
		t.Fatalf("got %d companies, want 1", len(got))
	}
	if got[0].Name != "Asphalt Works" {
		t.Errorf("got %q", got[0].Name)
	}

	req = testutil.NewAuthenticatedRequest("GET", "/api/companies?category=unicorns", testutil.AdminUser())
	rec = testutil.NewRecorder()
	handler.List(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdate(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	company := fixtures.CreateCompany(ctx, "Asphalt Works", false, models.CategoryRoads)

	req := testutil.NewJSONRequest(t, "PUT", "/api/companies/"+company.ID.Hex(), map[string]any{
		"name":            "Asphalt Works",
		"categories":      []string{"roads", "sewer"},
		"platform_access": true,
	}, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "companyID", company.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Update(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var got models.ExternalCompany
	rec.DecodeJSON(t, &got)
	if len(got.Categories) != 2 || !got.PlatformAccess {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestDelete_Guards(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")

	// Guard 1: open assigned report.
	busy := fixtures.CreateCompany(ctx, "Busy Co", false, models.CategoryRoads)
	report := fixtures.CreateReport(ctx, "Pothole", models.CategoryRoads, models.StatusAssigned, citizen.ID)
	fixtures.AssignExternal(ctx, report, busy.ID, nil)

	req := testutil.NewAuthenticatedRequest("DELETE", "/api/companies/"+busy.ID.Hex(), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "companyID", busy.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Delete(rec, req)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "open assigned reports")

	// Guard 2: maintainer accounts still attached.
	staffed := fixtures.CreateCompany(ctx, "Staffed Co", true, models.CategoryRoads)
	fixtures.CreateMaintainer(ctx, "Kostas Field", staffed.ID)

	req = testutil.NewAuthenticatedRequest("DELETE", "/api/companies/"+staffed.ID.Hex(), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "companyID", staffed.ID.Hex())
	rec = testutil.NewRecorder()
	handler.Delete(rec, req)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "maintainer accounts")

	// No guards: deletion succeeds.
	idle := fixtures.CreateCompany(ctx, "Idle Co", false, models.CategoryRoads)
	req = testutil.NewAuthenticatedRequest("DELETE", "/api/companies/"+idle.ID.Hex(), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "companyID", idle.ID.Hex())
	rec = testutil.NewRecorder()
	handler.Delete(rec, req)
	rec.AssertStatus(t, http.StatusNoContent)
}

func TestMaintainers(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	company := fixtures.CreateCompany(ctx, "Asphalt Works", true, models.CategoryRoads)
	maintainer := fixtures.CreateMaintainer(ctx, "Kostas Field", company.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/api/companies/"+company.ID.Hex()+"/maintainers", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "companyID", company.ID.Hex())
	rec := testutil.NewRecorder()
	handler.Maintainers(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var got []models.User
	rec.DecodeJSON(t, &got)
	if len(got) != 1 || got[0].ID != maintainer.ID {
		t.Errorf("unexpected maintainers: %+v", got)
	}
}
