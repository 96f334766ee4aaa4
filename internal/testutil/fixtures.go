package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active user with the given name and role. The email
// is derived from the name with a random suffix so the unique email index
// never trips across fixtures in the same database. The password hash is a
// placeholder; tests exercising password verification should hash their own.
func (f *Fixtures) CreateUser(ctx context.Context, fullName string, role models.Role) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        uniqueEmail(fullName),
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMye.IjdQXvbVlXms/Plhy6xFSepYHFGS2e",
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateCitizen creates a test citizen account.
func (f *Fixtures) CreateCitizen(ctx context.Context, fullName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RoleCitizen)
}

// CreateAdmin creates a test administrator account.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RoleAdministrator)
}

// CreatePublicRelations creates a test public relations account.
func (f *Fixtures) CreatePublicRelations(ctx context.Context, fullName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RolePublicRelations)
}

// CreateOfficer creates a test department officer with the given role.
func (f *Fixtures) CreateOfficer(ctx context.Context, fullName string, role models.Role) models.User {
	f.t.Helper()
	if !role.IsOfficer() {
		f.t.Fatalf("CreateOfficer: %q is not an officer role", role)
	}
	return f.CreateUser(ctx, fullName, role)
}

// CreateMaintainer creates a test external maintainer bound to companyID.
func (f *Fixtures) CreateMaintainer(ctx context.Context, fullName string, companyID primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:                primitive.NewObjectID(),
		FullName:          fullName,
		FullNameCI:        text.Fold(fullName),
		Email:             uniqueEmail(fullName),
		PasswordHash:      "$2a$10$N9qo8uLOickgx2ZMRZoMye.IjdQXvbVlXms/Plhy6xFSepYHFGS2e",
		Role:              models.RoleExternalMaintainer,
		Status:            "active",
		ExternalCompanyID: &companyID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test maintainer: %v", err)
	}

	return user
}

// CreateDisabledUser creates a user with disabled status in the given role.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName string, role models.Role) models.User {
	f.t.Helper()

	user := f.CreateUser(ctx, fullName, role)
	user.Status = "disabled"
	_, err := f.db.Collection("users").ReplaceOne(ctx, idFilter(user.ID), user)
	if err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}

	return user
}

// CreateCompany creates an external company serving the given categories.
func (f *Fixtures) CreateCompany(ctx context.Context, name string, platformAccess bool, categories ...models.ReportCategory) models.ExternalCompany {
	f.t.Helper()

	if len(categories) == 0 {
		categories = []models.ReportCategory{models.CategoryRoads}
	}
	now := time.Now().UTC()
	company := models.ExternalCompany{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Categories:     categories,
		PlatformAccess: platformAccess,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := f.db.Collection("external_companies").InsertOne(ctx, company)
	if err != nil {
		f.t.Fatalf("failed to create test company: %v", err)
	}

	return company
}

// CreateReport creates a report in the given status for the given submitter.
// Use AssignOfficer / AssignExternal to bind assignees afterwards.
func (f *Fixtures) CreateReport(ctx context.Context, title string, category models.ReportCategory, status models.ReportStatus, submitterID primitive.ObjectID) models.Report {
	f.t.Helper()

	now := time.Now().UTC()
	report := models.Report{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Test description for " + title,
		Category:    category,
		Latitude:    40.64,
		Longitude:   22.94,
		Status:      status,
		SubmitterID: submitterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("reports").InsertOne(ctx, report)
	if err != nil {
		f.t.Fatalf("failed to create test report: %v", err)
	}

	return report
}

// AssignOfficer binds an officer to an existing report and returns the
// updated record.
func (f *Fixtures) AssignOfficer(ctx context.Context, report models.Report, officerID primitive.ObjectID) models.Report {
	f.t.Helper()

	report.AssignedOfficerID = &officerID
	report.UpdatedAt = time.Now().UTC()
	_, err := f.db.Collection("reports").ReplaceOne(ctx, idFilter(report.ID), report)
	if err != nil {
		f.t.Fatalf("failed to assign officer on test report: %v", err)
	}

	return report
}

// AssignExternal binds an external company, and optionally a direct
// maintainer, to an existing report and moves it to external_assigned.
func (f *Fixtures) AssignExternal(ctx context.Context, report models.Report, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) models.Report {
	f.t.Helper()

	report.ExternalCompanyID = &companyID
	report.ExternalMaintainerID = maintainerID
	report.Status = models.StatusExternalAssigned
	report.UpdatedAt = time.Now().UTC()
	_, err := f.db.Collection("reports").ReplaceOne(ctx, idFilter(report.ID), report)
	if err != nil {
		f.t.Fatalf("failed to assign external company on test report: %v", err)
	}

	return report
}

// CreateNote creates an internal note on the given report.
func (f *Fixtures) CreateNote(ctx context.Context, reportID primitive.ObjectID, author models.User, content string) models.InternalNote {
	f.t.Helper()

	note := models.InternalNote{
		ID:         primitive.NewObjectID(),
		ReportID:   reportID,
		AuthorID:   author.ID,
		AuthorRole: author.Role,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := f.db.Collection("internal_notes").InsertOne(ctx, note)
	if err != nil {
		f.t.Fatalf("failed to create test note: %v", err)
	}

	return note
}

func idFilter(id primitive.ObjectID) map[string]primitive.ObjectID {
	return map[string]primitive.ObjectID{"_id": id}
}

func uniqueEmail(fullName string) string {
	local := strings.ReplaceAll(text.Fold(fullName), " ", ".")
	return fmt.Sprintf("%s-%s@example.com", local, primitive.NewObjectID().Hex()[18:])
}
