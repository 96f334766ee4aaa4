package auth_test

import (
	"net/http"
	"testing"

	authfeature "github.com/dalemusser/munidesk/internal/app/features/auth"
	auditstore "github.com/dalemusser/munidesk/internal/app/store/audit"
	userstore "github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	sysauth "github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*authfeature.Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := sysauth.NewSessionManager("test-session-key-0123456789ABCDEF", "munidesk-test", "", 0, false, logger)
	if err != nil {
		t.Fatalf("session manager init: %v", err)
	}
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth: "log", Report: "log", Admin: "log",
	})
	users := userstore.New(db)
	return authfeature.NewHandler(users, sm, audit, logger), users
}

func TestLogin_Success(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := users.Create(ctx, models.User{
		FullName: "Maria Pappas",
		Email:    "maria@example.com",
		Role:     models.RoleCitizen,
	}, "correct-horse")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]string{
		"email":    "MARIA@example.com",
		"password": "correct-horse",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()
	handler.Login(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	rec.DecodeJSON(t, &got)
	if got.Email != "maria@example.com" {
		t.Errorf("email: got %q", got.Email)
	}
	if got.Role != "citizen" {
		t.Errorf("role: got %q", got.Role)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie to be set")
	}
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := users.Create(ctx, models.User{
		FullName: "Maria Pappas",
		Email:    "maria@example.com",
		Role:     models.RoleCitizen,
	}, "correct-horse")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	wrongPass := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]string{
		"email":    "maria@example.com",
		"password": "wrong",
	}, testutil.TestUser{})
	recPass := testutil.NewRecorder()
	handler.Login(recPass, wrongPass)
	recPass.AssertStatus(t, http.StatusUnauthorized)

	unknown := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	}, testutil.TestUser{})
	recUnknown := testutil.NewRecorder()
	handler.Login(recUnknown, unknown)
	recUnknown.AssertStatus(t, http.StatusUnauthorized)

	if recPass.Body.String() != recUnknown.Body.String() {
		t.Error("wrong password and unknown email must be indistinguishable")
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := users.Create(ctx, models.User{
		FullName: "Maria Pappas",
		Email:    "maria@example.com",
		Role:     models.RoleCitizen,
	}, "correct-horse")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.UpdateUser(ctx, created.ID, userstore.Update{Status: "disabled"}); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]string{
		"email":    "maria@example.com",
		"password": "correct-horse",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()
	handler.Login(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "disabled")
}

func TestLogin_MissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]string{
		"email": "maria@example.com",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()
	handler.Login(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestMe(t *testing.T) {
	handler, _ := newTestHandler(t)

	// Unauthenticated: 401.
	req := testutil.NewRequest("GET", "/api/auth/me")
	rec := testutil.NewRecorder()
	handler.Me(rec, req)
	rec.AssertStatus(t, http.StatusUnauthorized)

	// Authenticated: the session identity comes back.
	user := testutil.CitizenUser()
	req = testutil.NewAuthenticatedRequest("GET", "/api/auth/me", user)
	rec = testutil.NewRecorder()
	handler.Me(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, user.Email)
}
