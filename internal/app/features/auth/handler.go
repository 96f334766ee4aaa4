// internal/app/features/auth/handler.go

// Package auth is the session feature: email/password login, logout, and
// the current-identity endpoint. Login attempts are rate limited per IP
// and per email, and every outcome lands in the audit log.
package auth

import (
	"net/http"

	"go.uber.org/zap"

	apierrors "github.com/dalemusser/munidesk/internal/app/features/errors"
	"github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	sysauth "github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	"github.com/dalemusser/munidesk/internal/app/system/normalize"
	"github.com/dalemusser/munidesk/internal/app/system/ratelimit"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *sysauth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sm *sysauth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sm,
		AuditLog:   audit,
		Limiter:    ratelimit.NewLoginLimiter(),
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login.
//
// Wrong email and wrong password deliberately produce the same response;
// only the audit log distinguishes them.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		apierrors.Write(w, h.Log, apperr.BadRequest("email and password are required"))
		return
	}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		apierrors.Write(w, h.Log, apperr.BadRequest(reason))
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), email)
	if err != nil {
		h.AuditLog.LoginFailedUserNotFound(r.Context(), r, email)
		apierrors.Write(w, h.Log, apperr.Unauthorized("invalid email or password"))
		return
	}
	if !userstore.VerifyPassword(u, req.Password) {
		h.AuditLog.LoginFailedWrongPassword(r.Context(), r, u.ID, email)
		apierrors.Write(w, h.Log, apperr.Unauthorized("invalid email or password"))
		return
	}
	if u.Status == "disabled" {
		h.AuditLog.LoginFailedUserDisabled(r.Context(), r, u.ID, email)
		apierrors.Write(w, h.Log, apperr.Forbidden("account is disabled"))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	h.Limiter.ResetEmail(email)
	h.AuditLog.LoginSuccess(r.Context(), r, u.ID, email)

	apierrors.JSON(w, http.StatusOK, identityResponse{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  string(u.Role),
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, ok := sysauth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, user.ID)
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me handles GET /api/auth/me: the signed-in identity, or 401.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	apierrors.JSON(w, http.StatusOK, identityResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
}
