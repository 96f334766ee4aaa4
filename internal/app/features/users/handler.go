// internal/app/features/users/handler.go

// Package users covers account management: open citizen signup plus the
// administrator's provisioning surface for staff and maintainer accounts.
// Citizens can never sign themselves up into a privileged role; the role
// on the signup path is pinned server-side.
package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/munidesk/internal/app/features/errors"
	"github.com/dalemusser/munidesk/internal/app/store/companies"
	"github.com/dalemusser/munidesk/internal/app/store/reports"
	"github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	"github.com/dalemusser/munidesk/internal/app/system/authz"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// MinPasswordLen is the floor for new account passwords.
const MinPasswordLen = 8

type Handler struct {
	Users     *userstore.Store
	Companies *companystore.Store
	Reports   *reportstore.Store
	AuditLog  *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(users *userstore.Store, companies *companystore.Store, reports *reportstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     users,
		Companies: companies,
		Reports:   reports,
		AuditLog:  audit,
		Log:       logger,
	}
}

func userID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid user id")
	}
	return id, nil
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/users/signup: open registration, always a
// citizen account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if err := validateNewAccount(req.FullName, req.Email, req.Password); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	u, err := h.Users.Create(r.Context(), models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     models.RoleCitizen,
	}, req.Password)
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierrors.JSON(w, http.StatusCreated, u)
}

type provisionRequest struct {
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	// CompanyID is required iff Role is external_maintainer.
	CompanyID string `json:"company_id,omitempty"`
}

// Create handles POST /api/users: administrator-only provisioning of any
// role. Maintainer accounts must reference an existing company.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if err := validateNewAccount(req.FullName, req.Email, req.Password); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if !models.ValidRole(req.Role) {
		apierrors.Write(w, h.Log, apperr.BadRequest("must be equal to one of the allowed values"))
		return
	}

	u := models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
	}
	if req.Role == models.RoleExternalMaintainer {
		if req.CompanyID == "" {
			apierrors.Write(w, h.Log, apperr.BadRequest("maintainer accounts require a company"))
			return
		}
		cid, err := primitive.ObjectIDFromHex(req.CompanyID)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.BadRequest("invalid company id"))
			return
		}
		if _, err := h.Companies.GetByID(r.Context(), cid); err != nil {
			if errors.Is(err, companystore.ErrNotFound) {
				apierrors.Write(w, h.Log, apperr.NotFound("company not found"))
				return
			}
			apierrors.Write(w, h.Log, apperr.Internal(err))
			return
		}
		u.ExternalCompanyID = &cid
	} else if req.CompanyID != "" {
		apierrors.Write(w, h.Log, apperr.BadRequest("only maintainer accounts belong to a company"))
		return
	}

	created, err := h.Users.Create(r.Context(), u, req.Password)
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.UserCreated(r.Context(), r, actorID, created.ID, created.Role)
	}
	apierrors.JSON(w, http.StatusCreated, created)
}

type updateRequest struct {
	FullName string      `json:"full_name,omitempty"`
	Email    string      `json:"email,omitempty"`
	Role     models.Role `json:"role,omitempty"`
	Status   string      `json:"status,omitempty"`
}

// Update handles PUT /api/users/{userID}: administrative changes to name,
// email, role, and status.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req updateRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	err = h.Users.UpdateUser(r.Context(), id, userstore.Update{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.UserUpdated(r.Context(), r, actorID, id)
	}
	u, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, u)
}

// Delete handles DELETE /api/users/{userID}. Accounts that are still
// bound to open reports cannot be removed; disable them instead.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	open, err := h.Reports.CountOpenAssignedTo(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if open > 0 {
		apierrors.Write(w, h.Log, apperr.Conflict("user is still assigned to open reports"))
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.UserDeleted(r.Context(), r, actorID, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/users/{userID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	u, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, u)
}

func validateNewAccount(fullName, email, password string) error {
	if strings.TrimSpace(fullName) == "" {
		return apperr.BadRequest("full name must not be empty")
	}
	if strings.TrimSpace(email) == "" {
		return apperr.BadRequest("email must not be empty")
	}
	if len(password) < MinPasswordLen {
		return apperr.BadRequest("password must be at least 8 characters")
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		return apperr.NotFound("user not found")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return apperr.Conflict("a user with this email already exists")
	}
	if userstore.IsValidationErr(err) {
		return apperr.BadRequest(err.Error())
	}
	return apperr.Internal(err)
}
