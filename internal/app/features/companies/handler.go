// internal/app/features/companies/handler.go

// Package companies is the administrator-facing CRUD surface for external
// maintenance companies. The admin manages the entities; they never touch
// report state, which is the officers' domain through the lifecycle
// engine.
package companies

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
	"github.com/dalemusser/munidesk/internal/app/system/normalize"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

type Handler struct {
	Companies *companystore.Store
	Users     *userstore.Store
	Reports   *reportstore.Store
	AuditLog  *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(companies *companystore.Store, users *userstore.Store, reports *reportstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Companies: companies,
		Users:     users,
		Reports:   reports,
		AuditLog:  audit,
		Log:       logger,
	}
}

func companyID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "companyID"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid company id")
	}
	return id, nil
}

type companyRequest struct {
	Name           string                  `json:"name"`
	Categories     []models.ReportCategory `json:"categories"`
	PlatformAccess bool                    `json:"platform_access"`
	ContactEmail   string                  `json:"contact_email,omitempty"`
}

// Create handles POST /api/companies.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apierrors.Write(w, h.Log, apperr.BadRequest("company name must not be empty"))
		return
	}

	c, err := h.Companies.Create(r.Context(), models.ExternalCompany{
		Name:           req.Name,
		Categories:     req.Categories,
		PlatformAccess: req.PlatformAccess,
		ContactEmail:   normalize.Email(req.ContactEmail),
	})
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.CompanyCreated(r.Context(), r, actorID, c.ID)
	}
	apierrors.JSON(w, http.StatusCreated, c)
}

// List handles GET /api/companies, optionally narrowed by ?category=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if c := models.ReportCategory(r.URL.Query().Get("category")); c != "" {
		if !models.ValidCategory(c) {
			apierrors.Write(w, h.Log, apperr.BadRequest("must be equal to one of the allowed values"))
			return
		}
		list, err := h.Companies.ListByCategory(r.Context(), c)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.Internal(err))
			return
		}
		apierrors.JSON(w, http.StatusOK, list)
		return
	}

	list, err := h.Companies.ListAll(r.Context())
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, list)
}

// Get handles GET /api/companies/{companyID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	c, err := h.Companies.GetByID(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, c)
}

// Update handles PUT /api/companies/{companyID}. Shrinking the category
// set or dropping platform access affects future assignments only;
// existing report bindings stay as the engine made them.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req companyRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apierrors.Write(w, h.Log, apperr.BadRequest("company name must not be empty"))
		return
	}

	err = h.Companies.UpdateCompany(r.Context(), id, companystore.Update{
		Name:           req.Name,
		Categories:     req.Categories,
		PlatformAccess: &req.PlatformAccess,
		ContactEmail:   normalize.Email(req.ContactEmail),
	})
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.CompanyUpdated(r.Context(), r, actorID, id)
	}
	c, err := h.Companies.GetByID(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/companies/{companyID}. A company with open
// assigned reports or remaining maintainer accounts cannot be removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	open, err := h.Reports.CountOpenForCompany(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if open > 0 {
		apierrors.Write(w, h.Log, apperr.Conflict("company still has open assigned reports"))
		return
	}
	maintainers, err := h.Users.CountMaintainersByCompany(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if maintainers > 0 {
		apierrors.Write(w, h.Log, apperr.Conflict("company still has maintainer accounts"))
		return
	}

	if err := h.Companies.Delete(r.Context(), id); err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.CompanyDeleted(r.Context(), r, actorID, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Maintainers handles GET /api/companies/{companyID}/maintainers.
func (h *Handler) Maintainers(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if _, err := h.Companies.GetByID(r.Context(), id); err != nil {
		apierrors.Write(w, h.Log, mapStoreErr(err))
		return
	}
	list, err := h.Users.ListMaintainersByCompany(r.Context(), id)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if list == nil {
		list = []models.User{}
	}
	apierrors.JSON(w, http.StatusOK, list)
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, companystore.ErrNotFound):
		return apperr.NotFound("company not found")
	case errors.Is(err, companystore.ErrDuplicateName):
		return apperr.Conflict("a company with this name already exists")
	}
	// Category validation errors from the store are user input problems.
	if companystore.IsValidationErr(err) {
		return apperr.BadRequest(err.Error())
	}
	return apperr.Internal(err)
}
