// internal/app/features/reports/handler.go

// Package reports is the report lifecycle API: filing, approval and
// rejection, status updates, external assignment, and internal notes. All
// semantics live in the lifecycle engine; this layer decodes requests,
// resolves the actor from the session, renders results, and records audit
// events for mutations that succeed.
package reports

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/munidesk/internal/app/features/errors"
	"github.com/dalemusser/munidesk/internal/app/lifecycle"
	"github.com/dalemusser/munidesk/internal/app/store/reports"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	"github.com/dalemusser/munidesk/internal/app/system/authz"
	"github.com/dalemusser/munidesk/internal/app/system/paging"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

type Handler struct {
	Engine   *lifecycle.Engine
	Reports  *reportstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(engine *lifecycle.Engine, reports *reportstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:   engine,
		Reports:  reports,
		AuditLog: audit,
		Log:      logger,
	}
}

// actor resolves the signed-in user into a lifecycle actor. Routes behind
// RequireSignedIn always have one; the ok flag guards direct handler use.
func actor(r *http.Request) (lifecycle.Actor, bool) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return lifecycle.Actor{}, false
	}
	return lifecycle.Actor{ID: userID, Role: role}, true
}

func reportID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reportID"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid report id")
	}
	return id, nil
}

/*──────────────────────────── filing and reading ───────────────────────────*/

type createRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    models.ReportCategory `json:"category"`
	Latitude    float64               `json:"latitude"`
	Longitude   float64               `json:"longitude"`
	Address     string                `json:"address"`
	IsAnonymous bool                  `json:"is_anonymous"`
}

// Create handles POST /api/reports.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	var req createRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	report, err := h.Engine.CreateReport(r.Context(), act, lifecycle.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	h.AuditLog.ReportCreated(r.Context(), r, report.ID, act.ID, report.Category)
	apierrors.JSON(w, http.StatusCreated, viewOf(report, act))
}

// List handles GET /api/reports. The visible set depends on who asks:
// citizens see their own reports, assignees see their assigned ones, and
// public relations and administrators see everything, optionally narrowed
// by ?status= and ?category=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}

	filter := reportstore.ListFilter{}
	if s := models.ReportStatus(r.URL.Query().Get("status")); s != "" {
		if !models.ValidStatus(s) {
			apierrors.Write(w, h.Log, apperr.BadRequest("must be equal to one of the allowed values"))
			return
		}
		filter.Status = s
	}
	if c := models.ReportCategory(r.URL.Query().Get("category")); c != "" {
		if !models.ValidCategory(c) {
			apierrors.Write(w, h.Log, apperr.BadRequest("must be equal to one of the allowed values"))
			return
		}
		filter.Category = c
	}

	switch {
	case act.Role == models.RoleCitizen:
		filter.SubmitterID = &act.ID
	case act.Role.IsOfficer():
		filter.OfficerID = &act.ID
	case act.Role == models.RoleExternalMaintainer:
		filter.MaintainerID = &act.ID
	case act.Role == models.RolePublicRelations || act.Role == models.RoleAdministrator:
		// unrestricted
	default:
		apierrors.Write(w, h.Log, apperr.Forbidden("role cannot list reports"))
		return
	}

	filter.Before, filter.After = paging.ParseCursors(r)

	page, err := h.Reports.List(r.Context(), filter)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	views := make([]reportView, 0, len(page.Reports))
	for i := range page.Reports {
		views = append(views, viewOf(&page.Reports[i], act))
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{
		"reports":     views,
		"has_prev":    page.HasPrev,
		"has_next":    page.HasNext,
		"prev_cursor": page.PrevCursor,
		"next_cursor": page.NextCursor,
	})
}

// Get handles GET /api/reports/{reportID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	report, err := h.Reports.GetByID(r.Context(), id)
	if err != nil {
		if err == reportstore.ErrNotFound {
			apierrors.Write(w, h.Log, apperr.NotFound("report not found"))
			return
		}
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	apierrors.JSON(w, http.StatusOK, viewOf(report, act))
}

/*──────────────────────────── approval path ────────────────────────────────*/

type approveRequest struct {
	// AssigneeID optionally picks a specific officer; empty means the
	// default officer for the report's category.
	AssigneeID string `json:"assignee_id,omitempty"`
}

// Approve handles POST /api/reports/{reportID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req approveRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var officerID *primitive.ObjectID
	if req.AssigneeID != "" {
		oid, err := primitive.ObjectIDFromHex(req.AssigneeID)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.BadRequest("invalid assignee id"))
			return
		}
		officerID = &oid
	}

	report, err := h.Engine.Approve(r.Context(), act, id, officerID)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	h.AuditLog.ReportApproved(r.Context(), r, report.ID, act.ID, *report.AssignedOfficerID)
	apierrors.JSON(w, http.StatusOK, viewOf(report, act))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /api/reports/{reportID}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req rejectRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	report, err := h.Engine.Reject(r.Context(), act, id, req.Reason)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	h.AuditLog.ReportRejected(r.Context(), r, report.ID, act.ID, report.RejectedReason)
	apierrors.JSON(w, http.StatusOK, viewOf(report, act))
}

/*──────────────────────────── status updates ───────────────────────────────*/

type statusRequest struct {
	Status models.ReportStatus `json:"status"`
}

// UpdateStatus handles POST /api/reports/{reportID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req statusRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	report, from, err := h.Engine.UpdateStatus(r.Context(), act, id, req.Status)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	h.AuditLog.ReportStatusChanged(r.Context(), r, report.ID, act.ID, from, report.Status)
	apierrors.JSON(w, http.StatusOK, viewOf(report, act))
}

/*──────────────────────────── external assignment ──────────────────────────*/

type assignExternalRequest struct {
	CompanyID    string `json:"company_id"`
	MaintainerID string `json:"maintainer_id,omitempty"`
}

func (req *assignExternalRequest) ids() (primitive.ObjectID, *primitive.ObjectID, error) {
	companyID, err := primitive.ObjectIDFromHex(req.CompanyID)
	if err != nil {
		return primitive.NilObjectID, nil, apperr.BadRequest("invalid company id")
	}
	var maintainerID *primitive.ObjectID
	if req.MaintainerID != "" {
		mid, err := primitive.ObjectIDFromHex(req.MaintainerID)
		if err != nil {
			return primitive.NilObjectID, nil, apperr.BadRequest("invalid maintainer id")
		}
		maintainerID = &mid
	}
	return companyID, maintainerID, nil
}

// AssignableExternals handles GET /api/reports/{reportID}/assignable-externals.
func (h *Handler) AssignableExternals(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	out, err := h.Engine.AssignableExternals(r.Context(), act, id)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, out)
}

// AssignExternal handles POST /api/reports/{reportID}/assign-external.
func (h *Handler) AssignExternal(w http.ResponseWriter, r *http.Request) {
	h.assignExternal(w, r, false)
}

// ReassignExternal handles POST /api/reports/{reportID}/reassign-external.
func (h *Handler) ReassignExternal(w http.ResponseWriter, r *http.Request) {
	h.assignExternal(w, r, true)
}

func (h *Handler) assignExternal(w http.ResponseWriter, r *http.Request, reassign bool) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req assignExternalRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	companyID, maintainerID, err := req.ids()
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	var report *models.Report
	if reassign {
		report, err = h.Engine.ReassignExternal(r.Context(), act, id, companyID, maintainerID)
	} else {
		report, err = h.Engine.AssignExternal(r.Context(), act, id, companyID, maintainerID)
	}
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	if reassign {
		h.AuditLog.ReportReassignedExternal(r.Context(), r, report.ID, act.ID, companyID, maintainerID)
	} else {
		h.AuditLog.ReportAssignedExternal(r.Context(), r, report.ID, act.ID, companyID, maintainerID)
	}
	apierrors.JSON(w, http.StatusOK, viewOf(report, act))
}

/*──────────────────────────── internal notes ───────────────────────────────*/

type noteRequest struct {
	Content string `json:"content"`
}

// CreateNote handles POST /api/reports/{reportID}/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	var req noteRequest
	if err := apierrors.Decode(w, r, &req); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	note, err := h.Engine.CreateNote(r.Context(), act, id, req.Content)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	h.AuditLog.InternalNoteCreated(r.Context(), r, id, act.ID)
	apierrors.JSON(w, http.StatusCreated, note)
}

// ListNotes handles GET /api/reports/{reportID}/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := reportID(r)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	notes, err := h.Engine.ListNotes(r.Context(), act, id)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	if notes == nil {
		notes = []models.InternalNote{}
	}
	apierrors.JSON(w, http.StatusOK, notes)
}
