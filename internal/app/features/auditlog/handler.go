// internal/app/features/auditlog/handler.go

// Package auditlog exposes the audit trail to administrators: a filtered
// query over all events and a per-report history view.
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/munidesk/internal/app/features/errors"
	"github.com/dalemusser/munidesk/internal/app/store/audit"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
)

const defaultLimit = 100
const maxLimit = 500

type Handler struct {
	Audit *audit.Store
	Log   *zap.Logger
}

func NewHandler(store *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{Audit: store, Log: logger}
}

// Query handles GET /api/audit with optional query parameters:
// category, event_type, report_id, user_id, start, end (RFC 3339),
// limit, offset.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		Category:  q.Get("category"),
		EventType: q.Get("event_type"),
		Limit:     defaultLimit,
	}

	if raw := q.Get("report_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.BadRequest("invalid report id"))
			return
		}
		filter.ReportID = &id
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.BadRequest("invalid user id"))
			return
		}
		filter.UserID = &id
	}
	if raw := q.Get("start"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.BadRequest("start must be RFC 3339"))
			return
		}
		filter.StartTime = &ts
	}
	if raw := q.Get("end"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.Write(w, h.Log, apperr.BadRequest("end must be RFC 3339"))
			return
		}
		filter.EndTime = &ts
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxLimit {
			apierrors.Write(w, h.Log, apperr.BadRequest("limit must be between 1 and 500"))
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			apierrors.Write(w, h.Log, apperr.BadRequest("offset must be non-negative"))
			return
		}
		filter.Offset = n
	}

	events, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	total, err := h.Audit.CountByFilter(r.Context(), filter)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  total,
	})
}

// ByReport handles GET /api/audit/reports/{reportID}: the full audit
// history of a single report, newest first.
func (h *Handler) ByReport(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reportID"))
	if err != nil {
		apierrors.Write(w, h.Log, apperr.BadRequest("invalid report id"))
		return
	}
	events, err := h.Audit.GetByReport(r.Context(), id, defaultLimit)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	apierrors.JSON(w, http.StatusOK, events)
}
