// internal/app/features/notifications/handler.go

// Package notifications lets a signed-in user read their own notification
// feed. Delivery happens in the background dispatcher; this surface only
// reads.
package notifications

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apierrors "github.com/dalemusser/munidesk/internal/app/features/errors"
	"github.com/dalemusser/munidesk/internal/app/store/notifications"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/authz"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

const defaultLimit = 50
const maxLimit = 200

type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(store *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Notifications: store, Log: logger}
}

// ListMine handles GET /api/notifications?limit=N.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Write(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}

	limit := int64(defaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxLimit {
			apierrors.Write(w, h.Log, apperr.BadRequest("limit must be between 1 and 200"))
			return
		}
		limit = n
	}

	list, err := h.Notifications.ListByRecipient(r.Context(), userID, limit)
	if err != nil {
		apierrors.Write(w, h.Log, apperr.Internal(err))
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	apierrors.JSON(w, http.StatusOK, list)
}
