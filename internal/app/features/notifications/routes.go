// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
)

// MountRoutes registers GET /api/notifications.
func MountRoutes(r chi.Router, sm *auth.SessionManager, h *Handler) {
	r.With(sm.RequireSignedIn).Get("/api/notifications", h.ListMine)
}
