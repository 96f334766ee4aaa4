// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// MountRoutes registers the audit endpoints under /api/audit,
// administrator-only.
func MountRoutes(r chi.Router, sm *auth.SessionManager, h *Handler) {
	r.Route("/api/audit", func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole(models.RoleAdministrator))

		r.Get("/", h.Query)
		r.Get("/reports/{reportID}", h.ByReport)
	})
}
