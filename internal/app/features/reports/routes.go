// internal/app/features/reports/routes.go
package reports

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// MountRoutes registers the report lifecycle endpoints under /api/reports.
// Role middleware keeps the obviously-wrong callers out early; the
// per-report checks (is this officer *the* assigned officer, is this
// maintainer bound to this report) always run inside the engine.
func MountRoutes(r chi.Router, sm *auth.SessionManager, h *Handler) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Use(sm.RequireSignedIn)

		r.Get("/", h.List)
		r.With(sm.RequireRole(models.RoleCitizen)).Post("/", h.Create)

		r.Route("/{reportID}", func(r chi.Router) {
			r.Get("/", h.Get)

			r.With(sm.RequireRole(models.RolePublicRelations)).Post("/approve", h.Approve)
			r.With(sm.RequireRole(models.RolePublicRelations)).Post("/reject", h.Reject)

			r.Post("/status", h.UpdateStatus)

			r.With(sm.RequireOfficer()).Get("/assignable-externals", h.AssignableExternals)
			r.With(sm.RequireOfficer()).Post("/assign-external", h.AssignExternal)
			r.With(sm.RequireOfficer()).Post("/reassign-external", h.ReassignExternal)

			r.Post("/notes", h.CreateNote)
			r.Get("/notes", h.ListNotes)
		})
	})
}
