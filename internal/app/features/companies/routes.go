// internal/app/features/companies/routes.go
package companies

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// MountRoutes registers the company management endpoints under
// /api/companies. Everything is administrator-only except the listing,
// which officers also need when browsing assignment targets.
func MountRoutes(r chi.Router, sm *auth.SessionManager, h *Handler) {
	r.Route("/api/companies", func(r chi.Router) {
		r.Use(sm.RequireSignedIn)

		r.With(sm.RequireRole(append(models.OfficerRoles(), models.RoleAdministrator)...)).
			Get("/", h.List)

		admin := sm.RequireRole(models.RoleAdministrator)
		r.With(admin).Post("/", h.Create)
		r.Route("/{companyID}", func(r chi.Router) {
			r.With(admin).Get("/", h.Get)
			r.With(admin).Put("/", h.Update)
			r.With(admin).Delete("/", h.Delete)
			r.With(admin).Get("/maintainers", h.Maintainers)
		})
	})
}
