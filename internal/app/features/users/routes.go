// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// MountRoutes registers account endpoints under /api/users. Signup is
// open; everything else is administrator-only.
func MountRoutes(r chi.Router, sm *auth.SessionManager, h *Handler) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", h.Signup)

		r.Group(func(r chi.Router) {
			r.Use(sm.RequireSignedIn)
			r.Use(sm.RequireRole(models.RoleAdministrator))

			r.Post("/", h.Create)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Put("/", h.Update)
				r.Delete("/", h.Delete)
			})
		})
	})
}
