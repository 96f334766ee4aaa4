// internal/app/features/auth/routes.go
package auth

import "github.com/go-chi/chi/v5"

// MountRoutes registers the session endpoints under /api/auth.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/logout", h.Logout)
	r.Get("/api/auth/me", h.Me)
}
