// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// UserCtx returns the current user's role, name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is
// malformed, it returns an empty role, "", NilObjectID, false. Callers can
// trust that ok=true means a valid, authenticated user with a valid
// ObjectID.
func UserCtx(r *http.Request) (role models.Role, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		// This should not happen in normal operation; indicates session corruption.
		return "", "", primitive.NilObjectID, false
	}
	return user.Role, user.Name, userID, true
}

// IsAdministrator reports whether the current request's user is an administrator.
func IsAdministrator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdministrator
}

// IsPublicRelations reports whether the current request's user is public relations staff.
func IsPublicRelations(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RolePublicRelations
}

// IsOfficer reports whether the current request's user holds a department officer role.
func IsOfficer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role.IsOfficer()
}

// IsExternalMaintainer reports whether the current request's user is an external maintainer.
func IsExternalMaintainer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleExternalMaintainer
}

// IsCitizen reports whether the current request's user is a citizen.
func IsCitizen(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleCitizen
}
