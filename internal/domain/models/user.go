// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a user's fixed role. Citizens sign up; every other role is
// provisioned by an administrator.
type Role string

const (
	RoleCitizen            Role = "citizen"
	RoleAdministrator      Role = "administrator"
	RolePublicRelations    Role = "public_relations"
	RoleExternalMaintainer Role = "external_maintainer"

	// Department officer roles, one per report category.
	RoleRoadsOfficer       Role = "roads_officer"
	RoleWaterOfficer       Role = "water_officer"
	RoleSewerOfficer       Role = "sewer_officer"
	RoleLightingOfficer    Role = "lighting_officer"
	RoleParksOfficer       Role = "parks_officer"
	RoleWasteOfficer       Role = "waste_officer"
	RoleTrafficOfficer     Role = "traffic_officer"
	RoleBuildingsOfficer   Role = "buildings_officer"
	RoleEnvironmentOfficer Role = "environment_officer"
)

// OfficerRoles lists the department-specific technical roles.
func OfficerRoles() []Role {
	return []Role{
		RoleRoadsOfficer,
		RoleWaterOfficer,
		RoleSewerOfficer,
		RoleLightingOfficer,
		RoleParksOfficer,
		RoleWasteOfficer,
		RoleTrafficOfficer,
		RoleBuildingsOfficer,
		RoleEnvironmentOfficer,
	}
}

// IsOfficer reports whether r is one of the department officer roles.
func (r Role) IsOfficer() bool {
	for _, v := range OfficerRoles() {
		if v == r {
			return true
		}
	}
	return false
}

// ValidRole reports whether r is one of the closed set of roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleAdministrator, RolePublicRelations, RoleExternalMaintainer:
		return true
	}
	return r.IsOfficer()
}

// User represents citizens, municipal staff, and external maintainers.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`

	// PasswordHash is a bcrypt hash; never serialized to JSON.
	PasswordHash string `bson:"password_hash" json:"-"`

	Role   Role   `bson:"role" json:"role"`
	Status string `bson:"status,omitempty" json:"status,omitempty"` // "active" | "disabled"

	// ExternalCompanyID is only meaningful when Role == external_maintainer.
	ExternalCompanyID *primitive.ObjectID `bson:"external_company_id,omitempty" json:"external_company_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
