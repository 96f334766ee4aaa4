// internal/app/system/categories/categories.go

// Package categories routes a report category to the internal officer role
// responsible for it, and filters external companies by the categories
// they service. The lifecycle engine uses it to pick default assignees and
// to constrain external assignment choices.
package categories

import "github.com/dalemusser/munidesk/internal/domain/models"

// officerByCategory is the static category → department officer mapping.
// Every category has exactly one eligible internal role.
var officerByCategory = map[models.ReportCategory]models.Role{
	models.CategoryRoads:           models.RoleRoadsOfficer,
	models.CategoryWaterSupply:     models.RoleWaterOfficer,
	models.CategorySewer:           models.RoleSewerOfficer,
	models.CategoryPublicLighting:  models.RoleLightingOfficer,
	models.CategoryParks:           models.RoleParksOfficer,
	models.CategoryWaste:           models.RoleWasteOfficer,
	models.CategoryTrafficSigns:    models.RoleTrafficOfficer,
	models.CategoryPublicBuildings: models.RoleBuildingsOfficer,
	models.CategoryEnvironment:     models.RoleEnvironmentOfficer,
}

// DefaultOfficerRole returns the internal role eligible to receive reports
// of the given category, and whether the category is known.
func DefaultOfficerRole(c models.ReportCategory) (models.Role, bool) {
	role, ok := officerByCategory[c]
	return role, ok
}

// CompaniesFor filters companies to those whose declared category set
// contains c. The input order is preserved.
func CompaniesFor(c models.ReportCategory, companies []models.ExternalCompany) []models.ExternalCompany {
	var out []models.ExternalCompany
	for i := range companies {
		if companies[i].ServesCategory(c) {
			out = append(out, companies[i])
		}
	}
	return out
}
