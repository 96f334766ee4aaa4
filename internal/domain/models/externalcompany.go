// internal/domain/models/externalcompany.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCompanyCategories caps how many report categories a single external
// company may declare. Assignments only ever match against this set.
const MaxCompanyCategories = 2

// ExternalCompany is a maintenance contractor that reports can be handed
// off to once an internal officer owns them.
//
// PlatformAccess controls addressability: when true the company's
// maintainers hold accounts and a report is assigned to a specific
// maintainer; when false only the company as a whole is addressable and
// the report carries no maintainer reference.
type ExternalCompany struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped

	Categories     []ReportCategory `bson:"categories" json:"categories"`
	PlatformAccess bool             `bson:"platform_access" json:"platform_access"`

	// ContactEmail is where company-only assignments are reported outside
	// the platform. Informational; delivery is the operator's concern.
	ContactEmail string `bson:"contact_email,omitempty" json:"contact_email,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ServesCategory reports whether the company's declared category set
// contains c.
func (c *ExternalCompany) ServesCategory(cat ReportCategory) bool {
	for _, v := range c.Categories {
		if v == cat {
			return true
		}
	}
	return false
}
