// internal/domain/models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus is the lifecycle state of a citizen report.
type ReportStatus string

const (
	StatusPendingApproval  ReportStatus = "pending_approval"
	StatusAssigned         ReportStatus = "assigned"
	StatusExternalAssigned ReportStatus = "external_assigned"
	StatusInProgress       ReportStatus = "in_progress"
	StatusSuspended        ReportStatus = "suspended"
	StatusResolved         ReportStatus = "resolved"
	StatusRejected         ReportStatus = "rejected"
)

// ValidStatus reports whether s is one of the closed set of report statuses.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusPendingApproval, StatusAssigned, StatusExternalAssigned,
		StatusInProgress, StatusSuspended, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Open reports whether a report in status s still needs work.
// Resolved and rejected reports are closed.
func (s ReportStatus) Open() bool {
	return s != StatusResolved && s != StatusRejected
}

// ReportCategory classifies what kind of municipal issue a report describes.
type ReportCategory string

const (
	CategoryRoads           ReportCategory = "roads"
	CategoryWaterSupply     ReportCategory = "water_supply"
	CategorySewer           ReportCategory = "sewer"
	CategoryPublicLighting  ReportCategory = "public_lighting"
	CategoryParks           ReportCategory = "parks"
	CategoryWaste           ReportCategory = "waste"
	CategoryTrafficSigns    ReportCategory = "traffic_signs"
	CategoryPublicBuildings ReportCategory = "public_buildings"
	CategoryEnvironment     ReportCategory = "environment"
)

// Categories lists every report category. The order is stable and used by
// admin UIs and seed data.
func Categories() []ReportCategory {
	return []ReportCategory{
		CategoryRoads,
		CategoryWaterSupply,
		CategorySewer,
		CategoryPublicLighting,
		CategoryParks,
		CategoryWaste,
		CategoryTrafficSigns,
		CategoryPublicBuildings,
		CategoryEnvironment,
	}
}

// ValidCategory reports whether c is one of the closed set of categories.
func ValidCategory(c ReportCategory) bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

// Report is a citizen-filed municipal issue record.
//
// Assignment invariant: the internal officer and the external
// company/maintainer references are never populated in a way the lifecycle
// engine did not produce — either only AssignedOfficerID is set, or
// AssignedOfficerID plus ExternalCompanyID (and optionally
// ExternalMaintainerID when the company has platform access). The officer
// remains the accountable internal owner after an external assignment.
//
// RejectedReason is non-empty iff Status == rejected.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Description string             `bson:"description" json:"description"`
	Category    ReportCategory     `bson:"category" json:"category"`
	Latitude    float64            `bson:"latitude" json:"latitude"`
	Longitude   float64            `bson:"longitude" json:"longitude"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	IsAnonymous bool               `bson:"is_anonymous" json:"is_anonymous"`

	Status ReportStatus `bson:"status" json:"status"`

	// SubmitterID is immutable after creation. Anonymous reports still
	// record the submitter so status notifications can reach them; the
	// flag only hides the identity from read surfaces.
	SubmitterID primitive.ObjectID `bson:"submitter_id" json:"submitter_id"`

	AssignedOfficerID    *primitive.ObjectID `bson:"assigned_officer_id,omitempty" json:"assigned_officer_id,omitempty"`
	ExternalCompanyID    *primitive.ObjectID `bson:"external_company_id,omitempty" json:"external_company_id,omitempty"`
	ExternalMaintainerID *primitive.ObjectID `bson:"external_maintainer_id,omitempty" json:"external_maintainer_id,omitempty"`

	RejectedReason string `bson:"rejected_reason,omitempty" json:"rejected_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasExternalAssignment reports whether the report is currently bound to an
// external company (with or without a direct maintainer).
func (r *Report) HasExternalAssignment() bool {
	return r.ExternalCompanyID != nil
}
