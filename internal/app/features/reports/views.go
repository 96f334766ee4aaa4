// internal/app/features/reports/views.go
package reports

import (
	"time"

	"github.com/dalemusser/munidesk/internal/app/lifecycle"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// reportView is the wire shape of a report. It mirrors the model except
// for the submitter: anonymous reports hide the submitter identity from
// everyone but the submitter themselves, public relations, and
// administrators. The record always keeps the reference; only the view
// drops it.
type reportView struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    models.ReportCategory `json:"category"`
	Latitude    float64               `json:"latitude"`
	Longitude   float64               `json:"longitude"`
	Address     string                `json:"address,omitempty"`
	IsAnonymous bool                  `json:"is_anonymous"`

	Status models.ReportStatus `json:"status"`

	SubmitterID          string `json:"submitter_id,omitempty"`
	AssignedOfficerID    string `json:"assigned_officer_id,omitempty"`
	ExternalCompanyID    string `json:"external_company_id,omitempty"`
	ExternalMaintainerID string `json:"external_maintainer_id,omitempty"`

	RejectedReason string `json:"rejected_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOf(r *models.Report, act lifecycle.Actor) reportView {
	v := reportView{
		ID:          r.ID.Hex(),
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Address:     r.Address,
		IsAnonymous: r.IsAnonymous,
		Status:      r.Status,

		RejectedReason: r.RejectedReason,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if canSeeSubmitter(r, act) {
		v.SubmitterID = r.SubmitterID.Hex()
	}
	if r.AssignedOfficerID != nil {
		v.AssignedOfficerID = r.AssignedOfficerID.Hex()
	}
	if r.ExternalCompanyID != nil {
		v.ExternalCompanyID = r.ExternalCompanyID.Hex()
	}
	if r.ExternalMaintainerID != nil {
		v.ExternalMaintainerID = r.ExternalMaintainerID.Hex()
	}
	return v
}

func canSeeSubmitter(r *models.Report, act lifecycle.Actor) bool {
	if !r.IsAnonymous {
		return true
	}
	if act.ID == r.SubmitterID {
		return true
	}
	return act.Role == models.RolePublicRelations || act.Role == models.RoleAdministrator
}
