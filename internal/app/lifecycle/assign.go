package lifecycle

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/app/store/companies"
	"github.com/dalemusser/munidesk/internal/app/store/reports"
	"github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/perm"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// AssignExternal hands an assigned report off to an external company, and
// to a specific maintainer when the company has platform access. Only the
// report's own internal officer may do this, the company must service the
// report's category, and the maintainer rules follow the company's access
// tier: platform access requires a maintainer of that company, no platform
// access forbids one. The officer binding survives the handoff.
func (e *Engine) AssignExternal(ctx context.Context, actor Actor, reportID, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) (*models.Report, error) {
	if !perm.Can(actor.Role, perm.ActionAssignExternal) {
		return nil, apperr.Forbidden("role cannot assign reports to external companies")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.AssignedOfficerID == nil || *r.AssignedOfficerID != actor.ID {
		return nil, apperr.Forbidden("report is not assigned to you")
	}
	if r.HasExternalAssignment() {
		return nil, apperr.BadRequest("report is already assigned to an external company")
	}
	if r.Status != models.StatusAssigned {
		return nil, apperr.BadRequest("report is not ready for external assignment")
	}

	if err := e.checkExternalTarget(ctx, r, companyID, maintainerID); err != nil {
		return nil, err
	}

	updated, err := e.reports.AssignExternal(ctx, reportID, companyID, maintainerID)
	if err != nil {
		switch {
		case errors.Is(err, reportstore.ErrStateConflict):
			return nil, apperr.BadRequest("report is already assigned to an external company")
		case errors.Is(err, reportstore.ErrNotFound):
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal(err)
	}

	e.notify(ctx, externalAssignIntents(updated, maintainerID))
	return updated, nil
}

// ReassignExternal replaces the external company and/or maintainer on a
// report that already carries an external assignment. The same target
// validation as AssignExternal applies; moving to a company without
// platform access drops the maintainer binding.
func (e *Engine) ReassignExternal(ctx context.Context, actor Actor, reportID, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) (*models.Report, error) {
	if !perm.Can(actor.Role, perm.ActionAssignExternal) {
		return nil, apperr.Forbidden("role cannot assign reports to external companies")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.AssignedOfficerID == nil || *r.AssignedOfficerID != actor.ID {
		return nil, apperr.Forbidden("report is not assigned to you")
	}
	if !r.HasExternalAssignment() {
		return nil, apperr.BadRequest("report has no external assignment to replace")
	}
	if r.Status != models.StatusExternalAssigned && r.Status != models.StatusSuspended {
		return nil, apperr.BadRequest("report cannot be reassigned in its current status")
	}

	if err := e.checkExternalTarget(ctx, r, companyID, maintainerID); err != nil {
		return nil, err
	}

	updated, err := e.reports.ReassignExternal(ctx, reportID, companyID, maintainerID)
	if err != nil {
		switch {
		case errors.Is(err, reportstore.ErrStateConflict):
			return nil, apperr.BadRequest("report status changed; reload and retry")
		case errors.Is(err, reportstore.ErrNotFound):
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal(err)
	}

	e.notify(ctx, externalAssignIntents(updated, maintainerID))
	return updated, nil
}

// checkExternalTarget validates a company/maintainer pair against the
// report's category and the company's access tier. Order matters:
// existence, then category, then access tier, then maintainer identity.
func (e *Engine) checkExternalTarget(ctx context.Context, r *models.Report, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) error {
	company, err := e.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, companystore.ErrNotFound) {
			return apperr.NotFound("company not found")
		}
		return apperr.Internal(err)
	}
	if !company.ServesCategory(r.Category) {
		return apperr.BadRequest("company does not service this report category")
	}

	if !company.PlatformAccess {
		if maintainerID != nil {
			return apperr.BadRequest("company has no platform access; a maintainer cannot be addressed")
		}
		return nil
	}

	if maintainerID == nil {
		return apperr.BadRequest("company has platform access; a maintainer is required")
	}
	maintainer, err := e.users.GetByID(ctx, *maintainerID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return apperr.NotFound("maintainer not found")
		}
		return apperr.Internal(err)
	}
	if maintainer.Role != models.RoleExternalMaintainer {
		return apperr.BadRequest("assignee is not an external maintainer")
	}
	if maintainer.ExternalCompanyID == nil || *maintainer.ExternalCompanyID != companyID {
		return apperr.BadRequest("maintainer does not belong to this company")
	}
	if maintainer.Status == "disabled" {
		return apperr.BadRequest("maintainer account is disabled")
	}
	return nil
}

// AssignableExternal is one company an officer can hand a report to, with
// the maintainers that are directly addressable when the company has
// platform access.
type AssignableExternal struct {
	Company     models.ExternalCompany `json:"company"`
	Maintainers []models.User          `json:"maintainers,omitempty"`
}

// AssignableExternals lists the external companies servicing the report's
// category, each with its addressable maintainers. Only the report's
// assigned internal officer may ask.
func (e *Engine) AssignableExternals(ctx context.Context, actor Actor, reportID primitive.ObjectID) ([]AssignableExternal, error) {
	if !perm.Can(actor.Role, perm.ActionAssignExternal) {
		return nil, apperr.Forbidden("role cannot assign reports to external companies")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.AssignedOfficerID == nil || *r.AssignedOfficerID != actor.ID {
		return nil, apperr.Forbidden("report is not assigned to you")
	}

	companies, err := e.companies.ListByCategory(ctx, r.Category)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]AssignableExternal, 0, len(companies))
	for i := range companies {
		entry := AssignableExternal{Company: companies[i]}
		if companies[i].PlatformAccess {
			ms, err := e.users.ListMaintainersByCompany(ctx, companies[i].ID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			entry.Maintainers = ms
		}
		out = append(out, entry)
	}
	return out, nil
}
