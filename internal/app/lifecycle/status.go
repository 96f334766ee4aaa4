package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/app/store/reports"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/perm"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// UpdateStatus moves a report to in_progress, suspended, or resolved on
// behalf of one of its assignees. The actor must hold the update-status
// permission AND be the report's currently assigned officer or bound
// maintainer; the move must be a legal edge from the report's current
// status. The conditional write is filtered on the status UpdateStatus
// read, so two racing updates can never both succeed. The returned from
// status is the one the write was filtered on; callers audit it instead
// of re-reading the report.
func (e *Engine) UpdateStatus(ctx context.Context, actor Actor, reportID primitive.ObjectID, to models.ReportStatus) (*models.Report, models.ReportStatus, error) {
	if !CallerSettable(to) {
		return nil, "", apperr.BadRequest("must be equal to one of the allowed values")
	}
	if !perm.Can(actor.Role, perm.ActionUpdateStatus) {
		return nil, "", apperr.Forbidden("role cannot update report status")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, "", err
	}
	if !isAssignee(r, actor.ID) {
		return nil, "", apperr.Forbidden("report is not assigned to you")
	}
	if !canTransition(r.Status, to) {
		return nil, "", apperr.BadRequest(fmt.Sprintf("cannot move report from %s to %s", r.Status, to))
	}

	updated, err := e.reports.UpdateStatus(ctx, reportID, r.Status, to)
	if err != nil {
		switch {
		case errors.Is(err, reportstore.ErrStateConflict):
			return nil, "", apperr.BadRequest("report status changed; reload and retry")
		case errors.Is(err, reportstore.ErrNotFound):
			return nil, "", apperr.NotFound("report not found")
		}
		return nil, "", apperr.Internal(err)
	}

	e.notify(ctx, statusChangeIntents(updated, r.Status, to))
	return updated, r.Status, nil
}

// isAssignee reports whether userID is the report's assigned internal
// officer or its bound external maintainer.
func isAssignee(r *models.Report, userID primitive.ObjectID) bool {
	if r.AssignedOfficerID != nil && *r.AssignedOfficerID == userID {
		return true
	}
	if r.ExternalMaintainerID != nil && *r.ExternalMaintainerID == userID {
		return true
	}
	return false
}
