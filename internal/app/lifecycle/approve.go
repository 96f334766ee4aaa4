package lifecycle

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/app/store/reports"
	"github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/categories"
	"github.com/dalemusser/munidesk/internal/app/system/limits"
	"github.com/dalemusser/munidesk/internal/app/system/perm"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// Approve moves a pending report to assigned, binding an internal officer.
// When officerID is nil the default officer for the report's category is
// chosen; when it is given, the user must hold exactly the officer role the
// category routes to and be active. Only public relations may approve.
func (e *Engine) Approve(ctx context.Context, actor Actor, reportID primitive.ObjectID, officerID *primitive.ObjectID) (*models.Report, error) {
	if !perm.Can(actor.Role, perm.ActionApprove) {
		return nil, apperr.Forbidden("only public relations can approve reports")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.Status != models.StatusPendingApproval {
		return nil, apperr.BadRequest("report is not pending approval")
	}

	wantRole, ok := categories.DefaultOfficerRole(r.Category)
	if !ok {
		return nil, apperr.Internal(errors.New("report has unknown category"))
	}

	var officer *models.User
	if officerID != nil {
		officer, err = e.users.GetByID(ctx, *officerID)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				return nil, apperr.NotFound("assignee not found")
			}
			return nil, apperr.Internal(err)
		}
		if officer.Role != wantRole {
			return nil, apperr.BadRequest("assignee does not hold the officer role for this category")
		}
		if officer.Status == "disabled" {
			return nil, apperr.BadRequest("assignee account is disabled")
		}
	} else {
		officer, err = e.users.FindActiveByRole(ctx, wantRole)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				return nil, apperr.BadRequest("no eligible officer available for this category")
			}
			return nil, apperr.Internal(err)
		}
	}

	updated, err := e.reports.Approve(ctx, reportID, officer.ID)
	if err != nil {
		switch {
		case errors.Is(err, reportstore.ErrStateConflict):
			return nil, apperr.BadRequest("report is not pending approval")
		case errors.Is(err, reportstore.ErrNotFound):
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal(err)
	}

	e.notify(ctx, approvalIntents(updated, officer.ID))
	return updated, nil
}

// Reject moves a pending report to rejected with a mandatory reason. Only
// public relations may reject; rejected is terminal.
func (e *Engine) Reject(ctx context.Context, actor Actor, reportID primitive.ObjectID, reason string) (*models.Report, error) {
	if !perm.Can(actor.Role, perm.ActionReject) {
		return nil, apperr.Forbidden("only public relations can reject reports")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.BadRequest("rejection reason must not be empty")
	}
	if len(reason) > limits.MaxRejectReasonLen {
		return nil, apperr.BadRequest("rejection reason is too long")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.Status != models.StatusPendingApproval {
		return nil, apperr.BadRequest("report is not pending approval")
	}

	updated, err := e.reports.Reject(ctx, reportID, reason)
	if err != nil {
		switch {
		case errors.Is(err, reportstore.ErrStateConflict):
			return nil, apperr.BadRequest("report is not pending approval")
		case errors.Is(err, reportstore.ErrNotFound):
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal(err)
	}

	e.notify(ctx, rejectionIntents(updated))
	return updated, nil
}

// getReport loads a report and maps store sentinels onto the error
// taxonomy.
func (e *Engine) getReport(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	r, err := e.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reportstore.ErrNotFound) {
			return nil, apperr.NotFound("report not found")
		}
		return nil, apperr.Internal(err)
	}
	return r, nil
}
