package lifecycle

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/app/policy/notepolicy"
	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/munidesk/internal/app/system/limits"
	"github.com/dalemusser/munidesk/internal/app/system/perm"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// CreateNote appends an internal note to a report. Access is strictly
// per-assignment: the actor must be the report's current internal officer
// or its bound external maintainer. The author's role is snapshotted on
// the note, and the report's other assignee (when there is one) gets a
// notification; the citizen never does.
func (e *Engine) CreateNote(ctx context.Context, actor Actor, reportID primitive.ObjectID, content string) (*models.InternalNote, error) {
	if !perm.Can(actor.Role, perm.ActionWriteInternalNotes) {
		return nil, apperr.Forbidden("role cannot write internal notes")
	}

	content = strings.TrimSpace(htmlsanitize.Strip(content))
	if content == "" {
		return nil, apperr.BadRequest("note content must not be empty")
	}
	if len(content) > limits.MaxNoteContentLen {
		return nil, apperr.BadRequest("note content is too long")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !notepolicy.CanAccess(r, actor.ID) {
		return nil, apperr.Forbidden("report is not assigned to you")
	}

	n, err := e.notes.Create(ctx, models.InternalNote{
		ReportID:   reportID,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Content:    content,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if other, ok := notepolicy.OtherAssignee(r, actor.ID); ok {
		e.notify(ctx, noteIntents(r, other))
	}
	return &n, nil
}

// ListNotes returns a report's internal notes, oldest first, under the
// same per-assignment gate as CreateNote.
func (e *Engine) ListNotes(ctx context.Context, actor Actor, reportID primitive.ObjectID) ([]models.InternalNote, error) {
	if !perm.Can(actor.Role, perm.ActionReadInternalNotes) {
		return nil, apperr.Forbidden("role cannot read internal notes")
	}

	r, err := e.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !notepolicy.CanAccess(r, actor.ID) {
		return nil, apperr.Forbidden("report is not assigned to you")
	}

	notes, err := e.notes.ListByReport(ctx, reportID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return notes, nil
}
