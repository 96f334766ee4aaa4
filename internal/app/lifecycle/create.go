package lifecycle

import (
	"context"
	"strings"

	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/munidesk/internal/app/system/limits"
	"github.com/dalemusser/munidesk/internal/app/system/perm"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// CreateInput carries the citizen-supplied fields of a new report.
type CreateInput struct {
	Title       string
	Description string
	Category    models.ReportCategory
	Latitude    float64
	Longitude   float64
	Address     string
	IsAnonymous bool
}

// CreateReport files a new report for the actor. The report always starts
// in pending_approval with no assignments regardless of input; the
// submitter is recorded even for anonymous reports so status notifications
// can still reach them.
func (e *Engine) CreateReport(ctx context.Context, actor Actor, in CreateInput) (*models.Report, error) {
	if !perm.Can(actor.Role, perm.ActionCreateReport) {
		return nil, apperr.Forbidden("only citizens can file reports")
	}

	title := strings.TrimSpace(htmlsanitize.Strip(in.Title))
	if title == "" {
		return nil, apperr.BadRequest("title must not be empty")
	}
	if len(title) > limits.MaxTitleLen {
		return nil, apperr.BadRequest("title is too long")
	}
	desc := strings.TrimSpace(htmlsanitize.Strip(in.Description))
	if desc == "" {
		return nil, apperr.BadRequest("description must not be empty")
	}
	if len(desc) > limits.MaxDescriptionLen {
		return nil, apperr.BadRequest("description is too long")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperr.BadRequest("must be equal to one of the allowed values")
	}

	r, err := e.reports.Create(ctx, models.Report{
		Title:       title,
		Description: desc,
		Category:    in.Category,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Address:     strings.TrimSpace(htmlsanitize.Strip(in.Address)),
		IsAnonymous: in.IsAnonymous,
		SubmitterID: actor.ID,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &r, nil
}
