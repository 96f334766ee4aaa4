package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/domain/models"
)

// Intent builders are pure: they produce persisted notification records but
// never touch a store. Each intent carries a fresh dedup key so that a
// retried insert of the same batch stays idempotent while distinct events
// on the same report do not collapse into one another.

func newIntent(recipient primitive.ObjectID, typ models.NotificationType, report *models.Report, title, message string) models.Notification {
	return models.Notification{
		RecipientID: recipient,
		Type:        typ,
		Title:       title,
		Message:     message,
		ReportID:    report.ID,
		DedupKey:    uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
}

// approvalIntents notifies the submitter that their report was approved
// and the officer that a report landed on their desk.
func approvalIntents(r *models.Report, officerID primitive.ObjectID) []models.Notification {
	return []models.Notification{
		newIntent(r.SubmitterID, models.NotifyReportApproved, r,
			"Report approved",
			fmt.Sprintf("Your report %q was approved and assigned to the responsible department.", r.Title)),
		newIntent(officerID, models.NotifyReportAssigned, r,
			"Report assigned to you",
			fmt.Sprintf("Report %q (%s) was assigned to you.", r.Title, r.Category)),
	}
}

// rejectionIntents notifies the submitter, including the mandatory reason.
func rejectionIntents(r *models.Report) []models.Notification {
	return []models.Notification{
		newIntent(r.SubmitterID, models.NotifyReportRejected, r,
			"Report rejected",
			fmt.Sprintf("Your report %q was rejected: %s", r.Title, r.RejectedReason)),
	}
}

// statusChangeIntents notifies the submitter of a status change made by an
// assignee.
func statusChangeIntents(r *models.Report, from, to models.ReportStatus) []models.Notification {
	return []models.Notification{
		newIntent(r.SubmitterID, models.NotifyReportStatusChanged, r,
			"Report status changed",
			fmt.Sprintf("Your report %q moved from %s to %s.", r.Title, from, to)),
	}
}

// externalAssignIntents notifies the bound maintainer, when there is one.
// Company-only handoffs produce no intents; the company is reached through
// its contact email outside the platform.
func externalAssignIntents(r *models.Report, maintainerID *primitive.ObjectID) []models.Notification {
	if maintainerID == nil {
		return nil
	}
	return []models.Notification{
		newIntent(*maintainerID, models.NotifyReportAssigned, r,
			"Report assigned to you",
			fmt.Sprintf("Report %q (%s) was assigned to you for external maintenance.", r.Title, r.Category)),
	}
}

// noteIntents notifies the report's other assignee that a note was added.
func noteIntents(r *models.Report, recipient primitive.ObjectID) []models.Notification {
	return []models.Notification{
		newIntent(recipient, models.NotifyNoteAdded, r,
			"New internal note",
			fmt.Sprintf("A new internal note was added to report %q.", r.Title)),
	}
}
