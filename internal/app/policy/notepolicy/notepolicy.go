// internal/app/policy/notepolicy.go

// Package notepolicy gates access to a report's internal notes.
//
// Scope is always per-report-assignment, never per-role: only the report's
// currently assigned internal officer and its bound external maintainer
// may read or write notes. A user who holds a technical role but is
// assigned to a *different* report has no access, and neither do citizens,
// public relations, or administrators.
package notepolicy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/munidesk/internal/domain/models"
)

// CanAccess reports whether userID may read and write internal notes on
// the report.
func CanAccess(report *models.Report, userID primitive.ObjectID) bool {
	if report.AssignedOfficerID != nil && *report.AssignedOfficerID == userID {
		return true
	}
	if report.ExternalMaintainerID != nil && *report.ExternalMaintainerID == userID {
		return true
	}
	return false
}

// OtherAssignee returns the report's "other" assignee relative to
// authorID: the maintainer when the author is the officer, the officer
// when the author is the maintainer. Used to target note notifications;
// the citizen is never notified about internal notes.
func OtherAssignee(report *models.Report, authorID primitive.ObjectID) (primitive.ObjectID, bool) {
	if report.AssignedOfficerID != nil && *report.AssignedOfficerID == authorID {
		if report.ExternalMaintainerID != nil {
			return *report.ExternalMaintainerID, true
		}
		return primitive.NilObjectID, false
	}
	if report.ExternalMaintainerID != nil && *report.ExternalMaintainerID == authorID {
		if report.AssignedOfficerID != nil {
			return *report.AssignedOfficerID, true
		}
	}
	return primitive.NilObjectID, false
}
