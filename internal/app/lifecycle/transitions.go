package lifecycle

import "github.com/dalemusser/munidesk/internal/domain/models"

// allowedTransitions is the full status graph. Approval, rejection and
// external assignment run through their own operations but still appear
// here so canTransition is the single source of truth for what edges
// exist; terminal states have no outgoing edges except the resolved →
// in_progress reopen.
var allowedTransitions = map[models.ReportStatus]map[models.ReportStatus]bool{
	models.StatusPendingApproval: {
		models.StatusAssigned: true,
		models.StatusRejected: true,
	},
	models.StatusAssigned: {
		models.StatusExternalAssigned: true,
		models.StatusInProgress:       true,
	},
	models.StatusExternalAssigned: {
		models.StatusInProgress: true,
	},
	models.StatusInProgress: {
		models.StatusSuspended: true,
		models.StatusResolved:  true,
	},
	models.StatusSuspended: {
		models.StatusInProgress:       true,
		models.StatusExternalAssigned: true,
	},
	models.StatusResolved: {
		models.StatusInProgress: true,
	},
	models.StatusRejected: {},
}

// callerStatuses are the only targets an assignee may request through
// UpdateStatus; everything else moves through a dedicated operation.
var callerStatuses = map[models.ReportStatus]bool{
	models.StatusInProgress: true,
	models.StatusSuspended:  true,
	models.StatusResolved:   true,
}

func canTransition(from, to models.ReportStatus) bool {
	return allowedTransitions[from][to]
}

// CallerSettable reports whether an assignee may request to as a target of
// UpdateStatus at all, independent of the current status.
func CallerSettable(to models.ReportStatus) bool {
	return callerStatuses[to]
}
