// internal/app/system/perm/perm.go

// Package perm is the static role/permission table: a pure lookup from
// role and action to allowed/denied. It answers "may this role ever do
// this" only; the "self-assigned only" qualifier on status updates and
// internal notes is enforced by the lifecycle engine and note policy,
// which additionally check the actor against the report's current
// assignment.
package perm

import "github.com/dalemusser/munidesk/internal/domain/models"

// Action is a capability a role may hold.
type Action string

const (
	ActionCreateReport           Action = "create_report"
	ActionApprove                Action = "approve"
	ActionReject                 Action = "reject"
	ActionAssignInternal         Action = "assign_internal"
	ActionAssignExternal         Action = "assign_external"
	ActionUpdateStatus           Action = "update_status"
	ActionReadInternalNotes      Action = "read_internal_notes"
	ActionWriteInternalNotes     Action = "write_internal_notes"
	ActionManageExternalEntities Action = "manage_external_entities"
)

// officerActions are the capabilities every department officer role holds.
// Officers hand reports to external companies, work them, and keep private
// notes; approval stays with public relations.
var officerActions = map[Action]bool{
	ActionAssignExternal:     true,
	ActionUpdateStatus:       true,
	ActionReadInternalNotes:  true,
	ActionWriteInternalNotes: true,
}

var table = map[models.Role]map[Action]bool{
	models.RoleCitizen: {
		ActionCreateReport: true,
	},
	models.RolePublicRelations: {
		ActionApprove:        true,
		ActionReject:         true,
		ActionAssignInternal: true,
	},
	models.RoleAdministrator: {
		ActionManageExternalEntities: true,
	},
	models.RoleExternalMaintainer: {
		ActionUpdateStatus:       true,
		ActionReadInternalNotes:  true,
		ActionWriteInternalNotes: true,
	},
}

// Can reports whether role may ever perform action. Unknown roles and
// unknown actions are denied.
func Can(role models.Role, action Action) bool {
	if role.IsOfficer() {
		return officerActions[action]
	}
	return table[role][action]
}
