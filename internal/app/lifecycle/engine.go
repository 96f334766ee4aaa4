// Package lifecycle is the report lifecycle and assignment orchestration
// engine: the status state machine, the approval/rejection path, the
// internal/external assignment rules, and the internal-note gate. It
// consumes persistence through narrow store interfaces and emits
// notification intents after a state change commits; HTTP concerns stay in
// the feature packages.
//
// Authorization layering mirrors the rest of the app: the permission table
// (system/perm) answers "may this role ever do this", while the engine
// additionally binds self-assigned-only actions to the report's current
// assignee before letting a mutation through. Every denied action returns
// a typed apperr error; nothing is ever silently dropped.
package lifecycle

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/munidesk/internal/domain/models"
)

// Actor is the authenticated identity a mutation runs as, supplied by the
// identity layer.
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
}

// ReportStore is the persistence surface the engine needs for reports.
// State-changing methods are conditional on the expected current state and
// return reportstore.ErrStateConflict when a concurrent mutation won the
// race, and reportstore.ErrNotFound when the report does not exist.
type ReportStore interface {
	Create(ctx context.Context, r models.Report) (models.Report, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error)
	Approve(ctx context.Context, id, officerID primitive.ObjectID) (*models.Report, error)
	Reject(ctx context.Context, id primitive.ObjectID, reason string) (*models.Report, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReportStatus) (*models.Report, error)
	AssignExternal(ctx context.Context, id, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) (*models.Report, error)
	ReassignExternal(ctx context.Context, id, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) (*models.Report, error)
}

// UserStore is the persistence surface the engine needs for users.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindActiveByRole(ctx context.Context, role models.Role) (*models.User, error)
	ListMaintainersByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.User, error)
}

// CompanyStore is the persistence surface the engine needs for external
// companies.
type CompanyStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ExternalCompany, error)
	ListByCategory(ctx context.Context, cat models.ReportCategory) ([]models.ExternalCompany, error)
}

// NoteStore is the persistence surface the engine needs for internal notes.
type NoteStore interface {
	Create(ctx context.Context, n models.InternalNote) (models.InternalNote, error)
	ListByReport(ctx context.Context, reportID primitive.ObjectID) ([]models.InternalNote, error)
}

// NotificationStore receives the engine's notification intents. Insertion
// happens after the state mutation commits; failures are logged, never
// propagated — a notification problem must not roll back a committed
// transition.
type NotificationStore interface {
	Insert(ctx context.Context, intents []models.Notification) error
}

// Engine wires the stores together and implements every lifecycle
// operation.
type Engine struct {
	reports       ReportStore
	users         UserStore
	companies     CompanyStore
	notes         NoteStore
	notifications NotificationStore
	log           *zap.Logger
}

// New constructs an Engine. All stores are required; log may be zap.NewNop
// in tests.
func New(reports ReportStore, users UserStore, companies CompanyStore, notes NoteStore, notifications NotificationStore, log *zap.Logger) *Engine {
	return &Engine{
		reports:       reports,
		users:         users,
		companies:     companies,
		notes:         notes,
		notifications: notifications,
		log:           log,
	}
}

// notify persists intents fire-and-forget relative to the state mutation.
func (e *Engine) notify(ctx context.Context, intents []models.Notification) {
	if len(intents) == 0 {
		return
	}
	if err := e.notifications.Insert(ctx, intents); err != nil {
		e.log.Warn("notification insert failed",
			zap.Error(err),
			zap.Int("count", len(intents)))
	}
}
