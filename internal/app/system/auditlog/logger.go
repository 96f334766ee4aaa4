// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/munidesk/internal/app/store/audit"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Report controls logging for report lifecycle events (create, approve,
	// reject, status change, external assignment, notes).
	// Values: "all", "db", "log", "off"
	Report string
	// Admin controls logging for admin action events (user/company CRUD).
	// Values: "all", "db", "log", "off"
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ReportID != nil {
		fields = append(fields, zap.String("report_id", event.ReportID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryReport:
		setting = l.config.Report
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	if setting == "off" {
		return
	}

	// Log to zap if configured
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	// Log to MongoDB if configured
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"email": email,
		},
	})
}

// LoginFailedUserNotFound logs a failed login due to user not found.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user not found",
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "wrong password",
		Details: map[string]string{
			"email": email,
		},
	})
}

// LoginFailedUserDisabled logs a failed login due to disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user disabled",
		Details: map[string]string{
			"email": email,
		},
	})
}

// Logout logs a user logout.
// Accepts the string ID from SessionUser and converts it to an ObjectID.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}

	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Report Lifecycle Events ---

func (l *Logger) reportEvent(ctx context.Context, r *http.Request, eventType string, reportID, actorID primitive.ObjectID, details map[string]string) {
	event := audit.Event{
		Category:  audit.CategoryReport,
		EventType: eventType,
		ReportID:  &reportID,
		ActorID:   &actorID,
		Success:   true,
		Details:   details,
	}
	if r != nil {
		event.IP = getClientIP(r)
		event.UserAgent = r.UserAgent()
	}
	l.Log(ctx, event)
}

// ReportCreated logs a citizen filing a new report.
func (l *Logger) ReportCreated(ctx context.Context, r *http.Request, reportID, submitterID primitive.ObjectID, category models.ReportCategory) {
	l.reportEvent(ctx, r, audit.EventReportCreated, reportID, submitterID, map[string]string{
		"category": string(category),
	})
}

// ReportApproved logs an approval with the assigned officer.
func (l *Logger) ReportApproved(ctx context.Context, r *http.Request, reportID, approverID, officerID primitive.ObjectID) {
	l.reportEvent(ctx, r, audit.EventReportApproved, reportID, approverID, map[string]string{
		"assigned_officer_id": officerID.Hex(),
	})
}

// ReportRejected logs a rejection with its reason.
func (l *Logger) ReportRejected(ctx context.Context, r *http.Request, reportID, approverID primitive.ObjectID, reason string) {
	l.reportEvent(ctx, r, audit.EventReportRejected, reportID, approverID, map[string]string{
		"reason": reason,
	})
}

// ReportStatusChanged logs a status transition.
func (l *Logger) ReportStatusChanged(ctx context.Context, r *http.Request, reportID, actorID primitive.ObjectID, from, to models.ReportStatus) {
	l.reportEvent(ctx, r, audit.EventReportStatusChanged, reportID, actorID, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
}

// ReportAssignedExternal logs an external assignment.
func (l *Logger) ReportAssignedExternal(ctx context.Context, r *http.Request, reportID, actorID, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) {
	details := map[string]string{
		"company_id": companyID.Hex(),
	}
	if maintainerID != nil {
		details["maintainer_id"] = maintainerID.Hex()
	}
	l.reportEvent(ctx, r, audit.EventReportAssignedExternal, reportID, actorID, details)
}

// ReportReassignedExternal logs a reassignment to a different external target.
func (l *Logger) ReportReassignedExternal(ctx context.Context, r *http.Request, reportID, actorID, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) {
	details := map[string]string{
		"company_id": companyID.Hex(),
	}
	if maintainerID != nil {
		details["maintainer_id"] = maintainerID.Hex()
	}
	l.reportEvent(ctx, r, audit.EventReportReassignedExternal, reportID, actorID, details)
}

// InternalNoteCreated logs a new internal note. Content is not recorded.
func (l *Logger) InternalNoteCreated(ctx context.Context, r *http.Request, reportID, authorID primitive.ObjectID) {
	l.reportEvent(ctx, r, audit.EventInternalNoteCreated, reportID, authorID, nil)
}

// --- Admin Events ---

func (l *Logger) adminEvent(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, affectedUser *primitive.ObjectID, details map[string]string) {
	event := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		UserID:    affectedUser,
		Success:   true,
		Details:   details,
	}
	if r != nil {
		event.IP = getClientIP(r)
		event.UserAgent = r.UserAgent()
	}
	l.Log(ctx, event)
}

// UserCreated logs an account creation (signup or admin provisioning).
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, role models.Role) {
	l.adminEvent(ctx, r, audit.EventUserCreated, actorID, &userID, map[string]string{
		"role": string(role),
	})
}

// UserUpdated logs an administrative user update.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventUserUpdated, actorID, &userID, nil)
}

// UserDeleted logs a user deletion.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventUserDeleted, actorID, &userID, nil)
}

// CompanyCreated logs a new external company.
func (l *Logger) CompanyCreated(ctx context.Context, r *http.Request, actorID, companyID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventCompanyCreated, actorID, nil, map[string]string{
		"company_id": companyID.Hex(),
	})
}

// CompanyUpdated logs an external company update.
func (l *Logger) CompanyUpdated(ctx context.Context, r *http.Request, actorID, companyID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventCompanyUpdated, actorID, nil, map[string]string{
		"company_id": companyID.Hex(),
	})
}

// CompanyDeleted logs an external company deletion.
func (l *Logger) CompanyDeleted(ctx context.Context, r *http.Request, actorID, companyID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventCompanyDeleted, actorID, nil, map[string]string{
		"company_id": companyID.Hex(),
	})
}
