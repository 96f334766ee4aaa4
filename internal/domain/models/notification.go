// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotifyReportApproved      NotificationType = "report_approved"
	NotifyReportRejected      NotificationType = "report_rejected"
	NotifyReportAssigned      NotificationType = "report_assigned"
	NotifyReportStatusChanged NotificationType = "report_status_changed"
	NotifyNoteAdded           NotificationType = "note_added"
)

// Notification is a persisted notification intent. The lifecycle engine
// produces intents after a state change commits; the dispatcher worker
// delivers them. Delivery failures never affect the committed state.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Type        NotificationType   `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	ReportID    primitive.ObjectID `bson:"report_id" json:"report_id"`

	// DedupKey makes insertion idempotent when a dispatch is retried.
	DedupKey string `bson:"dedup_key" json:"dedup_key"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}
