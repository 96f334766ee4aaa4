// internal/domain/models/internalnote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InternalNote is a private annotation on a report, visible only to the
// report's currently assigned internal officer and external maintainer.
// Citizens, public relations, and administrators never see them.
type InternalNote struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID primitive.ObjectID `bson:"report_id" json:"report_id"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`

	// AuthorRole is a snapshot taken at creation so the note history stays
	// meaningful if the author's account is later changed or removed.
	AuthorRole Role `bson:"author_role" json:"author_role"`

	Content string `bson:"content" json:"content"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
