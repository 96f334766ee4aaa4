package notestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/munidesk/internal/domain/models"
)

var errEmptyContent = errors.New("note content must not be empty")

// Store persists internal notes. Notes are append-only: content is
// immutable once written, so there is no update path here.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("internal_notes")}
}

// Create inserts a note. Authorization (note gate) is the lifecycle
// engine's job; the store validates shape only.
func (s *Store) Create(ctx context.Context, n models.InternalNote) (models.InternalNote, error) {
	if n.Content == "" {
		return models.InternalNote{}, errEmptyContent
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.InternalNote{}, err
	}
	return n, nil
}

// ListByReport returns a report's notes oldest first.
func (s *Store) ListByReport(ctx context.Context, reportID primitive.ObjectID) ([]models.InternalNote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"report_id": reportID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.InternalNote
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
