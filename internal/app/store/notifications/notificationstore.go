package notificationstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/munidesk/internal/domain/models"
)

// Store persists notification intents produced by the lifecycle engine.
// Intents are inserted after the state mutation commits; the dispatcher
// worker picks up undelivered ones. An intent's dedup key is unique, so a
// retried insert of the same intent is a no-op rather than a duplicate.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Insert stores the intents. Duplicate dedup keys are skipped silently.
func (s *Store) Insert(ctx context.Context, intents []models.Notification) error {
	for i := range intents {
		n := intents[i]
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		if _, err := s.c.InsertOne(ctx, n); err != nil {
			if wafflemongo.IsDup(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// ListPending returns up to limit undelivered intents, oldest first.
func (s *Store) ListPending(ctx context.Context, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"delivered_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkDelivered stamps the intent as delivered. Only undelivered intents
// match, so concurrent dispatchers don't double-deliver.
func (s *Store) MarkDelivered(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "delivered_at": nil},
		bson.M{"$set": bson.M{"delivered_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ListByRecipient returns a user's notifications, newest first.
func (s *Store) ListByRecipient(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"recipient_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
