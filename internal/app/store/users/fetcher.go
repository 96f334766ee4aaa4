package userstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/munidesk/internal/app/system/auth"
)

// Fetcher adapts the user store to auth.UserFetcher so the session
// middleware can refresh user data on every request.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a session-user fetcher backed by the users collection.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

// FetchByID returns the fresh session user, or (nil, nil) when the account
// no longer exists or is disabled — which signs the session out.
func (f *Fetcher) FetchByID(ctx context.Context, id string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ID in session: treat as signed out rather than erroring.
		return nil, nil
	}
	u, err := f.store.GetByID(ctx, oid)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	if u.Status == "disabled" {
		return nil, nil
	}
	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}, nil
}
