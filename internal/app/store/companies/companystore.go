package companystore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/munidesk/internal/app/system/normalize"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

var (
	// ErrDuplicateName is returned when a company with this name already exists.
	ErrDuplicateName = errors.New("a company with this name already exists")
	// ErrNotFound is returned when no company with the given ID exists.
	ErrNotFound = errors.New("company not found")

	errNoCategories      = errors.New("company must declare at least one category")
	errTooManyCategories = errors.New("company cannot declare more than two categories")
	errBadCategory       = errors.New("invalid report category")
	errDuplicateCategory = errors.New("duplicate category in set")
)

// IsValidationErr reports whether err is a category-set validation
// failure, i.e. bad input rather than a storage problem.
func IsValidationErr(err error) bool {
	return errors.Is(err, errNoCategories) ||
		errors.Is(err, errTooManyCategories) ||
		errors.Is(err, errBadCategory) ||
		errors.Is(err, errDuplicateCategory)
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("external_companies")}
}

func validateCategories(cats []models.ReportCategory) error {
	if len(cats) == 0 {
		return errNoCategories
	}
	if len(cats) > models.MaxCompanyCategories {
		return errTooManyCategories
	}
	seen := map[models.ReportCategory]bool{}
	for _, c := range cats {
		if !models.ValidCategory(c) {
			return errBadCategory
		}
		if seen[c] {
			return errDuplicateCategory
		}
		seen[c] = true
	}
	return nil
}

// Create inserts a new external company after normalizing & validating.
func (s *Store) Create(ctx context.Context, c models.ExternalCompany) (models.ExternalCompany, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.ContactEmail = normalize.Email(c.ContactEmail)

	if err := validateCategories(c.Categories); err != nil {
		return models.ExternalCompany{}, err
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ExternalCompany{}, ErrDuplicateName
		}
		return models.ExternalCompany{}, err
	}
	return c, nil
}

// GetByID loads a company by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ExternalCompany, error) {
	var c models.ExternalCompany
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListAll returns every company sorted by folded name.
func (s *Store) ListAll(ctx context.Context) ([]models.ExternalCompany, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ExternalCompany
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCategory returns companies whose declared category set contains c,
// sorted by folded name.
func (s *Store) ListByCategory(ctx context.Context, cat models.ReportCategory) ([]models.ExternalCompany, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"categories": cat}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ExternalCompany
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the fields an administrator can change on a company.
type Update struct {
	Name           string
	Categories     []models.ReportCategory
	PlatformAccess *bool
	ContactEmail   string
}

// UpdateCompany applies an administrative update.
func (s *Store) UpdateCompany(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != "" {
		set["name"] = normalize.Name(upd.Name)
		set["name_ci"] = text.Fold(upd.Name)
	}
	if upd.Categories != nil {
		if err := validateCategories(upd.Categories); err != nil {
			return err
		}
		set["categories"] = upd.Categories
	}
	if upd.PlatformAccess != nil {
		set["platform_access"] = *upd.PlatformAccess
	}
	if upd.ContactEmail != "" {
		set["contact_email"] = normalize.Email(upd.ContactEmail)
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a company. The caller is responsible for the
// maintainers-attached guard; the store only deletes.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
