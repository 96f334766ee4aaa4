package userstore

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
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/munidesk/internal/app/system/normalize"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// BcryptCost for hashing passwords.
const BcryptCost = 10

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user with the given ID or email exists.
	ErrNotFound = errors.New("user not found")

	errBadRole       = errors.New("invalid role")
	errBadStatus     = errors.New(`status must be "active"|"disabled"`)
	errCompanyNeeded = errors.New("external_maintainer must have external_company_id")
	errEmptyPassword = errors.New("password must not be empty")
)

// IsValidationErr reports whether err is a field validation failure, i.e.
// bad input rather than a storage problem.
func IsValidationErr(err error) bool {
	return errors.Is(err, errBadRole) ||
		errors.Is(err, errBadStatus) ||
		errors.Is(err, errCompanyNeeded) ||
		errors.Is(err, errEmptyPassword)
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields, hashing
// the given plaintext password with bcrypt.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = "active"
	}

	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.Status != "active" && u.Status != "disabled" {
		return models.User{}, errBadStatus
	}

	// Maintainers must be scoped to a company
	if u.Role == models.RoleExternalMaintainer && u.ExternalCompanyID == nil {
		return models.User{}, errCompanyNeeded
	}

	if password == "" {
		return models.User{}, errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func VerifyPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Update holds the fields an administrator can change on a user.
// Nil/empty fields are left untouched.
type Update struct {
	FullName string
	Email    string
	Role     models.Role
	Status   string
}

// UpdateUser applies an administrative update.
func (s *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != "" {
		set["full_name"] = normalize.Name(upd.FullName)
		set["full_name_ci"] = text.Fold(upd.FullName)
	}
	if upd.Email != "" {
		set["email"] = normalize.Email(upd.Email)
	}
	if upd.Role != "" {
		if !models.ValidRole(upd.Role) {
			return errBadRole
		}
		set["role"] = upd.Role
	}
	if upd.Status != "" {
		if upd.Status != "active" && upd.Status != "disabled" {
			return errBadStatus
		}
		set["status"] = upd.Status
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. The caller is responsible for the open-report
// guard; the store only deletes.
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

// ListMaintainersByCompany returns active external maintainers belonging
// to the given company.
func (s *Store) ListMaintainersByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"role":                models.RoleExternalMaintainer,
		"external_company_id": companyID,
		"status":              "active",
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountMaintainersByCompany counts maintainers (any status) attached to a
// company. Used as the company-deletion guard.
func (s *Store) CountMaintainersByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":                models.RoleExternalMaintainer,
		"external_company_id": companyID,
	})
}

// FindActiveByRole returns the first active user holding the given role,
// oldest account first. The lifecycle engine uses it to pick a default
// assignee for a category's department.
func (s *Store) FindActiveByRole(ctx context.Context, role models.Role) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := s.c.FindOne(ctx,
		bson.M{"role": role, "status": "active"},
		opts,
	).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
