package reportstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/munidesk/internal/app/system/normalize"
	"github.com/dalemusser/munidesk/internal/app/system/paging"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

var (
	// ErrNotFound is returned when no report with the given ID exists.
	ErrNotFound = errors.New("report not found")

	// ErrStateConflict is returned when a conditional transition loses the
	// race: the report exists but its current state no longer matches what
	// the caller observed. Callers map this to a bad-request for the
	// client ("already assigned", "not pending approval", ...).
	ErrStateConflict = errors.New("report state changed concurrently")

	errBadStatus   = errors.New("invalid report status")
	errBadCategory = errors.New("invalid report category")
)

// Store persists reports. Every state-changing write is a conditional
// update filtered on the expected current state so that of two racing
// mutations exactly one succeeds and the other sees ErrStateConflict.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reports")}
}

// Create inserts a new report after normalizing and validating fields.
// Status is always forced to pending_approval regardless of input.
func (s *Store) Create(ctx context.Context, r models.Report) (models.Report, error) {
	r.ID = primitive.NewObjectID()
	r.Title = normalize.Name(r.Title)
	r.TitleCI = text.Fold(r.Title)
	r.Status = models.StatusPendingApproval
	r.AssignedOfficerID = nil
	r.ExternalCompanyID = nil
	r.ExternalMaintainerID = nil
	r.RejectedReason = ""

	if !models.ValidCategory(r.Category) {
		return models.Report{}, errBadCategory
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

// GetByID loads a report by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var r models.Report
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
// Before and After are opaque keyset cursors from a previous Page.
type ListFilter struct {
	Status       models.ReportStatus
	Category     models.ReportCategory
	SubmitterID  *primitive.ObjectID
	OfficerID    *primitive.ObjectID
	MaintainerID *primitive.ObjectID
	Before       string
	After        string
}

// Page is one page of List results, newest first, with keyset cursors
// for walking the feed in either direction.
type Page struct {
	Reports    []models.Report
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// List returns one page of reports matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) (Page, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.SubmitterID != nil {
		query["submitter_id"] = *filter.SubmitterID
	}
	if filter.OfficerID != nil {
		query["assigned_officer_id"] = *filter.OfficerID
	}
	if filter.MaintainerID != nil {
		query["external_maintainer_id"] = *filter.MaintainerID
	}

	cfg := paging.Configure(filter.Before, filter.After)
	if win := cfg.Window("created_at"); win != nil {
		query = bson.M{"$and": bson.A{query, win}}
	}

	opts := options.Find()
	cfg.ApplyToFind(opts, "created_at")
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	var out []models.Report
	if err := cur.All(ctx, &out); err != nil {
		return Page{}, err
	}

	res := paging.TrimPage(&out, filter.Before, filter.After)
	if cfg.Direction == paging.Backward {
		paging.Reverse(out)
	}
	prev, next := paging.BuildCursors(out,
		func(r models.Report) string { return paging.CursorKey(r.CreatedAt) },
		func(r models.Report) primitive.ObjectID { return r.ID })

	return Page{
		Reports:    out,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	}, nil
}

// CountOpenAssignedTo counts open reports (not resolved/rejected) bound to
// the user as officer or maintainer. Used as the user-deletion guard.
func (s *Store) CountOpenAssignedTo(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"status": bson.M{"$nin": bson.A{models.StatusResolved, models.StatusRejected}},
		"$or": bson.A{
			bson.M{"assigned_officer_id": userID},
			bson.M{"external_maintainer_id": userID},
		},
	})
}

// CountOpenForCompany counts open reports currently assigned to the company.
func (s *Store) CountOpenForCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"status":              bson.M{"$nin": bson.A{models.StatusResolved, models.StatusRejected}},
		"external_company_id": companyID,
	})
}

// Approve transitions pending_approval → assigned and binds the internal
// officer, atomically. ErrStateConflict when the report is no longer
// pending approval.
func (s *Store) Approve(ctx context.Context, id, officerID primitive.ObjectID) (*models.Report, error) {
	return s.conditionalUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusPendingApproval},
		bson.M{"$set": bson.M{
			"status":              models.StatusAssigned,
			"assigned_officer_id": officerID,
			"updated_at":          time.Now().UTC(),
		}},
		id)
}

// Reject transitions pending_approval → rejected, recording the reason.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID, reason string) (*models.Report, error) {
	return s.conditionalUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusPendingApproval},
		bson.M{"$set": bson.M{
			"status":          models.StatusRejected,
			"rejected_reason": reason,
			"updated_at":      time.Now().UTC(),
		}},
		id)
}

// UpdateStatus performs the from → to transition atomically. The caller
// (lifecycle engine) has already validated that the transition is legal;
// the filter on the expected current status is what makes racing updates
// safe.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReportStatus) (*models.Report, error) {
	if !models.ValidStatus(from) || !models.ValidStatus(to) {
		return nil, errBadStatus
	}
	return s.conditionalUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		}},
		id)
}

// AssignExternal binds the company (and maintainer, when the company has
// platform access) and transitions assigned → external_assigned. The
// filter requires no existing external assignment, so of two racing
// assignment attempts only one wins.
func (s *Store) AssignExternal(ctx context.Context, id, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) (*models.Report, error) {
	set := bson.M{
		"status":              models.StatusExternalAssigned,
		"external_company_id": companyID,
		"updated_at":          time.Now().UTC(),
	}
	if maintainerID != nil {
		set["external_maintainer_id"] = *maintainerID
	}
	return s.conditionalUpdate(ctx,
		bson.M{
			"_id":                 id,
			"status":              models.StatusAssigned,
			"external_company_id": nil,
		},
		bson.M{"$set": set},
		id)
}

// ReassignExternal replaces an existing external assignment with a new
// company/maintainer pair. Requires that an external assignment is in
// place and the report is in external_assigned or suspended; either way
// the report resumes as external_assigned under the new contractor.
func (s *Store) ReassignExternal(ctx context.Context, id, companyID primitive.ObjectID, maintainerID *primitive.ObjectID) (*models.Report, error) {
	update := bson.M{
		"$set": bson.M{
			"status":              models.StatusExternalAssigned,
			"external_company_id": companyID,
			"updated_at":          time.Now().UTC(),
		},
	}
	if maintainerID != nil {
		update["$set"].(bson.M)["external_maintainer_id"] = *maintainerID
	} else {
		update["$unset"] = bson.M{"external_maintainer_id": ""}
	}
	return s.conditionalUpdate(ctx,
		bson.M{
			"_id":                 id,
			"status":              bson.M{"$in": bson.A{models.StatusExternalAssigned, models.StatusSuspended}},
			"external_company_id": bson.M{"$ne": nil},
		},
		update,
		id)
}

// conditionalUpdate runs a FindOneAndUpdate against the given filter and
// disambiguates a miss into ErrNotFound vs ErrStateConflict by re-reading
// the document.
func (s *Store) conditionalUpdate(ctx context.Context, filter, update bson.M, id primitive.ObjectID) (*models.Report, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.Report
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&r)
	if err == nil {
		return &r, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// The filter missed: either the report does not exist, or it exists in
	// a state the filter excluded (a concurrent mutation beat us).
	n, cErr := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if cErr != nil {
		return nil, cErr
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStateConflict
}
