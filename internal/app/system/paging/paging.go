// internal/app/system/paging/paging.go

// Package paging implements keyset pagination for report feeds. Feeds are
// sorted newest-first on created_at; cursors carry the boundary timestamp
// plus the document id as a tie-breaker.
package paging

import (
	"net/http"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows per page. Keep this as an int because
// call sites add one for look-ahead and then cast to int64 for Mongo
// Find().SetLimit().
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseCursors extracts the "before" and "after" query parameters.
func ParseCursors(r *http.Request) (before, after string) {
	return query.Get(r, "before"), query.Get(r, "after")
}

// CursorKey renders a timestamp as a cursor sort key. RFC 3339 with
// nanoseconds round-trips through Parse so the boundary comparison runs
// against the original time value.
func CursorKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // default: newest first, "after" moves to older rows
	Backward                  // "before" moves back toward newer rows
)

// Config holds the result of configuring keyset pagination.
type Config struct {
	Direction Direction
	SortOrder int // -1 newest first (forward), 1 oldest first (backward fetch)
	Cursor    *wafflemongo.Cursor
}

// Configure determines pagination direction and decodes the cursor.
// An unparseable cursor falls back to the first page.
func Configure(before, after string) Config {
	cfg := Config{
		Direction: Forward,
		SortOrder: -1,
	}

	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = 1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}

	return cfg
}

// ApplyToFind configures FindOptions with sort and look-ahead limit.
func (cfg Config) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// Window returns the cursor condition for the query filter, or nil when
// no cursor is set. The cursor key is parsed back into a time.Time so the
// comparison runs against the BSON date field, not its string rendering.
func (cfg Config) Window(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, cfg.Cursor.CI)
	if err != nil {
		return nil
	}
	op := "$lt"
	if cfg.Direction == Backward {
		op = "$gt"
	}
	return bson.M{"$or": bson.A{
		bson.M{sortField: bson.M{op: ts}},
		bson.M{sortField: ts, "_id": bson.M{op: cfg.Cursor.ID}},
	}}
}

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a fetched slice after a PageSize+1 look-ahead fetch.
// It modifies the slice in place and returns pagination indicators.
//
// When going backwards (before != ""), rows arrive oldest-first and the
// extra row at the end means newer pages exist; HasNext is always true
// because the caller came from somewhere. Call Reverse afterwards to
// restore display order.
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var hasPrev, hasNext bool

	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			hasPrev = true
		}
		hasNext = true
	} else {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			hasNext = true
		}
		hasPrev = after != ""
	}

	return Result{HasPrev: hasPrev, HasNext: hasNext}
}

// Reverse reverses a slice in place. Use this after a backward fetch to
// restore newest-first display order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last
// elements of a page already in display order. keyFn extracts the sort
// key; idFn extracts the ObjectID.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first := rows[0]
	last := rows[len(rows)-1]
	prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
	next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
	return prev, next
}
