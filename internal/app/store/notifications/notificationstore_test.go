package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/dalemusser/munidesk/internal/app/store/notifications"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intent(recipient primitive.ObjectID, typ models.NotificationType, dedup string) models.Notification {
	return models.Notification{
		RecipientID: recipient,
		Type:        typ,
		Title:       "Report update",
		Message:     "something happened",
		ReportID:    primitive.NewObjectID(),
		DedupKey:    dedup,
	}
}

func TestStore_Insert_DedupKeyIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recipient := primitive.NewObjectID()
	first := intent(recipient, models.NotifyReportApproved, "dedup-1")

	if err := store.Insert(ctx, []models.Notification{first}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// Retried insert with the same dedup key is silently skipped.
	if err := store.Insert(ctx, []models.Notification{first}); err != nil {
		t.Fatalf("retried Insert failed: %v", err)
	}

	got, err := store.ListByRecipient(ctx, recipient, 10)
	if err != nil {
		t.Fatalf("ListByRecipient failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d notifications, want 1", len(got))
	}
}

func TestStore_ListPending_And_MarkDelivered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recipient := primitive.NewObjectID()
	err := store.Insert(ctx, []models.Notification{
		intent(recipient, models.NotifyReportApproved, "dedup-a"),
		intent(recipient, models.NotifyReportStatusChanged, "dedup-b"),
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}

	ok, err := store.MarkDelivered(ctx, pending[0].ID)
	if err != nil {
		t.Fatalf("MarkDelivered failed: %v", err)
	}
	if !ok {
		t.Error("expected first MarkDelivered to win")
	}

	// Second delivery of the same intent loses the conditional update.
	ok, err = store.MarkDelivered(ctx, pending[0].ID)
	if err != nil {
		t.Fatalf("second MarkDelivered failed: %v", err)
	}
	if ok {
		t.Error("expected second MarkDelivered to be a no-op")
	}

	pending, err = store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("got %d pending after delivery, want 1", len(pending))
	}
}

func TestStore_ListByRecipient_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recipient := primitive.NewObjectID()
	other := primitive.NewObjectID()

	older := intent(recipient, models.NotifyReportApproved, "dedup-old")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := intent(recipient, models.NotifyReportStatusChanged, "dedup-new")

	err := store.Insert(ctx, []models.Notification{
		older,
		newer,
		intent(other, models.NotifyReportApproved, "dedup-other"),
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.ListByRecipient(ctx, recipient, 10)
	if err != nil {
		t.Fatalf("ListByRecipient failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	if got[0].DedupKey != "dedup-new" || got[1].DedupKey != "dedup-old" {
		t.Errorf("unexpected order: %q, %q", got[0].DedupKey, got[1].DedupKey)
	}
}
