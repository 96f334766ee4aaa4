package workers_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	userstore "github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/mailer"
	"github.com/dalemusser/munidesk/internal/app/system/workers"
	"github.com/dalemusser/munidesk/internal/domain/models"
	"github.com/dalemusser/munidesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// recordingSender captures outbound email instead of sending it.
type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Email
	fail bool
}

func (s *recordingSender) Send(email mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("relay refused")
	}
	s.sent = append(s.sent, email)
	return nil
}

func TestEmailDelivery_SendsToRecipientAddress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	sender := &recordingSender{}
	delivery := workers.EmailDelivery{
		Users:    userstore.New(db),
		Sender:   sender,
		SiteName: "MuniDesk",
		BaseURL:  "http://localhost:8080",
		Log:      zap.NewNop(),
	}

	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: citizen.ID,
		Type:        models.NotifyReportApproved,
		Title:       "Report approved",
		Message:     "Your report was approved.",
		ReportID:    primitive.NewObjectID(),
	}
	if err := delivery.Deliver(ctx, n); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent: got %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].To != citizen.Email {
		t.Errorf("To: got %q, want %q", sender.sent[0].To, citizen.Email)
	}
	if !strings.Contains(sender.sent[0].Subject, "Report approved") {
		t.Errorf("subject: got %q", sender.sent[0].Subject)
	}
}

func TestEmailDelivery_MissingRecipientDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sender := &recordingSender{}
	delivery := workers.EmailDelivery{
		Users:    userstore.New(db),
		Sender:   sender,
		SiteName: "MuniDesk",
		BaseURL:  "http://localhost:8080",
		Log:      zap.NewNop(),
	}

	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: primitive.NewObjectID(),
		Type:        models.NotifyNoteAdded,
		Title:       "New internal note",
		ReportID:    primitive.NewObjectID(),
	}
	if err := delivery.Deliver(ctx, n); err != nil {
		t.Fatalf("missing recipient should be dropped without error, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent: got %d emails, want 0", len(sender.sent))
	}
}

func TestEmailDelivery_SenderFailurePropagates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	citizen := fixtures.CreateCitizen(ctx, "Maria Pappas")
	delivery := workers.EmailDelivery{
		Users:    userstore.New(db),
		Sender:   &recordingSender{fail: true},
		SiteName: "MuniDesk",
		BaseURL:  "http://localhost:8080",
		Log:      zap.NewNop(),
	}

	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: citizen.ID,
		Type:        models.NotifyReportApproved,
		Title:       "Report approved",
		ReportID:    primitive.NewObjectID(),
	}
	if err := delivery.Deliver(ctx, n); err == nil {
		t.Error("expected sender failure to propagate so the intent stays pending")
	}
}
