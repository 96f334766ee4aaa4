// internal/app/system/workers/emaildelivery.go
package workers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/mailer"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// EmailDelivery sends each notification to the recipient's email address.
// A recipient that no longer exists is dropped, not retried: the intent
// is marked delivered so it stops occupying the pending queue.
type EmailDelivery struct {
	Users    *userstore.Store
	Sender   mailer.Sender
	SiteName string
	BaseURL  string
	Log      *zap.Logger
}

func (d EmailDelivery) Deliver(ctx context.Context, n models.Notification) error {
	u, err := d.Users.GetByID(ctx, n.RecipientID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			d.Log.Warn("notification recipient no longer exists, dropping",
				zap.String("notification_id", n.ID.Hex()),
				zap.String("recipient_id", n.RecipientID.Hex()))
			return nil
		}
		return err
	}

	email := mailer.BuildNotificationEmail(d.SiteName, d.BaseURL, n)
	email.To = u.Email
	if err := d.Sender.Send(email); err != nil {
		return err
	}

	d.Log.Info("notification email sent",
		zap.String("notification_id", n.ID.Hex()),
		zap.String("recipient", u.Email),
		zap.String("type", string(n.Type)))
	return nil
}
