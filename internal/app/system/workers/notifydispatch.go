// internal/app/system/workers/notifydispatch.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/munidesk/internal/app/store/notifications"
	"github.com/dalemusser/munidesk/internal/domain/models"
)

// Delivery sends one notification to its recipient. Implementations may
// push email, SMS, or anything else; the default LogDelivery just records
// the event, which keeps local and test environments side-effect free.
type Delivery interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// LogDelivery logs each notification instead of sending it.
type LogDelivery struct {
	Log *zap.Logger
}

func (d LogDelivery) Deliver(_ context.Context, n models.Notification) error {
	d.Log.Info("notification delivered",
		zap.String("notification_id", n.ID.Hex()),
		zap.String("recipient_id", n.RecipientID.Hex()),
		zap.String("type", string(n.Type)),
		zap.String("report_id", n.ReportID.Hex()))
	return nil
}

// NotifyDispatch is a background worker that drains pending notification
// intents and hands them to a Delivery. A failed delivery leaves the
// intent pending for the next tick; MarkDelivered is conditional, so a
// racing second dispatcher cannot double-deliver the same intent's
// completion.
type NotifyDispatch struct {
	notifications *notificationstore.Store
	delivery      Delivery
	log           *zap.Logger
	interval      time.Duration
	batchSize     int64
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewNotifyDispatch creates the dispatcher.
//
// Parameters:
//   - store: the notifications store
//   - delivery: how notifications leave the system
//   - logger: zap logger
//   - interval: how often to drain (e.g., 15 seconds)
//   - batchSize: max intents per tick
func NewNotifyDispatch(store *notificationstore.Store, delivery Delivery, logger *zap.Logger, interval time.Duration, batchSize int64) *NotifyDispatch {
	return &NotifyDispatch{
		notifications: store,
		delivery:      delivery,
		log:           logger,
		interval:      interval,
		batchSize:     batchSize,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background dispatch loop.
func (w *NotifyDispatch) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("notification dispatch worker started",
		zap.Duration("interval", w.interval),
		zap.Int64("batch_size", w.batchSize))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *NotifyDispatch) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notification dispatch worker stopped")
}

func (w *NotifyDispatch) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

func (w *NotifyDispatch) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := w.notifications.ListPending(ctx, w.batchSize)
	if err != nil {
		w.log.Error("failed to list pending notifications", zap.Error(err))
		return
	}

	delivered := 0
	for _, n := range pending {
		if err := w.delivery.Deliver(ctx, n); err != nil {
			w.log.Warn("notification delivery failed",
				zap.String("notification_id", n.ID.Hex()),
				zap.Error(err))
			continue
		}
		ok, err := w.notifications.MarkDelivered(ctx, n.ID)
		if err != nil {
			w.log.Error("failed to mark notification delivered",
				zap.String("notification_id", n.ID.Hex()),
				zap.Error(err))
			continue
		}
		if ok {
			delivered++
		}
	}

	if delivered > 0 {
		w.log.Info("dispatched notifications", zap.Int("count", delivered))
	}
}
