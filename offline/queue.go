package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
)

var (
	// ErrSyncInProgress is returned by Sync while another pass on the same
	// queue is running.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrNotQueued      = errors.New("order is not queued")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSyncing Status = "syncing"
	StatusFailed  Status = "failed"
)

// QueuedOrder is an order captured while the server could not be reached.
type QueuedOrder struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Position  int64             `gorm:"not null;index" json:"-"`
	CreatedAt time.Time         `gorm:"not null" json:"timestamp"`
	Items     []models.LineItem `gorm:"type:text;serializer:json;not null" json:"items"`
	Status    Status            `gorm:"type:varchar(10);not null" json:"status"`
	LastError string            `gorm:"type:text" json:"lastError,omitempty"`
}

func (QueuedOrder) TableName() string {
	return "queued_orders"
}

func (o QueuedOrder) clone() QueuedOrder {
	o.Items = append([]models.LineItem(nil), o.Items...)
	return o
}

// SyncError reports a queued order the server rejected for lack of stock.
// The order has already left the queue.
type SyncError struct {
	OrderID string                   `json:"orderId"`
	Items   []models.LineItem        `json:"items"`
	Errors  []models.StockDiagnostic `json:"errors"`
	At      time.Time                `json:"at"`
}

// SyncReport summarises one Sync pass.
type SyncReport struct {
	Attempted int
	Accepted  int
	Conflicts int
	Failed    int
	Deferred  int
	Skipped   int
	Created   []uint
}

// Store persists the whole queue. Save replaces the previous contents.
type Store interface {
	Load(ctx context.Context) ([]QueuedOrder, error)
	Save(ctx context.Context, orders []QueuedOrder) error
}

type QueueOption func(*Queue)

func WithLogger(log logrus.FieldLogger) QueueOption {
	return func(q *Queue) { q.log = log }
}

func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// Queue buffers orders durably and replays them against a Submitter. All
// state lives behind mu; submissions run without holding it.
type Queue struct {
	mu         sync.Mutex
	orders     []QueuedOrder
	syncErrors []SyncError
	syncing    bool
	nextPos    int64

	store     Store
	submitter Submitter
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewQueue restores the queue from store. Entries left in syncing by an
// interrupted pass are put back to pending.
func NewQueue(store Store, submitter Submitter, opts ...QueueOption) (*Queue, error) {
	q := &Queue{
		store:     store,
		submitter: submitter,
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}

	ctx := context.Background()
	orders, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}

	recovered := 0
	for i := range orders {
		if orders[i].Status == StatusSyncing {
			orders[i].Status = StatusPending
			recovered++
		}
		if orders[i].Position >= q.nextPos {
			q.nextPos = orders[i].Position + 1
		}
	}
	q.orders = orders

	if recovered > 0 {
		if err := q.store.Save(ctx, q.snapshotLocked()); err != nil {
			return nil, fmt.Errorf("save recovered queue: %w", err)
		}
		q.log.WithField("orders", recovered).Warn("requeued orders interrupted mid-sync")
	}
	return q, nil
}

// Enqueue stores a new pending order and returns it.
func (q *Queue) Enqueue(ctx context.Context, items []models.LineItem) (QueuedOrder, error) {
	if err := services.ValidateLineItems(items); err != nil {
		return QueuedOrder{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	order := QueuedOrder{
		ID:        uuid.NewString(),
		Position:  q.nextPos,
		CreatedAt: q.now(),
		Items:     append([]models.LineItem(nil), items...),
		Status:    StatusPending,
	}
	q.orders = append(q.orders, order)

	if err := q.store.Save(ctx, q.snapshotLocked()); err != nil {
		q.orders = q.orders[:len(q.orders)-1]
		return QueuedOrder{}, fmt.Errorf("persist queued order: %w", err)
	}
	q.nextPos++

	q.log.WithFields(logrus.Fields{"queued_id": order.ID, "lines": len(items)}).Info("order queued offline")
	return order.clone(), nil
}

// Remove drops an order. If a sync pass is submitting it, the pass ignores
// its result.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotQueued, id)
	}
	removed := q.orders[idx]
	q.orders = append(q.orders[:idx], q.orders[idx+1:]...)

	if err := q.store.Save(ctx, q.snapshotLocked()); err != nil {
		q.orders = append(q.orders[:idx], append([]QueuedOrder{removed}, q.orders[idx:]...)...)
		return fmt.Errorf("persist removal: %w", err)
	}
	return nil
}

// Orders returns a copy of the queue in submission order.
func (q *Queue) Orders() []QueuedOrder {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Pending counts the orders the next Sync would submit.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, o := range q.orders {
		if o.Status == StatusPending || o.Status == StatusFailed {
			n++
		}
	}
	return n
}

func (q *Queue) Syncing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.syncing
}

func (q *Queue) SyncErrors() []SyncError {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]SyncError(nil), q.syncErrors...)
}

func (q *Queue) ClearSyncErrors() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.syncErrors = nil
}

// Sync submits every pending or failed order once, oldest first. Orders
// enqueued during the pass wait for the next one.
func (q *Queue) Sync(ctx context.Context) (SyncReport, error) {
	return q.sync(ctx, true)
}

// SyncPending is Sync restricted to pending orders. Failed orders stay put
// until the next full Sync.
func (q *Queue) SyncPending(ctx context.Context) (SyncReport, error) {
	return q.sync(ctx, false)
}

func (q *Queue) sync(ctx context.Context, retryFailed bool) (SyncReport, error) {
	batch, err := q.beginSync(ctx, retryFailed)
	if err != nil || len(batch) == 0 {
		return SyncReport{}, err
	}
	defer q.endSync(batch)

	var report SyncReport
	for _, order := range batch {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++
		result := q.submitter.Submit(ctx, order.Items)
		q.apply(ctx, order, result, &report)
	}

	q.log.WithFields(logrus.Fields{
		"attempted": report.Attempted,
		"accepted":  report.Accepted,
		"conflicts": report.Conflicts,
		"failed":    report.Failed,
		"deferred":  report.Deferred,
	}).Info("offline queue synced")
	return report, ctx.Err()
}

// beginSync marks the batch syncing and persists it. Nothing is submitted
// unless that write succeeds.
func (q *Queue) beginSync(ctx context.Context, retryFailed bool) ([]QueuedOrder, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.syncing {
		return nil, ErrSyncInProgress
	}

	var batch []QueuedOrder
	previous := make(map[string]Status)
	for i := range q.orders {
		status := q.orders[i].Status
		if status == StatusPending || (retryFailed && status == StatusFailed) {
			previous[q.orders[i].ID] = status
			q.orders[i].Status = StatusSyncing
			batch = append(batch, q.orders[i].clone())
		}
	}
	if len(batch) == 0 {
		return nil, nil
	}

	if err := q.store.Save(ctx, q.snapshotLocked()); err != nil {
		for i := range q.orders {
			if status, ok := previous[q.orders[i].ID]; ok {
				q.orders[i].Status = status
			}
		}
		return nil, fmt.Errorf("persist syncing state: %w", err)
	}
	q.syncing = true
	return batch, nil
}

// endSync puts orders the pass never reached back to pending.
func (q *Queue) endSync(batch []QueuedOrder) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.syncing = false

	changed := false
	for _, order := range batch {
		if idx := q.indexLocked(order.ID); idx >= 0 && q.orders[idx].Status == StatusSyncing {
			q.orders[idx].Status = StatusPending
			changed = true
		}
	}
	if changed {
		if err := q.store.Save(context.Background(), q.snapshotLocked()); err != nil {
			q.log.WithError(err).Error("persist unsent orders")
		}
	}
}

func (q *Queue) apply(ctx context.Context, order QueuedOrder, result SubmitResult, report *SyncReport) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.log.WithFields(logrus.Fields{"queued_id": order.ID, "outcome": result.Outcome})

	idx := q.indexLocked(order.ID)
	if idx < 0 {
		report.Skipped++
		entry.Warn("queued order removed while being submitted")
		return
	}

	switch result.Outcome {
	case OutcomeAccepted:
		q.orders = append(q.orders[:idx], q.orders[idx+1:]...)
		report.Accepted++
		if result.Order != nil {
			report.Created = append(report.Created, result.Order.ID)
		}
		entry.Info("queued order accepted")
	case OutcomeConflict:
		q.orders = append(q.orders[:idx], q.orders[idx+1:]...)
		q.syncErrors = append(q.syncErrors, SyncError{
			OrderID: order.ID,
			Items:   order.Items,
			Errors:  result.Diagnostics,
			At:      q.now(),
		})
		report.Conflicts++
		entry.WithField("ingredients", len(result.Diagnostics)).Warn("queued order rejected for stock")
	case OutcomeNetworkError:
		q.orders[idx].Status = StatusPending
		report.Deferred++
		entry.WithError(result.Err).Info("server unreachable, keeping order")
	default:
		q.orders[idx].Status = StatusFailed
		if result.Err != nil {
			q.orders[idx].LastError = result.Err.Error()
		}
		report.Failed++
		entry.WithError(result.Err).Warn("queued order failed")
	}

	if err := q.store.Save(context.WithoutCancel(ctx), q.snapshotLocked()); err != nil {
		entry.WithError(err).Error("persist queue")
	}
}

func (q *Queue) indexLocked(id string) int {
	for i := range q.orders {
		if q.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) snapshotLocked() []QueuedOrder {
	out := make([]QueuedOrder, len(q.orders))
	for i, o := range q.orders {
		out[i] = o.clone()
	}
	return out
}
