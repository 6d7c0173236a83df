// Package reservation implements room reservation admission and the
// reservation lifecycle: the ledger that admits at most one active
// reservation per (room, slot), the pending -> approved/rejected state
// machine, and the bulk maintenance operations.  It depends only on the
// Store contract below; the MySQL implementation lives in the repository
// package.
package reservation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/metrics"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
)

// Store is the transactional storage the core runs against.
//
// InSlot and InTx run fn inside one transaction: it is committed when fn
// returns nil and rolled back otherwise, and the error returned by fn is
// passed through unchanged.  InSlot additionally serializes fn against
// every other InSlot call for the same room and slot, across processes,
// including when no reservation row exists yet for that pair.
type Store interface {
	InSlot(ctx context.Context, roomID, slotID uint64, fn func(Tx) error) error
	InTx(ctx context.Context, fn func(Tx) error) error

	ListByUser(ctx context.Context, userID uint64) ([]model.ReservationDetail, error)
	ListAll(ctx context.Context) ([]model.ReservationDetail, error)
	Detail(ctx context.Context, id uint64) (*model.ReservationDetail, error)
	Approvals(ctx context.Context, reservationID uint64) ([]model.Approval, error)
}

// Tx is the set of statements available inside a Store transaction.
type Tx interface {
	// ActiveIDs returns the ids of pending or approved reservations for
	// the pair and locks those rows until the transaction ends.
	ActiveIDs(ctx context.Context, roomID, slotID uint64) ([]uint64, error)
	// Insert stores r and sets its ID and CreatedAt.
	Insert(ctx context.Context, r *model.Reservation) error
	// Lock loads and row-locks one reservation.  It returns
	// ErrReservationNotFound when the id does not exist.
	Lock(ctx context.Context, id uint64) (*model.Reservation, error)
	SetStatus(ctx context.Context, id uint64, status model.Status) error
	// InsertApproval stores a and sets its ID and CreatedAt.
	InsertApproval(ctx context.Context, a *model.Approval) error
	// DeleteByStatus removes reservations with the status, and their
	// approvals, returning the number of reservations removed.
	DeleteByStatus(ctx context.Context, status model.Status) (int64, error)
	// DeleteAll removes every approval and then every reservation.
	DeleteAll(ctx context.Context) error
}

// EventPublisher receives lifecycle events after their transaction has
// committed.  Publishing is best effort.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error
}

// Service exposes the reservation operations.  It is safe for
// concurrent use; all serialization happens in the Store.
type Service struct {
	store   Store
	log     logrus.FieldLogger
	events  EventPublisher
	metrics *metrics.Metrics
	now     func() time.Time

	publishTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes lifecycle events to p.
func WithEvents(p EventPublisher) Option { return func(s *Service) { s.events = p } }

// WithMetrics records operation outcomes in m.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New builds a Service on top of store.
func New(store Store, log logrus.FieldLogger, opts ...Option) *Service {
	if store == nil {
		panic("nil store passed to reservation.New")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		store:          store,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
		publishTimeout: 3 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// publish sends ev without letting a broker failure reach the caller.
// The request context is not reused: the transaction has committed and
// the event should go out even if the client has already disconnected.
func (s *Service) publish(ev queue.ReservationEvent) {
	if s.events == nil {
		return
	}
	ev.OccurredAt = s.now().Format(time.RFC3339)
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()
	if err := s.events.PublishReservationEvent(ctx, ev); err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Warn("reservation event not published")
	}
}

// report logs the outcome of op at a level that matches its class.
func (s *Service) report(op string, fields logrus.Fields, err error) {
	entry := s.log.WithFields(fields).WithField("op", op)
	switch {
	case err == nil:
		entry.Debug("ok")
	case IsStoreFailure(err):
		entry.WithError(err).Error("store failure")
	default:
		entry.WithField("reason", err.Error()).Info("request refused")
	}
}

func requireAdmin(who model.Identity) error {
	if !who.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
