package reservation_test

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// memStore is an in-memory Store with the same locking contract as the
// MySQL one: reads see committed data only and take no lock on absent
// rows, so InTx alone does not serialize two submissions for an empty
// slot.  InSlot holds a per-(room, slot) mutex for the whole transaction
// and Lock holds a per-row mutex until commit or rollback.
type memStore struct {
	mu           sync.Mutex
	reservations map[uint64]model.Reservation
	approvals    []model.Approval
	users        map[uint64]string

	slotLocks sync.Map // string -> *sync.Mutex
	rowLocks  sync.Map // uint64 -> *sync.Mutex

	nextID         atomic.Uint64
	nextApprovalID atomic.Uint64

	// fail makes the named Tx method (or "commit") return the error.
	fail map[string]error

	slotTxs atomic.Int64
	plainTx atomic.Int64
}

func newMemStore() *memStore {
	return &memStore{
		reservations: map[uint64]model.Reservation{},
		users:        map[uint64]string{},
		fail:         map[string]error{},
	}
}

func (s *memStore) failOn(method string, err error) { s.fail[method] = err }

func lockFor(m *sync.Map, key any) *sync.Mutex {
	l, _ := m.LoadOrStore(key, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (s *memStore) InSlot(ctx context.Context, roomID, slotID uint64, fn func(reservation.Tx) error) error {
	l := lockFor(&s.slotLocks, fmt.Sprintf("%d:%d", roomID, slotID))
	l.Lock()
	defer l.Unlock()
	s.slotTxs.Add(1)
	return s.run(fn)
}

func (s *memStore) InTx(ctx context.Context, fn func(reservation.Tx) error) error {
	s.plainTx.Add(1)
	return s.run(fn)
}

func (s *memStore) run(fn func(reservation.Tx) error) error {
	tx := &memTx{s: s}
	defer tx.release()
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.fail["commit"]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range tx.writes {
		w()
	}
	return nil
}

func (s *memStore) snapshot() []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) approvalRows() []model.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Approval(nil), s.approvals...)
}

// seed stores r as committed data and returns its id.
func (s *memStore) seed(r model.Reservation) uint64 {
	r.ID = s.nextID.Add(1)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().Add(time.Duration(r.ID) * time.Millisecond)
	}
	s.mu.Lock()
	s.reservations[r.ID] = r
	s.mu.Unlock()
	return r.ID
}

func (s *memStore) detail(r model.Reservation) model.ReservationDetail {
	return model.ReservationDetail{
		Reservation: r,
		UserName:    s.users[r.UserID],
		RoomName:    fmt.Sprintf("Room %d", r.RoomID),
		SlotDate:    "2026-01-05",
		StartTime:   "09:00:00",
		EndTime:     "10:00:00",
	}
}

func (s *memStore) list(keep func(model.Reservation) bool) []model.ReservationDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ReservationDetail
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, s.detail(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memStore) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationDetail, error) {
	if err := s.fail["list"]; err != nil {
		return nil, err
	}
	return s.list(func(r model.Reservation) bool { return r.UserID == userID }), nil
}

func (s *memStore) ListAll(ctx context.Context) ([]model.ReservationDetail, error) {
	if err := s.fail["list"]; err != nil {
		return nil, err
	}
	return s.list(func(model.Reservation) bool { return true }), nil
}

func (s *memStore) Detail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	d := s.detail(r)
	return &d, nil
}

func (s *memStore) Approvals(ctx context.Context, id uint64) ([]model.Approval, error) {
	var out []model.Approval
	for _, a := range s.approvalRows() {
		if a.ReservationID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

type memTx struct {
	s      *memStore
	writes []func()
	held   []*sync.Mutex
}

func (t *memTx) release() {
	for _, l := range t.held {
		l.Unlock()
	}
	t.held = nil
}

func (t *memTx) ActiveIDs(ctx context.Context, roomID, slotID uint64) ([]uint64, error) {
	if err := t.s.fail["ActiveIDs"]; err != nil {
		return nil, err
	}
	t.s.mu.Lock()
	var ids []uint64
	for _, r := range t.s.reservations {
		if r.RoomID == roomID && r.SlotID == slotID && r.Status.Active() {
			ids = append(ids, r.ID)
		}
	}
	t.s.mu.Unlock()
	// Widen the gap between the check and the insert so that a caller
	// relying on InTx alone would race.
	runtime.Gosched()
	return ids, nil
}

func (t *memTx) Insert(ctx context.Context, r *model.Reservation) error {
	if err := t.s.fail["Insert"]; err != nil {
		return err
	}
	r.ID = t.s.nextID.Add(1)
	r.CreatedAt = time.Now()
	row := *r
	t.writes = append(t.writes, func() { t.s.reservations[row.ID] = row })
	return nil
}

func (t *memTx) Lock(ctx context.Context, id uint64) (*model.Reservation, error) {
	l := lockFor(&t.s.rowLocks, id)
	l.Lock()
	t.held = append(t.held, l)
	t.s.mu.Lock()
	r, ok := t.s.reservations[id]
	t.s.mu.Unlock()
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return &r, nil
}

func (t *memTx) SetStatus(ctx context.Context, id uint64, status model.Status) error {
	if err := t.s.fail["SetStatus"]; err != nil {
		return err
	}
	t.writes = append(t.writes, func() {
		r := t.s.reservations[id]
		r.Status = status
		t.s.reservations[id] = r
	})
	return nil
}

func (t *memTx) InsertApproval(ctx context.Context, a *model.Approval) error {
	if err := t.s.fail["InsertApproval"]; err != nil {
		return err
	}
	a.ID = t.s.nextApprovalID.Add(1)
	a.CreatedAt = time.Now()
	row := *a
	t.writes = append(t.writes, func() { t.s.approvals = append(t.s.approvals, row) })
	return nil
}

func (t *memTx) DeleteByStatus(ctx context.Context, status model.Status) (int64, error) {
	if err := t.s.fail["DeleteByStatus"]; err != nil {
		return 0, err
	}
	t.s.mu.Lock()
	var ids []uint64
	for id, r := range t.s.reservations {
		if r.Status == status {
			ids = append(ids, id)
		}
	}
	t.s.mu.Unlock()
	t.writes = append(t.writes, func() {
		gone := map[uint64]bool{}
		for _, id := range ids {
			delete(t.s.reservations, id)
			gone[id] = true
		}
		kept := t.s.approvals[:0]
		for _, a := range t.s.approvals {
			if !gone[a.ReservationID] {
				kept = append(kept, a)
			}
		}
		t.s.approvals = kept
	})
	return int64(len(ids)), nil
}

func (t *memTx) DeleteAll(ctx context.Context) error {
	if err := t.s.fail["DeleteAll"]; err != nil {
		return err
	}
	t.writes = append(t.writes, func() {
		t.s.approvals = nil
		t.s.reservations = map[uint64]model.Reservation{}
	})
	return nil
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recorder) PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.Type)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
