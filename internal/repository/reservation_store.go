package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// ReservationStore is the MySQL implementation of reservation.Store.
//
// Slot serialization uses a named advisory lock (GET_LOCK) taken on a
// dedicated connection before the transaction starts on that same
// connection.  The lock name is derived from the (room, slot) pair, so
// two submissions for one pair queue up behind each other even when no
// reservation row exists yet for a FOR UPDATE to lock, while other pairs
// proceed in parallel.
type ReservationStore struct {
	db       *sql.DB
	lockWait time.Duration
}

var _ reservation.Store = (*ReservationStore)(nil)

// NewReservationStore returns a store bound to db.  lockWait bounds the
// wait for a slot lock; values under one second are rounded up to one.
func NewReservationStore(db *sql.DB, lockWait time.Duration) *ReservationStore {
	return &ReservationStore{db: db, lockWait: lockWait}
}

// SlotLockName is the advisory lock name for a (room, slot) pair.
func SlotLockName(roomID, slotID uint64) string {
	return fmt.Sprintf("reservation:slot:%d:%d", roomID, slotID)
}

func (s *ReservationStore) lockSeconds() int {
	secs := int(math.Ceil(s.lockWait.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InSlot implements reservation.Store.
func (s *ReservationStore) InSlot(ctx context.Context, roomID, slotID uint64, fn func(reservation.Tx) error) error {
	const op = "repository.InSlot"

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: conn: %w", op, err)
	}
	defer conn.Close()

	name := SlotLockName(roomID, slotID)
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, name, s.lockSeconds()).Scan(&got); err != nil {
		return fmt.Errorf("%s: get lock %s: %w", op, name, lockErr(err))
	}
	switch {
	case !got.Valid:
		return fmt.Errorf("%s: get lock %s returned NULL", op, name)
	case got.Int64 != 1:
		return fmt.Errorf("%s: %s: %w", op, name, reservation.ErrLockTimeout)
	}
	defer s.release(conn, name)

	return runTx(ctx, conn, op, fn)
}

// release drops the advisory lock.  It does not use the request context,
// which may already be done.  If the release fails the connection is
// discarded so the session, and the lock with it, is closed instead of
// going back to the pool.
func (s *ReservationStore) release(conn *sql.Conn, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(ctx, `DO RELEASE_LOCK(?)`, name); err != nil {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
}

// InTx implements reservation.Store.
func (s *ReservationStore) InTx(ctx context.Context, fn func(reservation.Tx) error) error {
	return runTx(ctx, s.db, "repository.InTx", fn)
}

// runTx runs fn in a transaction, committing on nil and rolling back
// otherwise.  Errors from fn are returned unchanged.
func runTx(ctx context.Context, b txBeginner, op string, fn func(reservation.Tx) error) error {
	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&reservationTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, lockErr(err))
	}
	committed = true
	return nil
}

// reservationTx implements reservation.Tx on a *sql.Tx.
type reservationTx struct {
	tx *sql.Tx
}

func (t *reservationTx) ActiveIDs(ctx context.Context, roomID, slotID uint64) ([]uint64, error) {
	const op = "repository.ActiveIDs"
	const q = `SELECT id FROM reservations
	           WHERE room_id = ? AND slot_id = ? AND status IN ('pending', 'approved')
	           FOR UPDATE`
	rows, err := t.tx.QueryContext(ctx, q, roomID, slotID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, lockErr(err))
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, lockErr(err))
	}
	return ids, nil
}

func (t *reservationTx) Insert(ctx context.Context, r *model.Reservation) error {
	const op = "repository.Insert"
	const q = `INSERT INTO reservations (user_id, room_id, slot_id, purpose, status) VALUES (?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, r.UserID, r.RoomID, r.SlotID, r.Purpose, string(r.Status))
	if err != nil {
		return fmt.Errorf("%s: %w", op, writeErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: last insert id: %w", op, err)
	}
	r.ID = uint64(id)

	// Read back the server-assigned timestamp.
	const sel = `SELECT created_at FROM reservations WHERE id = ?`
	if err := t.tx.QueryRowContext(ctx, sel, r.ID).Scan(&r.CreatedAt); err != nil {
		return fmt.Errorf("%s: read back: %w", op, err)
	}
	return nil
}

func (t *reservationTx) Lock(ctx context.Context, id uint64) (*model.Reservation, error) {
	const op = "repository.Lock"
	const q = `SELECT id, user_id, room_id, slot_id, purpose, status, created_at
	           FROM reservations WHERE id = ? FOR UPDATE`
	var r model.Reservation
	var status string
	err := t.tx.QueryRowContext(ctx, q, id).Scan(&r.ID, &r.UserID, &r.RoomID, &r.SlotID, &r.Purpose, &status, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, lockErr(err))
	}
	r.Status = model.Status(status)
	return &r, nil
}

func (t *reservationTx) SetStatus(ctx context.Context, id uint64, status model.Status) error {
	const op = "repository.SetStatus"
	if _, err := t.tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("%s: %w", op, lockErr(err))
	}
	return nil
}

func (t *reservationTx) InsertApproval(ctx context.Context, a *model.Approval) error {
	const op = "repository.InsertApproval"
	const q = `INSERT INTO approvals (reservation_id, admin_id, decision, notes) VALUES (?, ?, ?, ?)`
	var notes sql.NullString
	if a.Notes != "" {
		notes = sql.NullString{String: a.Notes, Valid: true}
	}
	res, err := t.tx.ExecContext(ctx, q, a.ReservationID, a.AdminID, string(a.Decision), notes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, writeErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: last insert id: %w", op, err)
	}
	a.ID = uint64(id)
	if err := t.tx.QueryRowContext(ctx, `SELECT created_at FROM approvals WHERE id = ?`, a.ID).Scan(&a.CreatedAt); err != nil {
		return fmt.Errorf("%s: read back: %w", op, err)
	}
	return nil
}

func (t *reservationTx) DeleteByStatus(ctx context.Context, status model.Status) (int64, error) {
	const op = "repository.DeleteByStatus"
	const qApprovals = `DELETE a FROM approvals a
	                    JOIN reservations r ON r.id = a.reservation_id
	                    WHERE r.status = ?`
	if _, err := t.tx.ExecContext(ctx, qApprovals, string(status)); err != nil {
		return 0, fmt.Errorf("%s: approvals: %w", op, lockErr(err))
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM reservations WHERE status = ?`, string(status))
	if err != nil {
		return 0, fmt.Errorf("%s: reservations: %w", op, lockErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}

// DeleteAll removes approvals before reservations so foreign keys hold
// at every statement.
func (t *reservationTx) DeleteAll(ctx context.Context) error {
	const op = "repository.DeleteAll"
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM approvals`); err != nil {
		return fmt.Errorf("%s: approvals: %w", op, lockErr(err))
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return fmt.Errorf("%s: reservations: %w", op, lockErr(err))
	}
	return nil
}

const detailSelect = `SELECT r.id, r.user_id, r.room_id, r.slot_id, r.purpose, r.status, r.created_at,
       u.name, rm.room_name,
       DATE_FORMAT(t.slot_date, '%Y-%m-%d'), TIME_FORMAT(t.start_time, '%H:%i:%s'), TIME_FORMAT(t.end_time, '%H:%i:%s')
FROM reservations r
JOIN users u ON u.id = r.user_id
JOIN rooms rm ON rm.id = r.room_id
JOIN timeslots t ON t.id = r.slot_id`

const detailOrder = ` ORDER BY r.created_at DESC, r.id DESC`

type scanner interface {
	Scan(dest ...any) error
}

func scanDetail(sc scanner) (model.ReservationDetail, error) {
	var d model.ReservationDetail
	var status string
	err := sc.Scan(&d.ID, &d.UserID, &d.RoomID, &d.SlotID, &d.Purpose, &status, &d.CreatedAt,
		&d.UserName, &d.RoomName, &d.SlotDate, &d.StartTime, &d.EndTime)
	d.Status = model.Status(status)
	return d, err
}

func (s *ReservationStore) listDetails(ctx context.Context, op, q string, args ...any) ([]model.ReservationDetail, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []model.ReservationDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListByUser implements reservation.Store.
func (s *ReservationStore) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationDetail, error) {
	return s.listDetails(ctx, "repository.ListByUser", detailSelect+` WHERE r.user_id = ?`+detailOrder, userID)
}

// ListAll implements reservation.Store.
func (s *ReservationStore) ListAll(ctx context.Context) ([]model.ReservationDetail, error) {
	return s.listDetails(ctx, "repository.ListAll", detailSelect+detailOrder)
}

// Detail implements reservation.Store.
func (s *ReservationStore) Detail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	d, err := scanDetail(s.db.QueryRowContext(ctx, detailSelect+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("repository.Detail: %w", err)
	}
	return &d, nil
}

// Approvals implements reservation.Store.
func (s *ReservationStore) Approvals(ctx context.Context, reservationID uint64) ([]model.Approval, error) {
	const op = "repository.Approvals"
	const q = `SELECT id, reservation_id, admin_id, decision, notes, created_at
	           FROM approvals WHERE reservation_id = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []model.Approval{}
	for rows.Next() {
		var a model.Approval
		var decision string
		var notes sql.NullString
		if err := rows.Scan(&a.ID, &a.ReservationID, &a.AdminID, &decision, &notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		a.Decision = model.Decision(decision)
		a.Notes = notes.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
