package repository_test

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

var (
	qGetLock     = regexp.QuoteMeta(`SELECT GET_LOCK(?, ?)`)
	qReleaseLock = regexp.QuoteMeta(`DO RELEASE_LOCK(?)`)
	qActive      = regexp.QuoteMeta(`SELECT id FROM reservations WHERE room_id = ? AND slot_id = ? AND status IN ('pending', 'approved') FOR UPDATE`)
	qInsert      = regexp.QuoteMeta(`INSERT INTO reservations (user_id, room_id, slot_id, purpose, status) VALUES (?, ?, ?, ?, ?)`)
	qCreatedAt   = regexp.QuoteMeta(`SELECT created_at FROM reservations WHERE id = ?`)
	qLock        = regexp.QuoteMeta(`FROM reservations WHERE id = ? FOR UPDATE`)
	qSetStatus   = regexp.QuoteMeta(`UPDATE reservations SET status = ? WHERE id = ?`)
	qApproval    = regexp.QuoteMeta(`INSERT INTO approvals (reservation_id, admin_id, decision, notes) VALUES (?, ?, ?, ?)`)
	qApprovalAt  = regexp.QuoteMeta(`SELECT created_at FROM approvals WHERE id = ?`)
)

var (
	alice = model.Identity{UserID: 7, Role: model.RoleStudent}
	boss  = model.Identity{UserID: 1, Role: model.RoleAdmin}
)

func newMockService(t *testing.T) (*reservation.Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := repository.NewReservationStore(db, 3*time.Second)
	return reservation.New(store, log), mock
}

func TestSlotLockName(t *testing.T) {
	assert.Equal(t, "reservation:slot:3:5", repository.SlotLockName(3, 5))
}

func TestSubmitStatementSequence(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(qGetLock).WithArgs("reservation:slot:3:5", 3).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(qActive).WithArgs(3, 5).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(qInsert).WithArgs(7, 3, 5, "seminar", "pending").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(qCreatedAt).WithArgs(42).WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()
	mock.ExpectExec(qReleaseLock).WithArgs("reservation:slot:3:5").WillReturnResult(sqlmock.NewResult(0, 0))

	r, err := svc.Submit(context.Background(), alice, reservation.SubmitRequest{RoomID: 3, SlotID: 5, Purpose: "seminar"})
	require.NoError(t, err)
	assert.EqualValues(t, 42, r.ID)
	assert.Equal(t, now, r.CreatedAt)
	assert.Equal(t, model.StatusPending, r.Status)
}

func TestSubmitAlreadyBookedRollsBack(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(qGetLock).WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(qActive).WithArgs(3, 5).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectRollback()
	mock.ExpectExec(qReleaseLock).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Submit(context.Background(), alice, reservation.SubmitRequest{RoomID: 3, SlotID: 5, Purpose: "seminar"})
	require.ErrorIs(t, err, reservation.ErrAlreadyBooked)
}

func TestSubmitSlotLockTimeout(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(qGetLock).WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(0))

	_, err := svc.Submit(context.Background(), alice, reservation.SubmitRequest{RoomID: 3, SlotID: 5, Purpose: "seminar"})
	require.ErrorIs(t, err, reservation.ErrLockTimeout)
	assert.True(t, reservation.IsStoreFailure(err))
}

func TestSubmitDeadlockRollsBackAndReleases(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(qGetLock).WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(qActive).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(qInsert).WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()
	mock.ExpectExec(qReleaseLock).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Submit(context.Background(), alice, reservation.SubmitRequest{RoomID: 3, SlotID: 5, Purpose: "seminar"})
	require.ErrorIs(t, err, reservation.ErrLockTimeout)
	var me *mysql.MySQLError
	assert.True(t, errors.As(err, &me), "driver error stays in the chain")
}

func TestSubmitUnknownSlotIsValidation(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(qGetLock).WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(qActive).WithArgs(3, 999).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	const msg = "Cannot add or update a child row: a foreign key constraint fails " +
		"(`rooms`.`reservations`, CONSTRAINT `fk_res_slot` FOREIGN KEY (`slot_id`) REFERENCES `timeslots` (`id`))"
	mock.ExpectExec(qInsert).WillReturnError(&mysql.MySQLError{Number: 1452, Message: msg})
	mock.ExpectRollback()
	mock.ExpectExec(qReleaseLock).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Submit(context.Background(), alice, reservation.SubmitRequest{RoomID: 3, SlotID: 999, Purpose: "seminar"})
	require.Error(t, err)
	assert.True(t, reservation.IsValidation(err))
	assert.False(t, reservation.IsStoreFailure(err))
	var ve *reservation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "slot_id", ve.Field)
}

func TestDecideStatementSequence(t *testing.T) {
	svc, mock := newMockService(t)
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs(42).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "room_id", "slot_id", "purpose", "status", "created_at"}).
			AddRow(42, 7, 3, 5, "seminar", "pending", created))
	mock.ExpectExec(qSetStatus).WithArgs("approved", 42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qApproval).WithArgs(42, 1, "approved", "fine").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(qApprovalAt).WithArgs(9).WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	r, err := svc.Decide(context.Background(), boss, 42, "approve", "fine")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, r.Status)
}

func TestDecideNotPendingWritesNothing(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs(42).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "room_id", "slot_id", "purpose", "status", "created_at"}).
			AddRow(42, 7, 3, 5, "seminar", "rejected", time.Now()))
	mock.ExpectRollback()

	_, err := svc.Decide(context.Background(), boss, 42, "approve", "")
	require.ErrorIs(t, err, reservation.ErrNotPending)
}

func TestDecideMissingReservation(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs(42).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "room_id", "slot_id", "purpose", "status", "created_at"}))
	mock.ExpectRollback()

	_, err := svc.Decide(context.Background(), boss, 42, "reject", "")
	require.ErrorIs(t, err, reservation.ErrReservationNotFound)
}

func TestClearByStatusStatements(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE a FROM approvals a JOIN reservations r ON r.id = a.reservation_id WHERE r.status = ?`)).
		WithArgs("cancelled").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations WHERE status = ?`)).
		WithArgs("cancelled").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := svc.ClearByStatus(context.Background(), boss, "cancelled")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestClearAllDeletesChildrenFirst(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM approvals`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, svc.ClearAll(context.Background(), boss))
}

func TestClearAllFailureRollsBack(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM approvals`)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations`)).WillReturnError(errors.New("server gone away"))
	mock.ExpectRollback()

	err := svc.ClearAll(context.Background(), boss)
	require.Error(t, err)
	assert.True(t, reservation.IsStoreFailure(err))
}

func TestListByUserScansDetails(t *testing.T) {
	svc, mock := newMockService(t)
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	cols := []string{"id", "user_id", "room_id", "slot_id", "purpose", "status", "created_at",
		"name", "room_name", "slot_date", "start_time", "end_time"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC`)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 7, 3, 5, "b", "pending", created.Add(time.Hour), "Alice", "Lab A", "2026-01-06", "09:00:00", "10:00:00").
			AddRow(1, 7, 3, 4, "a", "approved", created, "Alice", "Lab A", "2026-01-05", "09:00:00", "10:00:00"))

	got, err := svc.ListByUser(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 2, got[0].ID)
	assert.Equal(t, "Lab A", got[0].RoomName)
	assert.Equal(t, "2026-01-06", got[0].SlotDate)
	assert.Equal(t, model.StatusApproved, got[1].Status)
}

func TestDetailNotFound(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.id = ?`)).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Get(context.Background(), boss, 5)
	require.ErrorIs(t, err, reservation.ErrReservationNotFound)
}
