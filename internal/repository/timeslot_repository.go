package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrTimeslotNotFound is returned when no timeslot matches the id.
var ErrTimeslotNotFound = errors.New("timeslot not found")

// TimeslotRepo reads and writes the timeslots table.  Dates and times
// are exchanged as strings (YYYY-MM-DD, HH:MM:SS) so the DSN's
// parseTime setting does not turn DATE columns into time.Time.
type TimeslotRepo struct {
	db *sql.DB
}

func NewTimeslotRepo(db *sql.DB) *TimeslotRepo { return &TimeslotRepo{db: db} }

const timeslotColumns = `id, DATE_FORMAT(slot_date, '%Y-%m-%d'), TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s')`

func scanTimeslot(sc scanner) (model.Timeslot, error) {
	var t model.Timeslot
	err := sc.Scan(&t.ID, &t.Date, &t.StartTime, &t.EndTime)
	return t, err
}

func (r *TimeslotRepo) Create(ctx context.Context, t *model.Timeslot) error {
	const q = `INSERT INTO timeslots (slot_date, start_time, end_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Date, t.StartTime, t.EndTime)
	if err != nil {
		return fmt.Errorf("repository.TimeslotRepo.Create: %w", writeErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TimeslotRepo) GetByID(ctx context.Context, id uint64) (*model.Timeslot, error) {
	t, err := scanTimeslot(r.db.QueryRowContext(ctx, `SELECT `+timeslotColumns+` FROM timeslots WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeslotNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns every timeslot in chronological order.
func (r *TimeslotRepo) List(ctx context.Context) ([]model.Timeslot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+timeslotColumns+` FROM timeslots ORDER BY slot_date, start_time, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Timeslot{}
	for rows.Next() {
		t, err := scanTimeslot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TimeslotRepo) Update(ctx context.Context, t *model.Timeslot) error {
	const q = `UPDATE timeslots SET slot_date = ?, start_time = ?, end_time = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Date, t.StartTime, t.EndTime, t.ID)
	if err != nil {
		return fmt.Errorf("repository.TimeslotRepo.Update: %w", writeErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}

// Delete fails with ErrConflict while reservations reference the slot.
func (r *TimeslotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeslots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("repository.TimeslotRepo.Delete: %w", writeErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}
