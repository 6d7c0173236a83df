package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrRoomNotFound is returned when a room lookup, update or delete
// matches no row.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo reads and writes the rooms table.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, room_name, capacity, room_type, location, created_at`

func scanRoom(sc scanner) (model.Room, error) {
	var r model.Room
	var typ, loc sql.NullString
	err := sc.Scan(&r.ID, &r.Name, &r.Capacity, &typ, &loc, &r.CreatedAt)
	r.Type, r.Location = typ.String, loc.String
	return r, err
}

// Create inserts room and reads back the stored row.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (room_name, capacity, room_type, location) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Capacity, nullable(room.Type), nullable(room.Location))
	if err != nil {
		return fmt.Errorf("repository.RoomRepo.Create: %w", writeErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*room = *stored
	return nil
}

// GetByID returns ErrRoomNotFound when no row matches.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY room_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Update overwrites the editable fields of room.ID.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	const q = `UPDATE rooms SET room_name = ?, capacity = ?, room_type = ?, location = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Capacity, nullable(room.Type), nullable(room.Location), room.ID)
	if err != nil {
		return fmt.Errorf("repository.RoomRepo.Update: %w", writeErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room.  It fails with ErrConflict while reservations
// still reference the room.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("repository.RoomRepo.Delete: %w", writeErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
