// Package policy decides which rooms a caller may book.
package policy

import (
	"errors"

	"github.com/iliyamo/room-reservation/internal/model"
)

// DefaultStudentMaxCapacity is the largest room a student may book.
const DefaultStudentMaxCapacity = 10

// ErrCapacityExceeded is returned by CanBook when the room is too large
// for the caller's role.
var ErrCapacityExceeded = errors.New("room capacity exceeds what your role may book")

// Policy holds the role rules.  The zero value applies the default
// student ceiling.
type Policy struct {
	StudentMaxCapacity uint32
}

// New returns a Policy with the given student ceiling; zero or negative
// values fall back to the default.
func New(studentMax int) Policy {
	if studentMax <= 0 {
		studentMax = DefaultStudentMaxCapacity
	}
	return Policy{StudentMaxCapacity: uint32(studentMax)}
}

func (p Policy) ceiling() uint32 {
	if p.StudentMaxCapacity == 0 {
		return DefaultStudentMaxCapacity
	}
	return p.StudentMaxCapacity
}

// CanBook reports whether who may book room.
func (p Policy) CanBook(who model.Identity, room model.Room) error {
	if who.Role == model.RoleStudent && room.Capacity > p.ceiling() {
		return ErrCapacityExceeded
	}
	return nil
}

// BookableRooms filters rooms down to those who may book, keeping order.
func (p Policy) BookableRooms(who model.Identity, rooms []model.Room) []model.Room {
	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if p.CanBook(who, r) == nil {
			out = append(out, r)
		}
	}
	return out
}
