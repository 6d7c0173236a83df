// Package repository holds the MySQL data access for rooms, timeslots,
// users, reservations and approvals.  Sentinel errors below let the
// handlers tell "not found" and "conflict" apart from store failures.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/room-reservation/internal/reservation"
)

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as a duplicate unique key or deleting a room
// that reservations still reference.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the store reacts to.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// lockErr marks lock wait timeouts and deadlocks with
// reservation.ErrLockTimeout, keeping the driver error in the chain.
func lockErr(err error) error {
	switch mysqlCode(err) {
	case errLockWaitTimeout, errDeadlock:
		return fmt.Errorf("%w: %w", reservation.ErrLockTimeout, err)
	}
	return err
}

// writeErr maps constraint violations on insert/update/delete to
// ErrConflict.  A write pointing at a row that does not exist (a room or
// slot deleted after the caller looked it up) is a validation failure
// on the offending column.
func writeErr(err error) error {
	switch mysqlCode(err) {
	case errDupEntry, errRowIsReferenced:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errNoReferencedRow:
		return &reservation.ValidationError{Field: fkColumn(err), Reason: "does not exist"}
	}
	return lockErr(err)
}

// fkColumn extracts the child column from a 1452 message such as
// "... CONSTRAINT `fk_res_slot` FOREIGN KEY (`slot_id`) REFERENCES ...".
func fkColumn(err error) string {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return "reference"
	}
	_, rest, ok := strings.Cut(me.Message, "FOREIGN KEY (`")
	if !ok {
		return "reference"
	}
	col, _, ok := strings.Cut(rest, "`")
	if !ok || col == "" {
		return "reference"
	}
	return col
}
