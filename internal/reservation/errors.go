package reservation

import (
	"errors"
	"fmt"
)

// Business rejections.  These are expected outcomes of a well-formed
// request and are reported to the caller as-is; they are never logged as
// errors.
var (
	// ErrAlreadyBooked is returned by Submit when the room already has a
	// pending or approved reservation for the slot.
	ErrAlreadyBooked = errors.New("already booked or pending")

	// ErrNotPending is returned by Decide when the reservation has
	// already been decided (or cancelled).  Nothing is written.
	ErrNotPending = errors.New("reservation is not pending")

	// ErrReservationNotFound is returned when the reservation id does
	// not exist, or is not visible to the caller.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrForbidden is returned when the caller's role does not allow
	// the operation.
	ErrForbidden = errors.New("forbidden")
)

// ErrLockTimeout is the cause of a StoreError when the store gave up
// waiting for a lock (advisory lock timeout, lock wait timeout or
// deadlock victim).  Retrying the request is safe.
var ErrLockTimeout = errors.New("lock wait timeout")

// ValidationError reports a malformed or missing input value.  It is
// returned before any transaction is opened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a failure of the persistent store.  The transaction
// has been rolled back by the time it is returned.  Its text carries the
// raw store error and is meant for operators, not end users.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// IsRejection reports whether err is a business rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrAlreadyBooked) ||
		errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrForbidden)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStoreFailure reports whether err is an internal store failure.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// classify leaves rejections and validation failures untouched and wraps
// everything else as a StoreError for op.
func classify(op string, err error) error {
	if err == nil || IsRejection(err) || IsValidation(err) || IsStoreFailure(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
