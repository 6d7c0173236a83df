package reservation_test

import (
	"io"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

var (
	student = model.Identity{UserID: 7, Role: model.RoleStudent}
	faculty = model.Identity{UserID: 8, Role: model.RoleFaculty}
	admin   = model.Identity{UserID: 1, Role: model.RoleAdmin}
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newService(t *testing.T) (*reservation.Service, *memStore, *recorder) {
	t.Helper()
	store := newMemStore()
	rec := &recorder{}
	svc := reservation.New(store, quietLogger(),
		reservation.WithEvents(rec),
		reservation.WithClock(func() time.Time { return time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) }),
	)
	return svc, store, rec
}

func purpose() string { return gofakeit.Sentence(6) }

func submitReq(room, slot uint64) reservation.SubmitRequest {
	return reservation.SubmitRequest{RoomID: room, SlotID: slot, Purpose: purpose()}
}
