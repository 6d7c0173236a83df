package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AuditConsumer appends one line per ReservationEvent to w.  It keeps
// reconnecting to the broker with backoff until its context is done.
type AuditConsumer struct {
	url   string
	queue string
	w     io.Writer
	log   logrus.FieldLogger
}

func NewAuditConsumer(url, queue string, w io.Writer, log logrus.FieldLogger) *AuditConsumer {
	return &AuditConsumer{url: url, queue: queue, w: w, log: log}
}

// Run blocks until ctx is cancelled.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).WithField("retry_in", backoff.String()).Warn("audit consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("audit consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("audit consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.log.WithError(err).Error("audit consumer: handle message failed")
			_ = d.Nack(false, false) // drop; requeueing a bad payload would loop
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *AuditConsumer) handle(body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if _, err := io.WriteString(c.w, AuditLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// AuditLine renders ev as a single human-readable line.
func AuditLine(ev ReservationEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", ev.OccurredAt, ev.Type)
	field := func(k string, v any) { fmt.Fprintf(&b, " | %s=%v", k, v) }
	if ev.ReservationID != 0 {
		field("reservation_id", ev.ReservationID)
	}
	if ev.UserID != 0 {
		field("user_id", ev.UserID)
	}
	if ev.RoomID != 0 {
		field("room_id", ev.RoomID)
		field("slot_id", ev.SlotID)
	}
	if ev.Status != "" {
		field("status", ev.Status)
	}
	if ev.AdminID != 0 {
		field("admin_id", ev.AdminID)
	}
	if ev.Type == EventCleared {
		field("count", ev.Count)
	}
	if ev.Notes != "" {
		field("notes", fmt.Sprintf("%q", ev.Notes))
	}
	b.WriteByte('\n')
	return b.String()
}
