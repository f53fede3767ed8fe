package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AuditConsumer drains the booking.confirmed queue into the structured log,
// giving an append-only audit trail of confirmed bookings independent of
// the database. It reconnects with capped exponential backoff and never
// requeues a message it cannot parse.
type AuditConsumer struct {
	url string
	log *zap.Logger
}

func NewAuditConsumer(url string, log *zap.Logger) *AuditConsumer {
	return &AuditConsumer{
		url: url,
		log: log.With(zap.String("component", "audit_consumer")),
	}
}

// Run blocks until ctx is done. With no broker URL it returns immediately.
func (c *AuditConsumer) Run(ctx context.Context) {
	if c.url == "" {
		c.log.Warn("no broker url configured, audit consumer disabled")
		return
	}

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("broker dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consume(ctx, conn); err != nil && ctx.Err() == nil {
			c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		}
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	deliveries, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, open := <-deliveries:
			if !open {
				return errors.New("deliveries channel closed")
			}
			if err := c.record(delivery.Body); err != nil {
				c.log.Error("bad audit message", zap.Error(err))
				_ = delivery.Nack(false, false)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (c *AuditConsumer) record(body []byte) error {
	var event BookingConfirmedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	c.log.Info("booking confirmed",
		zap.String("booking_id", event.BookingID),
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.String("show_id", event.ShowID),
		zap.String("movie", event.MovieTitle),
		zap.String("seats", strings.Join(event.Seats, ",")),
		zap.Float64("total_amount", event.TotalAmount),
		zap.String("confirmed_at", event.ConfirmedAt))
	return nil
}
