package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ. When no broker URL is
// configured the publisher is a no-op, so event publishing never blocks
// the booking flow. Publish errors are logged and returned; callers are
// expected to ignore them.
type Publisher struct {
	url string
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	p := &Publisher{
		url: url,
		log: log.With(zap.String("component", "queue_publisher")),
	}
	if url == "" {
		p.log.Warn("no broker url configured, event publishing disabled")
	}
	return p
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	for _, name := range []string{BookingConfirmedQueue, PaymentConflictQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("declare queue %s: %w", name, err)
		}
	}
	p.ch = ch
	return ch, nil
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	if p.url == "" {
		return nil
	}

	ch, err := p.channel()
	if err != nil {
		p.log.Error("broker unavailable", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Error("publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}

func (p *Publisher) BookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	return p.publish(ctx, BookingConfirmedQueue, event)
}

func (p *Publisher) PaymentConflict(ctx context.Context, event PaymentConflictEvent) error {
	return p.publish(ctx, PaymentConflictQueue, event)
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
