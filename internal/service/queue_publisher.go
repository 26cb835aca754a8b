package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/queue"
)

// QueuePublisher publishes booking events to RabbitMQ.  Each publish
// opens its own connection so a broker outage never leaves a broken
// connection behind; booking volume is low enough for that.
type QueuePublisher struct {
	url     string
	timeout time.Duration
	now     func() time.Time
	log     *logrus.Entry
}

// NewQueuePublisher returns a publisher for the broker at url.
func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{
		url:     url,
		timeout: 5 * time.Second,
		now:     time.Now,
		log:     logrus.WithField("component", "queue-publisher"),
	}
}

// PublishBookingConfirmed sends a BookingConfirmedEvent to the
// booking.confirmed queue.
func (p *QueuePublisher) PublishBookingConfirmed(ctx context.Context, rec model.BookingRecord) error {
	return p.publish(ctx, queue.BookingConfirmedQueue, queue.NewBookingConfirmedEvent(rec))
}

// PublishBookingCancelled sends a BookingCancelledEvent to the
// booking.cancelled queue.
func (p *QueuePublisher) PublishBookingCancelled(ctx context.Context, rec model.BookingRecord) error {
	return p.publish(ctx, queue.BookingCancelledQueue, queue.NewBookingCancelledEvent(rec, p.now()))
}

func (p *QueuePublisher) publish(ctx context.Context, queueName string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.log.WithField("queue", queueName).Debug("event published")
	return nil
}
