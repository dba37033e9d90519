package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const PublicationQueue = "linkmarket.publication"

// AMQPDispatcher publishes jobs to a durable RabbitMQ queue.
type AMQPDispatcher struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPDispatcher(url string) (*AMQPDispatcher, error) {
	d := &AMQPDispatcher{url: url}
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *AMQPDispatcher) connect() error {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(PublicationQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("queue declare: %w", err)
	}
	d.conn, d.ch = conn, ch
	return nil
}

func (d *AMQPDispatcher) Dispatch(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil || d.conn.IsClosed() {
		if err := d.connect(); err != nil {
			return err
		}
	}
	if err := d.ch.PublishWithContext(ctx, "", PublicationQueue, false, false, pub); err != nil {
		zap.L().Error("rabbitmq: publish failed", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}

func (d *AMQPDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	_ = d.ch.Close()
	return d.conn.Close()
}

// Consume reads jobs from the publication queue until ctx is done, reconnecting
// with backoff when the broker goes away. Failed jobs are rejected without requeue.
func Consume(ctx context.Context, url string, prefetch int, handler Handler) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			zap.L().Warn("publication consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, prefetch, handler)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		zap.L().Warn("publication consumer: loop ended, reconnecting", zap.Error(err))
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, prefetch int, handler Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		zap.L().Warn("publication consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(PublicationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(PublicationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			handleDelivery(ctx, d, handler)
		}
	}
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		zap.L().Error("publication consumer: bad message", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, job); err != nil {
		zap.L().Error("publication consumer: job failed", zap.String("job_id", job.ID), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
