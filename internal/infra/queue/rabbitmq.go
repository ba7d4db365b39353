package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"journal-post-bot/internal/domain"
)

// AMQPComposeQueue реализует очередь задач на композицию через RabbitMQ.
// Доставка подтверждается вручную: неуспешная обработка возвращает задачу
// в очередь.
type AMQPComposeQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	consumeOnce sync.Once
	deliveries  <-chan amqp.Delivery
	consumeErr  error
}

var _ domain.ComposeQueue = (*AMQPComposeQueue)(nil)

// NewAMQPComposeQueue подключается к брокеру и объявляет очередь.
func NewAMQPComposeQueue(url, queue string) (*AMQPComposeQueue, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	return &AMQPComposeQueue{conn: conn, ch: ch, queue: queue}, nil
}

// Enqueue публикует задачу в очередь.
func (q *AMQPComposeQueue) Enqueue(ctx context.Context, job domain.ComposeJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive блокирующе читает одну задачу. Возвращённая функция подтверждает
// обработку: success=false возвращает сообщение в очередь.
func (q *AMQPComposeQueue) Receive(ctx context.Context) (domain.ComposeJob, domain.ComposeAckFunc, error) {
	q.consumeOnce.Do(func() {
		q.deliveries, q.consumeErr = q.ch.Consume(q.queue, "", false, false, false, false, nil)
	})
	if q.consumeErr != nil {
		return domain.ComposeJob{}, nil, fmt.Errorf("amqp consume: %w", q.consumeErr)
	}

	for {
		select {
		case <-ctx.Done():
			return domain.ComposeJob{}, nil, ctx.Err()
		case delivery, open := <-q.deliveries:
			if !open {
				return domain.ComposeJob{}, nil, errors.New("amqp: канал доставки закрыт")
			}
			var job domain.ComposeJob
			if err := json.Unmarshal(delivery.Body, &job); err != nil {
				// Нечитаемое сообщение не возвращаем в очередь.
				_ = delivery.Nack(false, false)
				continue
			}
			ack := func(success bool) error {
				if success {
					return delivery.Ack(false)
				}
				return delivery.Nack(false, true)
			}
			return job, ack, nil
		}
	}
}

// Close закрывает канал и соединение.
func (q *AMQPComposeQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
