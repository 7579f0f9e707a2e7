package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tg-support-bot/internal/domain"
	"tg-support-bot/internal/infra/metrics"
)

// ErrQueueClosed возвращается из Publish после Close.
var ErrQueueClosed = errors.New("queue: closed")

type rabbitChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// rabbitSession соединение с брокером и канал с объявленной очередью.
type rabbitSession struct {
	conn io.Closer
	ch   rabbitChannel
}

func (s *rabbitSession) close() error {
	return errors.Join(s.ch.Close(), s.conn.Close())
}

type rabbitDialer func(amqpURL, queue string) (*rabbitSession, error)

// RabbitEventQueue публикует события в durable-очередь RabbitMQ через default exchange.
// Закрытый брокером канал переоткрывается при следующей публикации.
type RabbitEventQueue struct {
	url   string
	queue string
	dial  rabbitDialer

	mu      sync.Mutex
	session *rabbitSession
	closed  bool
}

// NewRabbitEventQueue подключается к брокеру и объявляет очередь.
func NewRabbitEventQueue(amqpURL, queue string) (*RabbitEventQueue, error) {
	return newRabbitEventQueue(amqpURL, queue, dialRabbit)
}

func newRabbitEventQueue(amqpURL, queue string, dial rabbitDialer) (*RabbitEventQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	session, err := dial(amqpURL, queue)
	if err != nil {
		return nil, err
	}
	return &RabbitEventQueue{url: amqpURL, queue: queue, dial: dial, session: session}, nil
}

func dialRabbit(amqpURL, queue string) (*rabbitSession, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &rabbitSession{conn: conn, ch: ch}, nil
}

// Publish отправляет событие как persistent JSON-сообщение.
func (q *RabbitEventQueue) Publish(ctx context.Context, event domain.SupportEvent) error {
	msg, err := newRabbitMessage(event)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ensureSession(); err != nil {
		metrics.ObserveNetworkRequest("rabbitmq", "reconnect", time.Now(), err)
		return err
	}
	start := time.Now()
	err = q.session.ch.PublishWithContext(ctx, "", q.queue, false, false, msg)
	metrics.ObserveNetworkRequest("rabbitmq", "publish", start, err)
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			q.dropSession()
		}
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// ensureSession переподключается, если канал закрыт. Вызывается под q.mu.
func (q *RabbitEventQueue) ensureSession() error {
	if q.closed {
		return ErrQueueClosed
	}
	if q.session != nil && !q.session.ch.IsClosed() {
		return nil
	}
	q.dropSession()
	session, err := q.dial(q.url, q.queue)
	if err != nil {
		return fmt.Errorf("reconnect amqp: %w", err)
	}
	q.session = session
	return nil
}

func (q *RabbitEventQueue) dropSession() {
	if q.session == nil {
		return
	}
	_ = q.session.close()
	q.session = nil
}

// Close закрывает канал и соединение.
func (q *RabbitEventQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.session == nil {
		return nil
	}
	err := q.session.close()
	q.session = nil
	return err
}

func newRabbitMessage(event domain.SupportEvent) (amqp.Publishing, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Kind),
		Body:         payload,
	}, nil
}
