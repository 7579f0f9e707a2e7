package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tg-support-bot/internal/domain"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, domain.SupportEvent) error {
	f.calls++
	return errors.New("broker down")
}

func TestBestEffortSwallowsErrors(t *testing.T) {
	var buf bytes.Buffer
	next := &failingPublisher{}
	p := NewBestEffort(next, "redis", zerolog.New(&buf))
	event := domain.NewSupportEvent(domain.EventHelpful, "", 1, 2)
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected 1 call, got %d", next.calls)
	}
	if !strings.Contains(buf.String(), "broker down") {
		t.Fatalf("expected error in log, got %q", buf.String())
	}
}

func TestNewRabbitMessage(t *testing.T) {
	event := domain.NewSupportEvent(domain.EventMatched, "login", 10, 20)
	msg, err := newRabbitMessage(event)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("expected persistent delivery")
	}
	if msg.MessageId != event.ID.String() || msg.Type != "matched" {
		t.Fatalf("unexpected headers %+v", msg)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded["category"] != "login" || decoded["kind"] != "matched" {
		t.Fatalf("unexpected body %s", msg.Body)
	}
}

func TestNewRabbitEventQueueValidatesArgs(t *testing.T) {
	if _, err := NewRabbitEventQueue("", "q"); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewRabbitEventQueue("amqp://localhost", ""); err == nil {
		t.Fatal("expected error for empty queue")
	}
}

type fakePusher struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakePusher) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.key = key
	f.values = append(f.values, values...)
	return redis.NewIntResult(int64(len(f.values)), nil)
}

func TestRedisEventQueuePublish(t *testing.T) {
	rdb := &fakePusher{}
	q := NewRedisEventQueue(rdb, "support_events")
	event := domain.NewSupportEvent(domain.EventUnmatched, "", 10, 20)
	if err := q.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if rdb.key != "support_events" || len(rdb.values) != 1 {
		t.Fatalf("unexpected push %q %v", rdb.key, rdb.values)
	}
	payload, ok := rdb.values[0].([]byte)
	if !ok {
		t.Fatalf("expected []byte payload, got %T", rdb.values[0])
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["kind"] != "unmatched" || decoded["id"] != event.ID.String() {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestRedisEventQueuePublishError(t *testing.T) {
	q := NewRedisEventQueue(&fakePusher{err: errors.New("connection refused")}, "support_events")
	err := q.Publish(context.Background(), domain.NewSupportEvent(domain.EventHelpful, "", 1, 2))
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected push error, got %v", err)
	}
}

type fakeChannel struct {
	closed    bool
	published []amqp.Publishing
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	if c.closed {
		return amqp.ErrClosed
	}
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type fakeBroker struct {
	dials    int
	err      error
	channels []*fakeChannel
}

func (b *fakeBroker) dial(string, string) (*rabbitSession, error) {
	b.dials++
	if b.err != nil {
		return nil, b.err
	}
	ch := &fakeChannel{}
	b.channels = append(b.channels, ch)
	return &rabbitSession{conn: nopCloser{}, ch: ch}, nil
}

func TestRabbitEventQueueReopensClosedChannel(t *testing.T) {
	broker := &fakeBroker{}
	q, err := newRabbitEventQueue("amqp://localhost", "support_events", broker.dial)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	event := domain.NewSupportEvent(domain.EventMatched, "payment", 1, 2)
	if err := q.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	broker.channels[0].closed = true
	if err := q.Publish(context.Background(), event); err != nil {
		t.Fatalf("expected publish after reconnect, got %v", err)
	}
	if broker.dials != 2 {
		t.Fatalf("expected 2 dials, got %d", broker.dials)
	}
	if len(broker.channels[1].published) != 1 {
		t.Fatalf("expected message on the new channel")
	}
}

func TestRabbitEventQueueRetriesDialOnNextPublish(t *testing.T) {
	broker := &fakeBroker{}
	q, err := newRabbitEventQueue("amqp://localhost", "support_events", broker.dial)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	event := domain.NewSupportEvent(domain.EventHelpful, "", 1, 2)

	broker.channels[0].closed = true
	broker.err = errors.New("connection refused")
	if err := q.Publish(context.Background(), event); err == nil {
		t.Fatal("expected error while broker is down")
	}
	broker.err = nil
	if err := q.Publish(context.Background(), event); err != nil {
		t.Fatalf("expected publish once broker is back, got %v", err)
	}
	if broker.dials != 3 {
		t.Fatalf("expected 3 dials, got %d", broker.dials)
	}
}

func TestRabbitEventQueueClosed(t *testing.T) {
	broker := &fakeBroker{}
	q, err := newRabbitEventQueue("amqp://localhost", "support_events", broker.dial)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error %v", err)
	}
	err = q.Publish(context.Background(), domain.NewSupportEvent(domain.EventHelpful, "", 1, 2))
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	if broker.dials != 1 {
		t.Fatalf("closed queue must not redial, got %d dials", broker.dials)
	}
}
