// Package events publishes domain events (order created, payment state
// changes) to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mshop-be/internal/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	publishTimeout      = 5 * time.Second
	defaultDrainTimeout = 10 * time.Second
)

const (
	TypeOrderCreated     = "order.created"
	TypePaymentSucceeded = "payment.succeeded"
	TypePaymentFailed    = "payment.failed"
	TypePaymentRefunded  = "payment.refunded"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// New stamps an event with a fresh id and the current time. key decides the
// partition, so all events of one order stay ordered.
func New(eventType, key string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic string, events ...Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter

	// drainTimeout bounds how long Close waits for background publishes.
	drainTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		drainTimeout: defaultDrainTimeout,
	}
}

func newMessage(topic string, ev Event) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte(ev.Type)}}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(ev.Key),
		Value:   payload,
		Time:    ev.OccurredAt,
		Headers: headers,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, events ...Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := newMessage(topic, ev)
		if err != nil {
			return err
		}
		if reqID := logger.RequestIDFrom(ctx); reqID != "" {
			msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(reqID)})
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	logger.FromCtx(ctx).Debug("events published",
		zap.String("topic", topic),
		zap.Int("count", len(msgs)),
	)
	return nil
}

// publishAsync is PublishAsync tracked by the publisher, so Close can drain
// what is still in flight. Events arriving after Close are dropped.
func (p *KafkaPublisher) publishAsync(ctx context.Context, topic string, ev Event) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		logger.FromCtx(ctx).Warn("publisher closed, event dropped",
			zap.String("type", ev.Type),
			zap.String("key", ev.Key),
		)
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		publishDetached(ctx, p, topic, ev)
	}()
}

// Close stops accepting background publishes, waits up to drainTimeout for
// the ones in flight and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	timeout := p.drainTimeout
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}
	select {
	case <-done:
	case <-time.After(timeout):
		logger.L().Warn("closing publisher with events still in flight", zap.Duration("waited", timeout))
	}

	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, ...Event) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

// NewPublisher picks Kafka when brokers are configured.
func NewPublisher(brokers []string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers)
}

type asyncPublisher interface {
	publishAsync(ctx context.Context, topic string, ev Event)
}

// PublishAsync publishes on a detached context so a slow broker never holds
// up the request that produced the event. Failures are only logged.
func PublishAsync(ctx context.Context, p Publisher, topic string, ev Event) {
	if ap, ok := p.(asyncPublisher); ok {
		ap.publishAsync(ctx, topic, ev)
		return
	}
	go publishDetached(ctx, p, topic, ev)
}

func publishDetached(ctx context.Context, p Publisher, topic string, ev Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(pubCtx, topic, ev); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish event",
			zap.String("type", ev.Type),
			zap.String("key", ev.Key),
			zap.Error(err),
		)
	}
}
