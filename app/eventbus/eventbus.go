// Package eventbus provides the watermill publisher/subscriber pair used by
// the asynchronous parts of the bot. Production runs on NATS JetStream; tests
// and single-process deployments use an in-memory gochannel bus.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus publishes and subscribes watermill messages by topic.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects the transport. An empty NATSURL means in-memory.
type Config struct {
	NATSURL    string
	StreamName string
	Subjects   []string
}

// New creates the bus described by cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	if cfg.NATSURL == "" {
		logger.WarnContext(ctx, "NATS URL not configured, using in-memory event bus")
		return NewInMemory(logger), nil
	}
	return NewNATS(ctx, cfg, logger)
}

// NewInMemory creates a gochannel bus. Messages published before a
// subscriber exists are dropped.
func NewInMemory(logger *slog.Logger) EventBus {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))
}

type natsBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	conn       *nc.Conn
	logger     *slog.Logger
}

// NewNATS connects to NATS, makes sure the JetStream stream exists and
// returns a watermill bus on top of it.
func NewNATS(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	conn, err := nc.Connect(cfg.NATSURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	if cfg.StreamName != "" {
		if err := EnsureStream(ctx, js, cfg.StreamName, cfg.Subjects, logger); err != nil {
			conn.Close()
			return nil, err
		}
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: false,
	}

	publisher, err := nats.NewPublisher(nats.PublisherConfig{
		URL:               cfg.NATSURL,
		NatsOptions:       options,
		Marshaler:         marshaler,
		JetStream:         jsConfig,
		SubjectCalculator: nats.DefaultSubjectCalculator,
	}, wmLogger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:               cfg.NATSURL,
		NatsOptions:       options,
		Unmarshaler:       marshaler,
		JetStream:         jsConfig,
		SubjectCalculator: nats.DefaultSubjectCalculator,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &natsBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

func (b *natsBus) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		b.logger.Debug("Publishing message",
			slog.String("topic", topic),
			slog.String("message_id", msg.UUID),
			slog.String("correlation_id", middleware.MessageCorrelationID(msg)),
		)
	}
	if err := b.publisher.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	b.logger.InfoContext(ctx, "Subscription started", slog.String("topic", topic))
	return msgs, nil
}

// Close closes all NATS and Watermill resources.
func (b *natsBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		b.logger.Error("Error closing NATS publisher", slog.Any("error", err))
	}
	if err := b.subscriber.Close(); err != nil {
		b.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
	}
	b.conn.Close()
	return nil
}

// NewMessage encodes payload as JSON and tags it with correlationID.
func NewMessage(correlationID string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}
	return msg, nil
}
