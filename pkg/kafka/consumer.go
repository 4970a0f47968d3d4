package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// Retry bounds for a failing handler.
const (
	retryInitialInterval = 200 * time.Millisecond
	retryMaxInterval     = 30 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Config() kafkago.ReaderConfig
	Close() error
}

// Consumer reads a topic as part of a consumer group and hands every message
// to a Handler. A failing message is retried in place with exponential
// backoff; nothing later on the partition is fetched or committed until it
// succeeds.
type Consumer struct {
	reader     messageReader
	handler    Handler
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// NewConsumer creates a Consumer for topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka: consumer group is required")
	}

	dialer, err := cfg.dialer()
	if err != nil {
		return nil, err
	}

	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024,
	}
	if dialer != nil {
		readerCfg.Dialer = dialer
	}

	return &Consumer{
		reader:     kafkago.NewReader(readerCfg),
		handler:    handler,
		logger:     logger,
		newBackOff: defaultBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0
	return b
}

// Start consumes until ctx is canceled. A message whose handler is still
// failing at cancellation is left uncommitted and redelivered to the group.
func (c *Consumer) Start(ctx context.Context) error {
	cfg := c.reader.Config()
	c.logger.Info("consumer starting", "topic", cfg.Topic, "group", cfg.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping", "topic", cfg.Topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping with uncommitted message",
					"topic", m.Topic,
					"partition", m.Partition,
					"offset", m.Offset,
				)
				return nil
			}
			return fmt.Errorf("handling message at offset %d: %w", m.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds or ctx is done.
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) error {
	msg := toMessage(m)
	op := func() error { return c.handler(ctx, msg) }
	notify := func(err error, wait time.Duration) {
		c.logger.Error("handler error, retrying",
			"topic", m.Topic,
			"partition", m.Partition,
			"offset", m.Offset,
			"retry_in", wait,
			"error", err,
		)
	}
	return backoff.RetryNotify(op, backoff.WithContext(c.newBackOff(), ctx), notify)
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}

func toMessage(m kafkago.Message) Message {
	msg := Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
