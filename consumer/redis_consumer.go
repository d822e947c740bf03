package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one catalog event read from the stream. Producers write the
// envelope as flat stream fields with a JSON payload.
type Event struct {
	MessageID string
	EventID   string
	EventType string
	Source    string
	CreatedAt time.Time
	Payload   json.RawMessage
	Metadata  map[string]string
}

// EventHandler processes events from the stream.
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event) error
}

// Consumer reads catalog events off a Redis Stream as part of a
// consumer group. Messages are acknowledged only after the handler
// accepts them; failed ones stay pending and are redelivered.
type Consumer struct {
	client  *redis.Client
	cfg     Config
	handler EventHandler
	logger  *slog.Logger
	done    chan struct{}
}

// NewConsumer creates a consumer. A disabled config yields an inert
// consumer whose Start is a no-op.
func NewConsumer(cfg Config, handler EventHandler, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return &Consumer{cfg: cfg, logger: logger}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		client:  redis.NewClient(opts),
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start creates the consumer group if needed and begins consuming in
// the background.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.logger.Info("consumer disabled, not starting")
		return nil
	}

	err := c.client.XGroupCreateMkStream(ctx, c.cfg.StreamKey, c.cfg.GroupName, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}

	c.logger.Info("starting consumer",
		"stream", c.cfg.StreamKey,
		"group", c.cfg.GroupName,
		"consumer", c.cfg.ConsumerName,
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("consumer context cancelled, stopping")
				return
			case <-c.done:
				c.logger.Info("consumer shutdown requested, stopping")
				return
			default:
			}
			if err := c.consumeBatch(ctx); err != nil {
				c.logger.Error("error processing events", "error", err)
				time.Sleep(time.Second) // back off on error
			}
		}
	}()
	return nil
}

// Stop gracefully stops the consumer.
func (c *Consumer) Stop() {
	if c.done != nil {
		close(c.done)
	}
	if c.client != nil {
		c.client.Close()
	}
}

// IsEnabled returns true if the consumer is enabled.
func (c *Consumer) IsEnabled() bool {
	return c.cfg.Enabled
}

// consumeBatch blocks for up to BlockTimeout waiting for new messages,
// then hands each to the handler and ACKs the accepted ones.
func (c *Consumer) consumeBatch(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.GroupName,
		Consumer: c.cfg.ConsumerName,
		Streams:  []string{c.cfg.StreamKey, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.BlockTimeout,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			event := parseEvent(message)

			if err := c.handler.HandleEvent(ctx, event); err != nil {
				c.logger.Error("failed to process event",
					"message_id", message.ID,
					"event_type", event.EventType,
					"error", err,
				)
				continue
			}

			if err := c.client.XAck(ctx, c.cfg.StreamKey, c.cfg.GroupName, message.ID).Err(); err != nil {
				c.logger.Error("failed to acknowledge message",
					"message_id", message.ID,
					"error", err,
				)
			}
		}
	}

	return nil
}

func parseEvent(message redis.XMessage) Event {
	event := Event{
		MessageID: message.ID,
		EventID:   stringField(message.Values, "event_id"),
		EventType: stringField(message.Values, "event_type"),
		Source:    stringField(message.Values, "source"),
		Metadata:  make(map[string]string),
	}
	if v := stringField(message.Values, "created_at"); v != "" {
		event.CreatedAt, _ = time.Parse(time.RFC3339, v)
	}
	if v := stringField(message.Values, "payload"); v != "" {
		event.Payload = json.RawMessage(v)
	}
	if v := stringField(message.Values, "metadata"); v != "" {
		_ = json.Unmarshal([]byte(v), &event.Metadata)
	}
	return event
}

func stringField(values map[string]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}
