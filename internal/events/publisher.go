// Package events publishes lifecycle events to Redis Streams so other
// services can react to imports without polling the database.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/logger"
)

const (
	StreamDocumentImported = "docbridge:document.imported"
	StreamDocumentDeleted  = "docbridge:document.deleted"
	StreamMeetingCreated   = "docbridge:meeting.created"

	maxStreamLen   = 10000
	publishTimeout = 5 * time.Second
)

// Publisher writes events to Redis Streams. A nil client disables
// publishing entirely, so callers never need to branch on config.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

// NewPublisher connects to Redis when events are enabled. Returns a
// disabled publisher otherwise.
func NewPublisher(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		log.Info("event publishing disabled")
		return &Publisher{log: log}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info("event publisher connected", logger.String("address", cfg.Address))
	return &Publisher{client: client, log: log}, nil
}

// Publish appends an event to a stream. Failures are logged, not
// returned: event delivery must never fail an import.
func (p *Publisher) Publish(ctx context.Context, stream string, payload map[string]any) {
	if p.client == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal event", logger.String("stream", stream), logger.Error(err))
		return
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]any{
			"payload":   string(data),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		p.log.Error("publish event", logger.String("stream", stream), logger.Error(err))
	}
}

// PublishAsync publishes off the request path.
func (p *Publisher) PublishAsync(stream string, payload map[string]any) {
	if p.client == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		p.Publish(ctx, stream, payload)
	}()
}

func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
