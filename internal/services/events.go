package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
)

// BoardEvent describes one committed board mutation.
type BoardEvent struct {
	Type       models.ActivityAction `json:"type"`
	OwnerID    string                `json:"owner_id"`
	TaskID     string                `json:"task_id,omitempty"`
	FromStatus models.TaskStatus     `json:"from_status,omitempty"`
	ToStatus   models.TaskStatus     `json:"to_status,omitempty"`
	Data       any                   `json:"data,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// EventPublisher fans board events out to other consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event BoardEvent) error
}

// NoopEventPublisher drops every event.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, BoardEvent) error { return nil }

// RedisEventPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisEventPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisEventPublisher creates a publisher writing to channel.
func NewRedisEventPublisher(client *redis.Client, channel string) *RedisEventPublisher {
	if client == nil {
		panic("services.NewRedisEventPublisher: redis client is nil")
	}
	return &RedisEventPublisher{client: client, channel: channel}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event BoardEvent) error {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode board event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish board event: %w", err)
	}
	return nil
}
