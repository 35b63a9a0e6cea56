package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type RelinkMessage struct {
	RoomID  int64
	Reason  string
	TraceID *string
	Attempt int
}

type Producer interface {
	Enqueue(ctx context.Context, msg RelinkMessage) (string, error)
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Enqueue appends a relink job and returns its stream id.
func (p *redisProducer) Enqueue(ctx context.Context, msg RelinkMessage) (string, error) {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type": string(TaskTypeRelink),
		"room_id":   msg.RoomID,
		"attempt":   attempt,
	}
	if msg.Reason != "" {
		fields["reason"] = msg.Reason
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue relink: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued relink job", "room_id", msg.RoomID, "message_id", id, "attempt", attempt)
	return id, nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
