package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

// DefaultChannel 是多实例之间同步事件的 Redis 频道。
const DefaultChannel = "schoolsite:events"

// RedisBroker 通过 Redis pub/sub 在多个实例之间转发事件，每个实例再投递给本地 Hub。
type RedisBroker struct {
	client  *redis.Client
	hub     *Hub
	channel string
	logger  *slog.Logger
}

// NewRedisBroker 创建 RedisBroker。
func NewRedisBroker(client *redis.Client, hub *Hub, logger *slog.Logger) *RedisBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBroker{client: client, hub: hub, channel: DefaultChannel, logger: logger}
}

// Publish 将事件写入 Redis，本实例在 Run 收到后再投递。
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(stamp(event))
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run 订阅 Redis 频道直到 ctx 结束。
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("discarding malformed realtime event", "error", err)
				continue
			}
			b.hub.Deliver(event)
		}
	}
}
