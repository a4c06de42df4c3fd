package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "swipehire:state-changed"

// RedisBridge fans signals out across processes. While Run is relaying,
// Publish goes to the Redis channel and Run delivers everything received on
// it into the local hub, including signals this process published itself.
// Otherwise Publish goes straight to the local hub.
type RedisBridge struct {
	client   *redis.Client
	channel  string
	hub      *Hub
	logger   *slog.Logger
	relaying atomic.Bool
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *slog.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBridge{client: client, channel: channel, hub: hub, logger: logger}
}

func (b *RedisBridge) Publish(ctx context.Context, signal Signal) error {
	if !b.relaying.Load() {
		return b.hub.Publish(ctx, signal)
	}
	payload, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Relaying reports whether Run is subscribed and relaying.
func (b *RedisBridge) Relaying() bool {
	return b.relaying.Load()
}

// Run blocks until ctx is cancelled or the subscription channel closes.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			b.logger.Warn("redis unsubscribe failed", slog.String("error", err.Error()))
		}
	}()
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	b.relaying.Store(true)
	defer b.relaying.Store(false)
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var signal Signal
			if err := json.Unmarshal([]byte(msg.Payload), &signal); err != nil || signal.ActorID.IsZero() {
				b.logger.Warn("dropping malformed signal", slog.String("payload", msg.Payload))
				continue
			}
			if err := b.hub.Publish(ctx, signal); err != nil {
				return nil
			}
		}
	}
}
