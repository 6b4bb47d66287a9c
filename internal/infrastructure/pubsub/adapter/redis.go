package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/port"
)

// RedisRelay publishes envelopes on a single Redis Pub/Sub channel.
type RedisRelay struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, log zerolog.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, log: log}
}

var _ port.Relay = (*RedisRelay)(nil)

func (r *RedisRelay) Publish(ctx context.Context, env port.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("relay: encode: %w", err)
	}
	return r.client.Publish(ctx, r.channel, b).Err()
}

func (r *RedisRelay) Subscribe(ctx context.Context, fn func(port.Envelope)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// wait for the subscription confirmation so no publish after return is missed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("relay: subscribe %s: %w", r.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env port.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Warn().Err(err).Str("channel", r.channel).Msg("relay: dropping malformed envelope")
				continue
			}
			fn(env)
		}
	}
}

// Close is a no-op; the shared client is owned by the caller.
func (r *RedisRelay) Close() error { return nil }
