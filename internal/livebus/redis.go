package livebus

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRelay connects a Bus to a Redis pub/sub channel so independent
// processes see each other's content events.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

// NewRedisRelay dials Redis and verifies connectivity.
func NewRedisRelay(addr, channel string) (*RedisRelay, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisRelay{client: client, channel: channel}, nil
}

// Publish pushes an envelope onto the channel.
func (r *RedisRelay) Publish(ctx context.Context, body []byte) error {
	return r.client.Publish(ctx, r.channel, body).Err()
}

// Listen subscribes and forwards inbound envelopes to the bus until the
// context is canceled. go-redis resubscribes internally on connection
// loss, so a single subscription per process is enough.
func (r *RedisRelay) Listen(ctx context.Context, bus *Bus) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				log.Printf("live bus: redis subscription closed")
				return
			}
			bus.Receive([]byte(msg.Payload))
		}
	}
}

// Close releases the client.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
