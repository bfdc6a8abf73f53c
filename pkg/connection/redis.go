package connection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notisync/pkg/logger"
)

// RedisConfig holds Redis transport settings.
type RedisConfig struct {
	// ConnectionURL should be in the format "redis://:password@localhost:6379/0".
	ConnectionURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	// Channel is the pub/sub channel the commerce backend publishes push
	// events to. Hosts typically derive a per-user channel name.
	Channel string `env:"NOTIFY_REDIS_CHANNEL" envDefault:"notifications"`
	// ConnectTimeout bounds the initial readiness check.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// RedisTransport receives push events from a Redis pub/sub channel. Messages
// are JSON-encoded Events; malformed payloads are logged and skipped.
//
// Transport-level authentication is the Redis deployment's concern; the
// session credential passed to Open is not interpreted here.
type RedisTransport struct {
	client  *redis.Client
	channel string
	log     *slog.Logger
}

// RedisTransportOption configures a RedisTransport.
type RedisTransportOption func(*RedisTransport)

// WithRedisLogger sets the logger for the RedisTransport.
func WithRedisLogger(log *slog.Logger) RedisTransportOption {
	return func(t *RedisTransport) {
		if log != nil {
			t.log = log
		}
	}
}

// NewRedisTransport connects to Redis and verifies it is reachable before
// returning the transport.
func NewRedisTransport(ctx context.Context, cfg RedisConfig, opts ...RedisTransportOption) (*RedisTransport, error) {
	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisNotReady, err)
	}

	t := &RedisTransport{
		client:  client,
		channel: cfg.Channel,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Open subscribes to the configured channel. The subscription is confirmed
// with the server before Open returns, so a nil error means the push channel
// is live.
func (t *RedisTransport) Open(ctx context.Context, credential string) (<-chan Event, error) {
	pubsub := t.client.Subscribe(ctx, t.channel)

	// Wait for the subscription confirmation; this is the transport ack.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					t.log.LogAttrs(ctx, slog.LevelWarn, "Dropping malformed push message",
						logger.Component("connection"),
						slog.String("channel", msg.Channel),
						logger.Error(err),
					)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases the underlying Redis client.
func (t *RedisTransport) Close() error {
	return t.client.Close()
}
