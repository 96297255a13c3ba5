package eventhub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

// RedisOptions configures a RedisHub.
type RedisOptions struct {
	// Channel is the Redis pub/sub channel. Default: DefaultTopic
	Channel string

	// FailureThreshold is the number of consecutive publish failures that opens the
	// circuit. Default: 5
	FailureThreshold uint32

	// OpenTimeout is how long the circuit stays open before probing again. Default: 30s
	OpenTimeout time.Duration

	// Logger receives hub logs. Default: slog.Default()
	Logger *slog.Logger
}

// RedisHub publishes events on a Redis pub/sub channel.
type RedisHub struct {
	client  *redis.Client
	channel string
	breaker *gobreaker.CircuitBreaker[interface{}]
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewRedisHub returns a hub publishing through client. Close closes client.
func NewRedisHub(client *redis.Client, opts RedisOptions) *RedisHub {
	if opts.Channel == "" {
		opts.Channel = DefaultTopic
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	logger := opts.Logger
	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "eventhub-redis",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &RedisHub{
		client:  client,
		channel: opts.Channel,
		breaker: breaker,
		logger:  logger,
	}
}

// PublishXDMSharedState publishes a shared state event.
func (h *RedisHub) PublishXDMSharedState(ctx context.Context, owner string, state map[string]any) error {
	return h.Dispatch(ctx, NewSharedStateEvent(owner, state))
}

// Dispatch publishes e on the channel. While the circuit is open it fails fast with
// gobreaker.ErrOpenState.
func (h *RedisHub) Dispatch(ctx context.Context, e Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}

	data, err := Encode(e)
	if err != nil {
		return err
	}

	_, err = h.breaker.Execute(func() (interface{}, error) {
		return nil, h.client.Publish(ctx, h.channel, data).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", h.channel, err)
	}
	return nil
}

// BreakerState returns the circuit breaker state for monitoring.
func (h *RedisHub) BreakerState() string {
	return h.breaker.State().String()
}

// Subscribe creates a subscription to the hub channel.
func (h *RedisHub) Subscribe(ctx context.Context) (<-chan Event, error) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	pubsub := h.client.Subscribe(ctx, h.channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", h.channel, err)
	}

	events := make(chan Event)

	go func() {
		defer close(events)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				e, err := Decode([]byte(msg.Payload))
				if err != nil {
					h.logger.Warn("dropping undecodable event", "channel", msg.Channel, "error", err)
					continue
				}

				select {
				case events <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// Close closes the Redis connection.
func (h *RedisHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.client.Close()
}
