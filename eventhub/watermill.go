package eventhub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultTopic is the topic (or Redis channel) used when none is configured.
const DefaultTopic = "edgeidentity.events"

// WatermillOptions configures a WatermillHub.
type WatermillOptions struct {
	// Topic is the Watermill topic carrying all events. Default: DefaultTopic
	Topic string

	// OutputChannelBuffer is the per-subscriber buffer size. Default: 64
	OutputChannelBuffer int64

	// Logger receives Watermill and hub logs. Default: slog.Default()
	Logger *slog.Logger
}

// WatermillHub publishes events on an in-process Watermill GoChannel.
type WatermillHub struct {
	pubsub *gochannel.GoChannel
	topic  string
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewWatermillHub creates a hub backed by a new GoChannel.
func NewWatermillHub(opts WatermillOptions) *WatermillHub {
	if opts.Topic == "" {
		opts.Topic = DefaultTopic
	}
	if opts.OutputChannelBuffer <= 0 {
		opts.OutputChannelBuffer = 64
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: opts.OutputChannelBuffer,
	}, watermill.NewSlogLogger(opts.Logger))

	return &WatermillHub{
		pubsub: pubsub,
		topic:  opts.Topic,
		logger: opts.Logger,
	}
}

// PublishXDMSharedState publishes a shared state event.
func (h *WatermillHub) PublishXDMSharedState(ctx context.Context, owner string, state map[string]any) error {
	return h.Dispatch(ctx, NewSharedStateEvent(owner, state))
}

// Dispatch publishes e on the hub topic.
func (h *WatermillHub) Dispatch(ctx context.Context, e Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}

	msg, err := toMessage(e)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := h.pubsub.Publish(h.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.ID, err)
	}
	return nil
}

// Subscribe returns the stream of events published on the hub topic from now on.
func (h *WatermillHub) Subscribe(ctx context.Context) (<-chan Event, error) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	messages, err := h.pubsub.Subscribe(ctx, h.topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", h.topic, err)
	}

	events := make(chan Event)

	go func() {
		defer close(events)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				e, err := Decode(msg.Payload)
				msg.Ack()
				if err != nil {
					h.logger.Warn("dropping undecodable event", "uuid", msg.UUID, "error", err)
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

// Close shuts the GoChannel down and ends all subscriptions.
func (h *WatermillHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.pubsub.Close()
}

// toMessage wraps an encoded event in a Watermill message keyed by the event id.
func toMessage(e Event) (*message.Message, error) {
	payload, err := Encode(e)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(e.ID, payload)
	msg.Metadata.Set("type", e.Type)
	msg.Metadata.Set("source", e.Source)
	return msg, nil
}
