package eventhub

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed hub.
var ErrClosed = errors.New("eventhub: hub closed")

// Hub is the outbound side of the host event hub.
type Hub interface {
	// PublishXDMSharedState publishes a new XDM shared state for owner.
	PublishXDMSharedState(ctx context.Context, owner string, state map[string]any) error

	// Dispatch sends an event to the host.
	Dispatch(ctx context.Context, e Event) error

	// Close releases the hub.
	Close() error
}

// Subscriber is implemented by hubs that deliver the event stream back to listeners.
// The returned channel is closed when ctx is done or the hub is closed.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}
