package eventhub

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event types.
const (
	TypeEdgeIdentity    = "com.adobe.eventType.edgeIdentity"
	TypeGenericIdentity = "com.adobe.eventType.generic.identity"
	TypeIdentity        = "com.adobe.eventType.identity"
	TypeHub             = "com.adobe.eventType.hub"
)

// Event sources.
const (
	SourceUpdateIdentity   = "com.adobe.eventSource.updateIdentity"
	SourceRemoveIdentity   = "com.adobe.eventSource.removeIdentity"
	SourceRequestIdentity  = "com.adobe.eventSource.requestIdentity"
	SourceResponseIdentity = "com.adobe.eventSource.responseIdentity"
	SourceRequestReset     = "com.adobe.eventSource.requestReset"
	SourceResetComplete    = "com.adobe.eventSource.resetComplete"
	SourceRequestContent   = "com.adobe.eventSource.requestContent"
	SourceSharedState      = "com.adobe.eventSource.sharedState"
	SourceBooted           = "com.adobe.eventSource.booted"
)

// Data keys used by events.
const (
	// KeyStateOwner names the extension that owns a shared state.
	KeyStateOwner = "stateowner"

	// KeyState holds a shared state snapshot.
	KeyState = "state"

	// KeyECID carries an ECID in legacy identity and response events.
	KeyECID = "mid"

	// KeyAdID carries the advertising identifier.
	KeyAdID = "advertisingidentifier"

	// KeyURLVariables requests URL variables in a get-identifiers request and carries
	// them in the response.
	KeyURLVariables = "urlvariables"

	// KeyExtensionName and KeyExtensionVersion describe a registered extension.
	KeyExtensionName    = "extensionname"
	KeyExtensionVersion = "version"
)

// Event is a message exchanged with the host event hub.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	// ResponseID is the id of the request event this event answers.
	ResponseID string `json:"responseId,omitempty"`
}

// NewEvent returns an event with a fresh id and the current time.
func NewEvent(name, eventType, source string, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseEvent returns an event answering request.
func NewResponseEvent(name, eventType, source string, data map[string]any, request Event) Event {
	e := NewEvent(name, eventType, source, data)
	e.ResponseID = request.ID
	return e
}

// NewSharedStateEvent returns the event announcing a new shared state for owner.
func NewSharedStateEvent(owner string, state map[string]any) Event {
	return NewEvent("Shared State Change", TypeHub, SourceSharedState, map[string]any{
		KeyStateOwner: owner,
		KeyState:      state,
	})
}

// Is reports whether the event has the given type and source.
func (e Event) Is(eventType, source string) bool {
	return e.Type == eventType && e.Source == source
}

// String returns a short description for logs.
func (e Event) String() string {
	return fmt.Sprintf("%s (%s, %s, %s)", e.Name, e.Type, e.Source, e.ID)
}

// Encode serializes an event to JSON.
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Decode parses an event from JSON.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if e.Type == "" || e.Source == "" {
		return Event{}, fmt.Errorf("event is missing type or source")
	}
	return e, nil
}
