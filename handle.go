package edgeidentity

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/edgeidentity/eventhub"
	"github.com/zero-day-ai/edgeidentity/identity"
)

// Handle routes one hub event to the matching request:
//
//   - edge identity updateIdentity / removeIdentity: UpdateFromXDM / RemoveFromXDM
//   - edge identity requestIdentity: a responseIdentity event carrying the identity
//     map, or the URL variables when the request sets "urlvariables" to true
//   - edge or generic identity requestReset: ResetIdentities
//   - generic identity requestContent with "advertisingidentifier": SetAdvertisingIdentifier
//   - hub sharedState owned by the legacy identity extension: UpdateLegacyECID
//
// Other events are ignored.
func (e *Extension) Handle(ctx context.Context, ev eventhub.Event) error {
	if !e.Booted() {
		return NewStateError("Extension.Handle", ErrNotBooted)
	}

	switch {
	case ev.Is(eventhub.TypeEdgeIdentity, eventhub.SourceUpdateIdentity):
		return e.UpdateFromXDM(ctx, ev.Data)

	case ev.Is(eventhub.TypeEdgeIdentity, eventhub.SourceRemoveIdentity):
		return e.RemoveFromXDM(ctx, ev.Data)

	case ev.Is(eventhub.TypeEdgeIdentity, eventhub.SourceRequestIdentity):
		return e.respondIdentity(ctx, ev)

	case ev.Is(eventhub.TypeEdgeIdentity, eventhub.SourceRequestReset),
		ev.Is(eventhub.TypeGenericIdentity, eventhub.SourceRequestReset):
		return e.ResetIdentities(ctx)

	case ev.Is(eventhub.TypeGenericIdentity, eventhub.SourceRequestContent):
		if _, ok := ev.Data[eventhub.KeyAdID]; !ok {
			return nil
		}
		if err := e.validator.ValidateAdID(ev.Data); err != nil {
			return NewValidationError("Extension.Handle", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		}
		adID, _ := ev.Data[eventhub.KeyAdID].(string)
		return e.SetAdvertisingIdentifier(ctx, adID)

	case ev.Is(eventhub.TypeHub, eventhub.SourceSharedState):
		if owner, _ := ev.Data[eventhub.KeyStateOwner].(string); owner != LegacyIdentityName {
			return nil
		}
		state, ok := ev.Data[eventhub.KeyState].(map[string]any)
		if !ok {
			return nil
		}
		if err := e.validator.ValidateLegacyECID(state); err != nil {
			return NewValidationError("Extension.Handle", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		}
		ecid, _ := state[eventhub.KeyECID].(string)
		return e.UpdateLegacyECID(ctx, identity.ECID(ecid))
	}

	return nil
}

func (e *Extension) respondIdentity(ctx context.Context, request eventhub.Event) error {
	var data map[string]any
	if wantURL, _ := request.Data[eventhub.KeyURLVariables].(bool); wantURL {
		vars, err := e.GetURLVariables(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "cannot build url variables", "error", err)
		}
		data = map[string]any{eventhub.KeyURLVariables: vars}
	} else {
		e.mu.Lock()
		data = e.props.ToXDM(false)
		e.mu.Unlock()
	}

	response := eventhub.NewResponseEvent("Edge Identity Response Identity",
		eventhub.TypeEdgeIdentity, eventhub.SourceResponseIdentity, data, request)
	if err := e.hub.Dispatch(ctx, response); err != nil {
		return NewInternalError("Extension.Handle", fmt.Errorf("failed to dispatch identity response: %w", err))
	}
	return nil
}

// Serve boots the extension if needed and then handles events one at a time until the
// channel closes or ctx is done. Handler errors are logged and do not stop the loop.
// It returns nil when the channel closes and ctx.Err() when ctx is done.
func (e *Extension) Serve(ctx context.Context, events <-chan eventhub.Event) error {
	if err := e.Boot(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.Handle(ctx, ev); err != nil {
				e.logger.WarnContext(ctx, "failed to handle event",
					"event", ev.String(),
					"error", err,
				)
			}
		}
	}
}
