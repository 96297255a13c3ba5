// Package edgeidentity maintains the identity graph of a device for Edge Network
// integrations: an Experience Cloud ID (ECID) generated on first launch, an optional
// secondary ECID mirrored from the legacy identity extension, the advertising
// identifier, and customer identifiers such as email addresses or user ids.
//
// # Core Concepts
//
//   - Extension: owns the identity properties and applies requests to them
//   - Identity map: namespaced, ordered identity items in XDM shape (package identity)
//   - Store: durable key/value storage for the persisted snapshot (package datastore)
//   - Hub: the host event hub that receives shared state and events (package eventhub)
//
// # Getting Started
//
//	ext, err := edgeidentity.New(
//		edgeidentity.WithStore(store),
//		edgeidentity.WithHub(hub),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ext.Close()
//
//	if err := ext.Boot(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	m := identity.NewMap()
//	m.AddItem(identity.NewItem("user@example.com", identity.Authenticated, true), "Email")
//	if err := ext.UpdateIdentities(ctx, m); err != nil {
//		log.Fatal(err)
//	}
//
// Or build everything from a configuration file:
//
//	cfg, err := config.Load("edgeidentity.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ext, err := edgeidentity.NewFromConfig(cfg)
//
// # Request Rules
//
// Reserved namespaces (ECID, GAID and IDFA, in any case) are never changed through
// update or remove requests; removing from one is rejected with ErrReservedNamespace.
// Empty update and remove requests, and removals of identifiers that do not exist,
// write nothing. Every other change is persisted with the full identity map and
// published as shared state, where an empty map is published as {}.
//
// # Event Routing
//
// Handle routes hub events to requests and Serve runs the serialized request loop:
//
//	events, err := hub.Subscribe(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := ext.Serve(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
//		log.Fatal(err)
//	}
//
// # Error Handling
//
// Errors returned by the extension are *Error values carrying the operation and a
// kind. Use errors.Is with the sentinel errors or with &Error{Kind: KindValidation}:
//
//	if errors.Is(err, edgeidentity.ErrReservedNamespace) {
//		// ECID cannot be removed
//	}
//
// # Observability
//
// WithLogger, WithTracer and WithMeter plug in slog and OpenTelemetry. Each request
// runs in a span named "edgeidentity.<Operation>" and increments the
// edgeidentity.requests counter.
package edgeidentity
