package edgeidentity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/zero-day-ai/edgeidentity/datastore"
	"github.com/zero-day-ai/edgeidentity/eventhub"
	"github.com/zero-day-ai/edgeidentity/health"
	"github.com/zero-day-ai/edgeidentity/identity"
	"github.com/zero-day-ai/edgeidentity/persistence"
	"github.com/zero-day-ai/edgeidentity/validation"
)

const (
	// Name is the extension name and the owner of its shared state.
	Name = "com.adobe.edge.identity"

	// FriendlyName is the human readable extension name.
	FriendlyName = "Edge Identity"

	// Version is the extension version reported on boot.
	Version = "1.0.0"

	// LegacyIdentityName owns the legacy identity shared state whose ECID is mirrored
	// as the secondary ECID.
	LegacyIdentityName = "com.adobe.module.identity"

	// AdIDTrackingDisabled is the all-zeros advertising identifier reported by devices
	// with ad tracking turned off. It clears the stored advertising identifier.
	AdIDTrackingDisabled = "00000000-0000-0000-0000-000000000000"

	instrumentationName = "github.com/zero-day-ai/edgeidentity"
)

// Extension owns the identity properties of one device and applies update, remove and
// reset requests to them. Every request and every persistence call runs under a
// single mutex, so callers need not serialize requests themselves.
//
// Persistence and publication failures are logged and counted but not returned: the
// in-memory properties stay authoritative and the next successful write catches up.
type Extension struct {
	mu     sync.Mutex
	props  *identity.Properties
	booted bool
	closed bool
	orgID  string

	repo      *persistence.Repository
	store     datastore.Store
	hub       eventhub.Hub
	generator identity.Generator
	validator *validation.RequestValidator
	dataPath  string
	now       func() time.Time

	logger          *slog.Logger
	tracer          trace.Tracer
	requests        metric.Int64Counter
	persistFailures metric.Int64Counter
}

// New creates an Extension. It does not touch the store until Boot is called.
//
// Example:
//
//	ext, err := edgeidentity.New(
//		edgeidentity.WithStore(store),
//		edgeidentity.WithHub(hub),
//		edgeidentity.WithOrgID("ABC123@AdobeOrg"),
//	)
//	if err != nil {
//		return err
//	}
//	defer ext.Close()
//
//	if err := ext.Boot(ctx); err != nil {
//		return err
//	}
func New(opts ...Option) (*Extension, error) {
	cfg := &extensionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if cfg.meter == nil {
		cfg.meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	if cfg.store == nil {
		cfg.store = datastore.NewMemoryStore()
	}
	if cfg.hub == nil {
		cfg.hub = eventhub.NewRecorder()
	}
	if cfg.generator == nil {
		cfg.generator = identity.UUIDGenerator{}
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.validator == nil {
		v, err := validation.NewRequestValidator()
		if err != nil {
			return nil, NewInternalError("New", err)
		}
		cfg.validator = v
	}

	requests, err := cfg.meter.Int64Counter(
		"edgeidentity.requests",
		metric.WithDescription("Number of identity requests handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, NewConfigurationError("New", fmt.Errorf("failed to create requests counter: %w", err))
	}
	persistFailures, err := cfg.meter.Int64Counter(
		"edgeidentity.persist.failures",
		metric.WithDescription("Number of failed identity property writes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, NewConfigurationError("New", fmt.Errorf("failed to create persist failures counter: %w", err))
	}

	repoOpts := []persistence.Option{persistence.WithLogger(cfg.logger)}
	if cfg.storeKey != "" {
		repoOpts = append(repoOpts, persistence.WithKey(cfg.storeKey))
	}

	return &Extension{
		props:           identity.NewProperties(),
		orgID:           cfg.orgID,
		repo:            persistence.NewRepository(cfg.store, repoOpts...),
		store:           cfg.store,
		hub:             cfg.hub,
		generator:       cfg.generator,
		validator:       cfg.validator,
		dataPath:        cfg.dataPath,
		now:             cfg.now,
		logger:          cfg.logger,
		tracer:          cfg.tracer,
		requests:        requests,
		persistFailures: persistFailures,
	}, nil
}

// Boot hydrates the identity properties from the store, generates and persists an
// ECID when none exists, publishes the resulting shared state and announces the
// extension on the hub. Calling Boot again is a no-op.
func (e *Extension) Boot(ctx context.Context) (err error) {
	ctx, span := e.startRequest(ctx, "Boot")
	defer func() { endSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return NewStateError("Extension.Boot", ErrClosed)
	}
	if e.booted {
		return nil
	}

	props := e.repo.Load(ctx)
	if props.ECID().IsZero() {
		props.SetECID(e.generator.Generate())
		e.logger.DebugContext(ctx, "generated new ecid on first boot")
		e.persist(ctx, props)
	}

	e.props = props
	e.booted = true
	span.SetAttributes(attribute.Bool("edgeidentity.secondary_ecid", !props.ECIDSecondary().IsZero()))

	e.publish(ctx)
	e.dispatch(ctx, eventhub.NewEvent("Extension Info", eventhub.TypeHub, eventhub.SourceBooted, map[string]any{
		eventhub.KeyExtensionName:    Name,
		eventhub.KeyExtensionVersion: Version,
	}))

	e.logger.InfoContext(ctx, "edge identity booted", "version", Version)
	return nil
}

// UpdateIdentities merges the customer identifiers of m into the current properties,
// persists them and publishes the new shared state. Items with an empty id are dropped.
// A nil or empty map is a no-op, and so is a map whose namespaces are all reserved.
func (e *Extension) UpdateIdentities(ctx context.Context, m *identity.Map) (err error) {
	ctx, span := e.startRequest(ctx, "UpdateIdentities")
	defer func() { endSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.UpdateIdentities"); err != nil {
		return err
	}
	e.update(ctx, m)
	return nil
}

// UpdateFromXDM validates an XDM update request payload and applies it like
// UpdateIdentities. Items without an id are dropped while parsing. The payload is a
// JSON object, so namespaces are merged in sorted order rather than the order the
// sender wrote them; new namespaces are appended to the identity map in that order.
func (e *Extension) UpdateFromXDM(ctx context.Context, data map[string]any) (err error) {
	ctx, span := e.startRequest(ctx, "UpdateFromXDM")
	defer func() { endSpan(span, err) }()

	if err := e.validator.ValidateIdentityMap(data); err != nil {
		return NewValidationError("Extension.UpdateFromXDM", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.UpdateFromXDM"); err != nil {
		return err
	}
	e.update(ctx, identity.MapFromXDM(data))
	return nil
}

func (e *Extension) update(ctx context.Context, m *identity.Map) {
	m = m.Compact()
	if m.IsEmpty() {
		e.logger.DebugContext(ctx, "ignoring update with no identities")
		return
	}

	customer := false
	for _, ns := range m.Namespaces() {
		if identity.IsReservedNamespace(ns) {
			e.logger.DebugContext(ctx, "ignoring update of reserved namespace", "namespace", ns)
			continue
		}
		customer = true
	}
	if !customer {
		return
	}

	e.props.UpdateCustomerIdentifiers(m)
	e.persist(ctx, e.props)
	e.publish(ctx)
}

// RemoveIdentity removes a single customer identifier. Removing from a reserved
// namespace fails with ErrReservedNamespace. Removing an identifier that does not exist
// changes nothing and writes nothing.
func (e *Extension) RemoveIdentity(ctx context.Context, item identity.Item, namespace string) (err error) {
	ctx, span := e.startRequest(ctx, "RemoveIdentity")
	defer func() { endSpan(span, err) }()

	if identity.IsReservedNamespace(namespace) {
		e.logger.DebugContext(ctx, "rejecting removal from reserved namespace", "namespace", namespace)
		return NewValidationError("Extension.RemoveIdentity", ErrReservedNamespace).
			WithContext(map[string]any{"namespace": namespace})
	}

	m := identity.NewMap()
	m.AddItem(item, namespace)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.RemoveIdentity"); err != nil {
		return err
	}
	e.remove(ctx, m)
	return nil
}

// RemoveIdentities removes the customer identifiers of m. Reserved namespaces and items
// with an empty id in m are ignored. Nothing is written unless an identifier was actually removed.
func (e *Extension) RemoveIdentities(ctx context.Context, m *identity.Map) (err error) {
	ctx, span := e.startRequest(ctx, "RemoveIdentities")
	defer func() { endSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.RemoveIdentities"); err != nil {
		return err
	}
	e.remove(ctx, m)
	return nil
}

// RemoveFromXDM validates an XDM remove request payload and applies it like
// RemoveIdentities.
func (e *Extension) RemoveFromXDM(ctx context.Context, data map[string]any) (err error) {
	ctx, span := e.startRequest(ctx, "RemoveFromXDM")
	defer func() { endSpan(span, err) }()

	if err := e.validator.ValidateIdentityMap(data); err != nil {
		return NewValidationError("Extension.RemoveFromXDM", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.RemoveFromXDM"); err != nil {
		return err
	}
	e.remove(ctx, identity.MapFromXDM(data))
	return nil
}

func (e *Extension) remove(ctx context.Context, m *identity.Map) {
	m = m.Compact()
	if m.IsEmpty() {
		e.logger.DebugContext(ctx, "ignoring remove with no identities")
		return
	}
	for _, ns := range m.Namespaces() {
		if identity.IsReservedNamespace(ns) {
			e.logger.DebugContext(ctx, "ignoring removal from reserved namespace", "namespace", ns)
		}
	}

	if !e.props.RemoveCustomerIdentifiers(m) {
		e.logger.DebugContext(ctx, "no identities removed")
		return
	}
	e.persist(ctx, e.props)
	e.publish(ctx)
}

// ResetIdentities replaces all identity properties with a fresh ECID, persists and
// publishes them, then dispatches a reset complete event.
func (e *Extension) ResetIdentities(ctx context.Context) (err error) {
	ctx, span := e.startRequest(ctx, "ResetIdentities")
	defer func() { endSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.ResetIdentities"); err != nil {
		return err
	}

	props := identity.NewProperties()
	props.SetECID(e.generator.Generate())
	e.props = props

	e.persist(ctx, props)
	e.publish(ctx)
	e.dispatch(ctx, eventhub.NewEvent("Edge Identity Reset Complete",
		eventhub.TypeEdgeIdentity, eventhub.SourceResetComplete, nil))

	e.logger.InfoContext(ctx, "identities reset")
	return nil
}

// SetAdvertisingIdentifier stores the device advertising identifier. The empty string
// and AdIDTrackingDisabled clear it. State is written only when the value changes.
func (e *Extension) SetAdvertisingIdentifier(ctx context.Context, adID string) (err error) {
	ctx, span := e.startRequest(ctx, "SetAdvertisingIdentifier")
	defer func() { endSpan(span, err) }()

	if adID == AdIDTrackingDisabled {
		adID = ""
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.SetAdvertisingIdentifier"); err != nil {
		return err
	}
	if e.props.AdID() == adID {
		return nil
	}

	e.props.SetAdID(adID)
	e.persist(ctx, e.props)
	e.publish(ctx)
	return nil
}

// UpdateLegacyECID mirrors the ECID of the legacy identity extension as the secondary
// ECID. A value equal to the primary or current secondary ECID changes nothing; the
// empty ECID clears the secondary. Without a primary ECID the call has no effect.
func (e *Extension) UpdateLegacyECID(ctx context.Context, ecid identity.ECID) (err error) {
	ctx, span := e.startRequest(ctx, "UpdateLegacyECID")
	defer func() { endSpan(span, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready("Extension.UpdateLegacyECID"); err != nil {
		return err
	}
	if ecid == e.props.ECID() || ecid == e.props.ECIDSecondary() {
		return nil
	}

	e.props.SetECIDSecondary(ecid)
	if e.props.ECIDSecondary() != ecid {
		return nil
	}

	e.logger.DebugContext(ctx, "legacy ecid changed", "cleared", ecid.IsZero())
	e.persist(ctx, e.props)
	e.publish(ctx)
	return nil
}

// GetExperienceCloudID returns the primary ECID, empty before Boot.
func (e *Extension) GetExperienceCloudID() identity.ECID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props.ECID()
}

// GetIdentities returns a copy of every identity the extension holds, ECID first.
func (e *Extension) GetIdentities() *identity.Map {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props.IdentityMap()
}

// GetURLVariables returns the query string that hands the ECID over to web views:
//
//	adobe_mc=TS%3D<unix seconds>%7CMCMID%3D<ecid>%7CMCORGID%3D<org id>
//
// It fails with ErrMissingOrgID without an org id and returns "" without an ECID.
func (e *Extension) GetURLVariables(ctx context.Context) (string, error) {
	e.mu.Lock()
	orgID, ecid := e.orgID, e.props.ECID()
	e.mu.Unlock()

	if orgID == "" {
		return "", NewConfigurationError("Extension.GetURLVariables", ErrMissingOrgID)
	}
	if ecid.IsZero() {
		e.logger.DebugContext(ctx, "no ecid for url variables")
		return "", nil
	}

	value := "TS=" + strconv.FormatInt(e.now().Unix(), 10) +
		"|MCMID=" + ecid.String() +
		"|MCORGID=" + orgID
	return "adobe_mc=" + url.QueryEscape(value), nil
}

// SetOrgID replaces the Experience Cloud org id, e.g. after a configuration reload.
func (e *Extension) SetOrgID(orgID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orgID = orgID
}

// Hub returns the event hub the extension publishes to.
func (e *Extension) Hub() eventhub.Hub {
	return e.hub
}

// Booted reports whether Boot has completed.
func (e *Extension) Booted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.booted
}

// Health reports store reachability, the Redis hub circuit state when one is in use,
// and whether the extension has booted.
func (e *Extension) Health(ctx context.Context) health.Status {
	checks := []health.Status{health.StoreCheck(ctx, "identity", e.store)}
	if e.dataPath != "" {
		checks = append(checks, health.DataPathCheck("identity", e.dataPath))
	}
	if rh, ok := e.hub.(*eventhub.RedisHub); ok {
		checks = append(checks, health.BreakerCheck("eventhub", rh.BreakerState()))
	}
	if !e.Booted() {
		checks = append(checks, health.NewDegradedStatus("extension not booted", nil))
	}
	return health.Combine(checks...)
}

// Close closes the hub and the store. Requests made after Close fail with ErrClosed.
func (e *Extension) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if err := e.hub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close hub: %w", err))
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	return errors.Join(errs...)
}

// ready must be called with mu held.
func (e *Extension) ready(op string) error {
	if e.closed {
		return NewStateError(op, ErrClosed)
	}
	if !e.booted {
		return NewStateError(op, ErrNotBooted)
	}
	return nil
}

func (e *Extension) persist(ctx context.Context, props *identity.Properties) {
	if err := e.repo.Save(ctx, props); err != nil {
		e.persistFailures.Add(ctx, 1)
		e.logger.WarnContext(ctx, "failed to persist identity properties",
			"key", e.repo.Key(),
			"error", err,
		)
	}
}

func (e *Extension) publish(ctx context.Context) {
	if err := e.hub.PublishXDMSharedState(ctx, Name, e.props.ToXDM(false)); err != nil {
		e.logger.WarnContext(ctx, "failed to publish identity shared state", "error", err)
	}
}

func (e *Extension) dispatch(ctx context.Context, ev eventhub.Event) {
	if err := e.hub.Dispatch(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "failed to dispatch event", "event", ev.String(), "error", err)
	}
}

func (e *Extension) startRequest(ctx context.Context, op string) (context.Context, trace.Span) {
	e.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("request", op)))
	return e.tracer.Start(ctx, "edgeidentity."+op)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
