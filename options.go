package edgeidentity

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/edgeidentity/datastore"
	"github.com/zero-day-ai/edgeidentity/eventhub"
	"github.com/zero-day-ai/edgeidentity/identity"
	"github.com/zero-day-ai/edgeidentity/validation"
)

// Option configures the Extension.
type Option func(*extensionConfig)

// extensionConfig holds configuration for an Extension instance.
type extensionConfig struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	store     datastore.Store
	hub       eventhub.Hub
	generator identity.Generator
	validator *validation.RequestValidator
	orgID     string
	storeKey  string
	dataPath  string
	now       func() time.Time
}

// WithLogger sets a custom logger for the extension.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *extensionConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer. Every request gets its own span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *extensionConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for request and persistence counters.
func WithMeter(meter metric.Meter) Option {
	return func(c *extensionConfig) {
		c.meter = meter
	}
}

// WithStore sets the durable store that holds the identity properties.
// Default: an in-memory store.
func WithStore(store datastore.Store) Option {
	return func(c *extensionConfig) {
		c.store = store
	}
}

// WithHub sets the event hub that receives shared state and events.
// Default: an eventhub.Recorder.
func WithHub(hub eventhub.Hub) Option {
	return func(c *extensionConfig) {
		c.hub = hub
	}
}

// WithGenerator sets the ECID generator used at first boot and on reset.
func WithGenerator(generator identity.Generator) Option {
	return func(c *extensionConfig) {
		c.generator = generator
	}
}

// WithValidator sets the request payload validator.
func WithValidator(validator *validation.RequestValidator) Option {
	return func(c *extensionConfig) {
		c.validator = validator
	}
}

// WithOrgID sets the Experience Cloud org id used by GetURLVariables.
func WithOrgID(orgID string) Option {
	return func(c *extensionConfig) {
		c.orgID = orgID
	}
}

// WithStoreKey overrides the store key of the persisted identity properties.
func WithStoreKey(key string) Option {
	return func(c *extensionConfig) {
		c.storeKey = key
	}
}

// WithDataPath sets the file or directory holding the store's data. When set, Health
// reports the store unhealthy if the path is missing.
func WithDataPath(path string) Option {
	return func(c *extensionConfig) {
		c.dataPath = path
	}
}

// WithClock sets the time source used for URL variable timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *extensionConfig) {
		c.now = now
	}
}
