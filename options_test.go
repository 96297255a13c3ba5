package edgeidentity

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/zero-day-ai/edgeidentity/datastore"
	"github.com/zero-day-ai/edgeidentity/eventhub"
	"github.com/zero-day-ai/edgeidentity/identity"
	"github.com/zero-day-ai/edgeidentity/validation"
)

func TestOptions(t *testing.T) {
	t.Run("WithLogger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		cfg := &extensionConfig{}
		WithLogger(logger)(cfg)

		if cfg.logger != logger {
			t.Error("expected logger to be set")
		}
	})

	t.Run("WithTracer", func(t *testing.T) {
		cfg := &extensionConfig{}
		WithTracer(nil)(cfg)

		if cfg.tracer != nil {
			t.Error("expected tracer to be nil")
		}
	})

	t.Run("WithMeter", func(t *testing.T) {
		meter := noop.NewMeterProvider().Meter("test")
		cfg := &extensionConfig{}
		WithMeter(meter)(cfg)

		if cfg.meter == nil {
			t.Error("expected meter to be set")
		}
	})

	t.Run("WithStore", func(t *testing.T) {
		store := datastore.NewMemoryStore()
		cfg := &extensionConfig{}
		WithStore(store)(cfg)

		if cfg.store != store {
			t.Error("expected store to be set")
		}
	})

	t.Run("WithHub", func(t *testing.T) {
		hub := eventhub.NewRecorder()
		cfg := &extensionConfig{}
		WithHub(hub)(cfg)

		if cfg.hub != hub {
			t.Error("expected hub to be set")
		}
	})

	t.Run("WithGenerator", func(t *testing.T) {
		cfg := &extensionConfig{}
		WithGenerator(identity.GeneratorFunc(func() identity.ECID { return "fixed" }))(cfg)

		if cfg.generator == nil || cfg.generator.Generate() != "fixed" {
			t.Error("expected generator to be set")
		}
	})

	t.Run("WithValidator", func(t *testing.T) {
		v := validation.MustNewRequestValidator()
		cfg := &extensionConfig{}
		WithValidator(v)(cfg)

		if cfg.validator != v {
			t.Error("expected validator to be set")
		}
	})

	t.Run("WithOrgID", func(t *testing.T) {
		cfg := &extensionConfig{}
		WithOrgID("ORG@AdobeOrg")(cfg)

		if cfg.orgID != "ORG@AdobeOrg" {
			t.Errorf("expected org id 'ORG@AdobeOrg', got %s", cfg.orgID)
		}
	})

	t.Run("WithStoreKey", func(t *testing.T) {
		cfg := &extensionConfig{}
		WithStoreKey("custom/key")(cfg)

		if cfg.storeKey != "custom/key" {
			t.Errorf("expected store key 'custom/key', got %s", cfg.storeKey)
		}
	})

	t.Run("WithDataPath", func(t *testing.T) {
		cfg := &extensionConfig{}
		WithDataPath("/var/lib/edgeidentity")(cfg)

		if cfg.dataPath != "/var/lib/edgeidentity" {
			t.Errorf("expected data path '/var/lib/edgeidentity', got %s", cfg.dataPath)
		}
	})

	t.Run("WithClock", func(t *testing.T) {
		fixed := time.Unix(42, 0)
		cfg := &extensionConfig{}
		WithClock(func() time.Time { return fixed })(cfg)

		if cfg.now == nil || !cfg.now().Equal(fixed) {
			t.Error("expected clock to be set")
		}
	})
}
