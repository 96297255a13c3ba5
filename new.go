package edgeidentity

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zero-day-ai/edgeidentity/config"
	"github.com/zero-day-ai/edgeidentity/datastore"
	"github.com/zero-day-ai/edgeidentity/eventhub"
)

// NewFromConfig builds an Extension from a configuration: it opens the configured store
// and hub and sets the org id and a logger built from cfg.Logging. Options given here
// are applied after the configured ones, so they win. A nil cfg means the defaults.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Extension, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigurationError("NewFromConfig", err)
	}

	logger := cfg.Logging.NewLogger(os.Stderr)

	store, err := datastore.Open(cfg.Store.Datastore())
	if err != nil {
		return nil, NewStorageError("NewFromConfig", fmt.Errorf("failed to open %s store: %w", cfg.Store.GetBackend(), err)).
			WithContext(map[string]any{"backend": cfg.Store.GetBackend()})
	}

	hub, err := newHub(cfg, logger)
	if err != nil {
		CloseWithLog(store, logger, "identity store")
		return nil, NewConfigurationError("NewFromConfig", err).
			WithContext(map[string]any{"hub": cfg.Hub.GetBackend()})
	}

	base := []Option{
		WithLogger(logger),
		WithStore(store),
		WithHub(hub),
		WithOrgID(cfg.OrgID),
	}
	if path := dataPath(cfg.Store); path != "" {
		base = append(base, WithDataPath(path))
	}
	ext, err := New(append(base, opts...)...)
	if err != nil {
		CloseWithLog(hub, logger, "event hub")
		CloseWithLog(store, logger, "identity store")
		return nil, err
	}
	return ext, nil
}

// dataPath returns the on-disk location of file backed stores, or "" when the store
// keeps no data on the local filesystem.
func dataPath(store config.StoreConfig) string {
	switch store.GetBackend() {
	case datastore.BackendBadger:
		if store.InMemory {
			return ""
		}
		return store.Path
	case datastore.BackendSQLite:
		if store.Path == ":memory:" {
			return ""
		}
		return store.Path
	default:
		return ""
	}
}

func newHub(cfg *config.Config, logger *slog.Logger) (eventhub.Hub, error) {
	switch cfg.Hub.GetBackend() {
	case config.HubRecorder:
		return eventhub.NewRecorder(), nil
	case config.HubWatermill:
		return eventhub.NewWatermillHub(eventhub.WatermillOptions{
			Topic:  cfg.Hub.GetTopic(),
			Logger: logger,
		}), nil
	case config.HubRedis:
		tlsConfig, err := cfg.Store.TLS.ClientTLS()
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		client, err := datastore.NewRedisClient(datastore.RedisOptions{
			URL:            cfg.Hub.URL,
			TLS:            tlsConfig,
			ConnectTimeout: cfg.Store.GetTimeout(),
		})
		if err != nil {
			return nil, err
		}
		return eventhub.NewRedisHub(client, eventhub.RedisOptions{
			Channel:          cfg.Hub.GetTopic(),
			FailureThreshold: cfg.Hub.GetFailureThreshold(),
			Logger:           logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown hub backend %q", cfg.Hub.Backend)
	}
}
