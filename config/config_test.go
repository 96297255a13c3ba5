package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/edgeidentity/datastore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, datastore.BackendMemory, cfg.Store.GetBackend())
	assert.Equal(t, HubWatermill, cfg.Hub.GetBackend())
	assert.Equal(t, slog.LevelInfo, cfg.Logging.SlogLevel())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "badger with path", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "badger", Path: "/tmp/x"} }},
		{name: "badger in memory", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "badger", InMemory: true} }},
		{name: "redis store", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "redis", URL: "redis://localhost:6379"} }},
		{name: "etcd store", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "etcd", Endpoints: []string{"localhost:2379"}} }},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "cassandra" }, wantErr: "Backend"},
		{name: "badger without path", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "badger"} }, wantErr: "store.path"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "sqlite"} }, wantErr: "store.path"},
		{name: "etcd without endpoints", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "etcd"} }, wantErr: "store.endpoints"},
		{name: "bad endpoint", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "etcd", Endpoints: []string{"no port"}} }, wantErr: "Endpoints"},
		{name: "bad timeout", mutate: func(c *Config) { c.Store.Timeout = "soon" }, wantErr: "store.timeout"},
		{name: "unknown hub", mutate: func(c *Config) { c.Hub.Backend = "kafka" }, wantErr: "Backend"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("EDGEIDENTITY_ORG_ID", "ORG@AdobeOrg")
	t.Setenv("EDGEIDENTITY_STORE_BACKEND", "etcd")
	t.Setenv("EDGEIDENTITY_STORE_ENDPOINTS", "a:2379, b:2379,,")
	t.Setenv("EDGEIDENTITY_HUB_BACKEND", "redis")
	t.Setenv("EDGEIDENTITY_HUB_URL", "redis://hub:6379")
	t.Setenv("EDGEIDENTITY_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "ORG@AdobeOrg", cfg.OrgID)
	assert.Equal(t, "etcd", cfg.Store.Backend)
	assert.Equal(t, []string{"a:2379", "b:2379"}, cfg.Store.Endpoints)
	assert.Equal(t, HubRedis, cfg.Hub.GetBackend())
	assert.Equal(t, "redis://hub:6379", cfg.Hub.URL)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
}

func TestStoreConfig_Getters(t *testing.T) {
	var nilStore *StoreConfig
	assert.Equal(t, datastore.BackendMemory, nilStore.GetBackend())
	assert.Equal(t, 5*time.Second, nilStore.GetTimeout())
	assert.Equal(t, "edgeidentity", nilStore.GetKeyPrefix())

	s := &StoreConfig{Backend: "Redis", Timeout: "2s", KeyPrefix: "tenant", URL: "redis://x:1"}
	assert.Equal(t, datastore.BackendRedis, s.GetBackend())
	assert.Equal(t, 2*time.Second, s.GetTimeout())

	s.Timeout = "garbage"
	assert.Equal(t, 5*time.Second, s.GetTimeout())

	ds := s.Datastore()
	assert.Equal(t, datastore.BackendRedis, ds.Backend)
	assert.Equal(t, "tenant", ds.KeyPrefix)
	assert.Equal(t, "redis://x:1", ds.URL)
}

func TestHubConfig_Getters(t *testing.T) {
	var nilHub *HubConfig
	assert.Equal(t, HubWatermill, nilHub.GetBackend())
	assert.Equal(t, "edgeidentity.events", nilHub.GetTopic())
	assert.Equal(t, uint32(5), nilHub.GetFailureThreshold())

	h := &HubConfig{Backend: "REDIS", Topic: "t", FailureThreshold: 2}
	assert.Equal(t, HubRedis, h.GetBackend())
	assert.Equal(t, "t", h.GetTopic())
	assert.Equal(t, uint32(2), h.GetFailureThreshold())
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := (&LoggingConfig{Level: "warn", Format: "json"}).NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)

	buf.Reset()
	(&LoggingConfig{}).NewLogger(&buf).Info("text line")
	assert.Contains(t, buf.String(), "msg=\"text line\"")
}
