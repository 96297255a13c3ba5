// Package config provides loading and validation of edgeidentity configuration files.
// Files may be YAML or TOML; environment variables prefixed with EDGEIDENTITY_
// override file values.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zero-day-ai/edgeidentity/datastore"
)

// Hub backends.
const (
	HubRecorder  = "recorder"
	HubWatermill = "watermill"
	HubRedis     = "redis"
)

// Config is the edgeidentity configuration.
type Config struct {
	// OrgID is the Experience Cloud organization id used for URL variables.
	OrgID string `yaml:"org_id,omitempty" toml:"org_id" validate:"omitempty,max=128"`

	Store   StoreConfig   `yaml:"store" toml:"store"`
	Hub     HubConfig     `yaml:"hub" toml:"hub"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is one of memory, badger, sqlite, redis, etcd.
	// Default: memory
	Backend string `yaml:"backend,omitempty" toml:"backend" validate:"omitempty,oneof=memory badger sqlite redis etcd"`

	// Path is the badger directory or sqlite file.
	Path string `yaml:"path,omitempty" toml:"path"`

	// InMemory runs badger without disk.
	InMemory bool `yaml:"in_memory,omitempty" toml:"in_memory"`

	// URL is the Redis connection string.
	URL string `yaml:"url,omitempty" toml:"url" validate:"omitempty,url"`

	// Endpoints are the etcd endpoints.
	Endpoints []string `yaml:"endpoints,omitempty" toml:"endpoints" validate:"omitempty,dive,hostname_port"`

	// KeyPrefix is the Redis key prefix or etcd namespace.
	// Default: "edgeidentity"
	KeyPrefix string `yaml:"key_prefix,omitempty" toml:"key_prefix" validate:"omitempty,max=128"`

	// Timeout is the connect timeout for network backends.
	// Format: Go duration string (e.g., "5s")
	// Default: 5s
	Timeout string `yaml:"timeout,omitempty" toml:"timeout"`

	// TLS configures client certificates for etcd and Redis.
	TLS *datastore.TLSConfig `yaml:"tls,omitempty" toml:"tls"`
}

// HubConfig selects the event hub.
type HubConfig struct {
	// Backend is one of recorder, watermill, redis.
	// Default: watermill
	Backend string `yaml:"backend,omitempty" toml:"backend" validate:"omitempty,oneof=recorder watermill redis"`

	// URL is the Redis connection string for the redis hub.
	URL string `yaml:"url,omitempty" toml:"url" validate:"omitempty,url"`

	// Topic is the Watermill topic or Redis channel.
	// Default: "edgeidentity.events"
	Topic string `yaml:"topic,omitempty" toml:"topic"`

	// FailureThreshold is the number of consecutive publish failures that opens the
	// Redis hub circuit breaker.
	// Default: 5
	FailureThreshold uint32 `yaml:"failure_threshold,omitempty" toml:"failure_threshold" validate:"omitempty,max=1000"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level,omitempty" toml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is text or json.
	// Default: text
	Format string `yaml:"format,omitempty" toml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Store:   StoreConfig{Backend: datastore.BackendMemory},
		Hub:     HubConfig{Backend: HubWatermill},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

var validate = validator.New()

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Store.GetBackend() {
	case datastore.BackendBadger:
		if c.Store.Path == "" && !c.Store.InMemory {
			return fmt.Errorf("invalid configuration: store.path is required for the badger backend")
		}
	case datastore.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("invalid configuration: store.path is required for the sqlite backend")
		}
	case datastore.BackendEtcd:
		if len(c.Store.Endpoints) == 0 {
			return fmt.Errorf("invalid configuration: store.endpoints is required for the etcd backend")
		}
	}

	if c.Store.Timeout != "" {
		if _, err := time.ParseDuration(c.Store.Timeout); err != nil {
			return fmt.Errorf("invalid configuration: store.timeout: %w", err)
		}
	}

	return nil
}

// ApplyEnvOverrides replaces file values with EDGEIDENTITY_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("EDGEIDENTITY_ORG_ID"); v != "" {
		c.OrgID = v
	}

	// Store overrides
	if v := os.Getenv("EDGEIDENTITY_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("EDGEIDENTITY_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("EDGEIDENTITY_STORE_URL"); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv("EDGEIDENTITY_STORE_ENDPOINTS"); v != "" {
		c.Store.Endpoints = splitList(v)
	}

	// Hub overrides
	if v := os.Getenv("EDGEIDENTITY_HUB_BACKEND"); v != "" {
		c.Hub.Backend = v
	}
	if v := os.Getenv("EDGEIDENTITY_HUB_URL"); v != "" {
		c.Hub.URL = v
	}

	// Logging overrides
	if v := os.Getenv("EDGEIDENTITY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EDGEIDENTITY_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetBackend returns the configured backend or the default value.
func (s *StoreConfig) GetBackend() string {
	if s == nil || s.Backend == "" {
		return datastore.BackendMemory
	}
	return strings.ToLower(s.Backend)
}

// GetTimeout parses the timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (s *StoreConfig) GetTimeout() time.Duration {
	if s == nil || s.Timeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetKeyPrefix returns the key prefix or the default value.
func (s *StoreConfig) GetKeyPrefix() string {
	if s == nil || s.KeyPrefix == "" {
		return "edgeidentity"
	}
	return s.KeyPrefix
}

// Datastore converts the store section into a datastore.Config.
func (s *StoreConfig) Datastore() datastore.Config {
	return datastore.Config{
		Backend:   s.GetBackend(),
		Path:      s.Path,
		InMemory:  s.InMemory,
		URL:       s.URL,
		Endpoints: s.Endpoints,
		KeyPrefix: s.GetKeyPrefix(),
		Timeout:   s.GetTimeout(),
		TLS:       s.TLS,
	}
}

// GetBackend returns the configured hub backend or the default value.
func (h *HubConfig) GetBackend() string {
	if h == nil || h.Backend == "" {
		return HubWatermill
	}
	return strings.ToLower(h.Backend)
}

// GetTopic returns the topic or the default value.
func (h *HubConfig) GetTopic() string {
	if h == nil || h.Topic == "" {
		return "edgeidentity.events"
	}
	return h.Topic
}

// GetFailureThreshold returns the breaker threshold or the default value.
func (h *HubConfig) GetFailureThreshold() uint32 {
	if h == nil || h.FailureThreshold == 0 {
		return 5
	}
	return h.FailureThreshold
}

// SlogLevel returns the configured level. Unknown values map to info.
func (l *LoggingConfig) SlogLevel() slog.Level {
	if l == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a slog logger writing to w in the configured format.
func (l *LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l != nil && strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
