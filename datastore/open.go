package datastore

import (
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendEtcd   = "etcd"
)

// Config selects and configures a backend for Open.
type Config struct {
	// Backend is one of the Backend* names. Default: "memory"
	Backend string

	// Path is the database location for badger (directory) and sqlite (file).
	Path string

	// InMemory runs badger without touching disk.
	InMemory bool

	// URL is the Redis connection string.
	URL string

	// Endpoints lists the etcd endpoints.
	Endpoints []string

	// KeyPrefix is the Redis key prefix or the etcd namespace.
	KeyPrefix string

	// Timeout is the connect timeout for network backends.
	Timeout time.Duration

	// TLS configures client certificates for etcd and Redis.
	TLS *TLSConfig
}

// Open builds the Store selected by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendBadger:
		return NewBadgerStore(BadgerOptions{Path: cfg.Path, InMemory: cfg.InMemory})
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendRedis:
		tlsConfig, err := cfg.TLS.ClientTLS()
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		return NewRedisStore(RedisOptions{
			URL:            cfg.URL,
			TLS:            tlsConfig,
			ConnectTimeout: cfg.Timeout,
			KeyPrefix:      cfg.KeyPrefix,
		})
	case BackendEtcd:
		return NewEtcdStore(EtcdOptions{
			Endpoints:   cfg.Endpoints,
			Namespace:   cfg.KeyPrefix,
			DialTimeout: cfg.Timeout,
			TLS:         cfg.TLS,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
