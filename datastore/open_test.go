package datastore

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  Config
		want any
	}{
		{name: "default", cfg: Config{}, want: &MemoryStore{}},
		{name: "memory", cfg: Config{Backend: "memory"}, want: &MemoryStore{}},
		{name: "badger", cfg: Config{Backend: "badger", Path: t.TempDir()}, want: &BadgerStore{}},
		{name: "badger in memory", cfg: Config{Backend: "Badger", InMemory: true}, want: &BadgerStore{}},
		{name: "sqlite", cfg: Config{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "id.db")}, want: &SQLiteStore{}},
		{name: "redis", cfg: Config{Backend: "redis", URL: fmt.Sprintf("redis://%s", mr.Addr())}, want: &RedisStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.cfg)
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(Config{Backend: "cassandra"})
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("etcd without endpoints", func(t *testing.T) {
		_, err := Open(Config{Backend: "etcd"})
		assert.Error(t, err)
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open(Config{Backend: "sqlite"})
		assert.Error(t, err)
	})

	t.Run("redis with invalid TLS", func(t *testing.T) {
		_, err := Open(Config{Backend: "redis", TLS: &TLSConfig{Enabled: true}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to configure TLS")
	})
}
