package datastore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdOptions configures an EtcdStore.
type EtcdOptions struct {
	// Endpoints is the list of etcd endpoints.
	// Format: ["host1:2379", "host2:2379"]
	Endpoints []string

	// Namespace is the key prefix; keys are stored under /{namespace}/{key}.
	// Default: "edgeidentity"
	Namespace string

	// DialTimeout bounds connection establishment. Default: 5s
	DialTimeout time.Duration

	// TLS enables client certificate authentication when set and enabled.
	TLS *TLSConfig
}

// EtcdStore is a Store backed by an etcd cluster.
type EtcdStore struct {
	client    *clientv3.Client
	namespace string
}

// NewEtcdStore connects to etcd and verifies connectivity with a quick read.
func NewEtcdStore(opts EtcdOptions) (*EtcdStore, error) {
	if len(opts.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "edgeidentity"
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	clientCfg := clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: dialTimeout,
	}

	tlsConfig, err := opts.TLS.ClientTLS()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	clientCfg.TLS = tlsConfig

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	// Verify connectivity with a quick health check
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err = cli.Get(ctx, "health-check")
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return NewEtcdStoreFromClient(cli, namespace), nil
}

// NewEtcdStoreFromClient wraps an existing client. Close closes cli.
func NewEtcdStoreFromClient(cli *clientv3.Client, namespace string) *EtcdStore {
	if namespace == "" {
		namespace = "edgeidentity"
	}
	return &EtcdStore{client: cli, namespace: namespace}
}

// Load returns the value stored under key.
func (s *EtcdStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, s.formatKey(key))
	if err != nil {
		return nil, storageError("load", key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}
	return resp.Kvs[0].Value, nil
}

// Save stores value under key.
func (s *EtcdStore) Save(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := s.client.Put(ctx, s.formatKey(key), string(value)); err != nil {
		return storageError("save", key, err)
	}
	return nil
}

// Delete removes key.
func (s *EtcdStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	resp, err := s.client.Delete(ctx, s.formatKey(key))
	if err != nil {
		return storageError("delete", key, err)
	}
	if resp.Deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping performs a read against the cluster.
func (s *EtcdStore) Ping(ctx context.Context) error {
	if _, err := s.client.Get(ctx, s.formatKey("health-check")); err != nil {
		return fmt.Errorf("etcd health check failed: %w", err)
	}
	return nil
}

// Close closes the etcd client.
func (s *EtcdStore) Close() error {
	return s.client.Close()
}

// formatKey builds /{namespace}/{key}.
func (s *EtcdStore) formatKey(key string) string {
	return path.Join("/", s.namespace, key)
}
