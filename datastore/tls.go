package datastore

import (
	"crypto/tls"
	"fmt"

	"go.etcd.io/etcd/client/pkg/v3/transport"
)

// TLSConfig holds client certificate paths for TLS connections to etcd.
type TLSConfig struct {
	// Enabled determines whether TLS is active.
	// If false, all other fields are ignored.
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// CertFile is the path to the client certificate file (PEM format).
	CertFile string `json:"cert_file" yaml:"cert_file" toml:"cert_file"`

	// KeyFile is the path to the client private key file (PEM format).
	KeyFile string `json:"key_file" yaml:"key_file" toml:"key_file"`

	// CAFile is the path to the certificate authority file (PEM format)
	// used to verify the server certificate.
	CAFile string `json:"ca_file" yaml:"ca_file" toml:"ca_file"`
}

// newTLSInfo converts cfg into etcd transport TLS info. It returns nil when TLS is
// disabled.
func newTLSInfo(cfg *TLSConfig) (*transport.TLSInfo, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if cfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file is required when TLS is enabled")
	}
	if cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file is required when TLS is enabled")
	}
	if cfg.CAFile == "" {
		return nil, fmt.Errorf("TLS CA file is required when TLS is enabled")
	}

	return &transport.TLSInfo{
		CertFile:      cfg.CertFile,
		KeyFile:       cfg.KeyFile,
		TrustedCAFile: cfg.CAFile,
	}, nil
}

// ClientTLS builds a client tls.Config from cfg. It returns nil when TLS is disabled.
func (cfg *TLSConfig) ClientTLS() (*tls.Config, error) {
	info, err := newTLSInfo(cfg)
	if err != nil || info == nil {
		return nil, err
	}

	tlsConfig, err := info.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}
	tlsConfig.MinVersion = tls.VersionTLS12
	return tlsConfig, nil
}
