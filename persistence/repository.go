package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zero-day-ai/edgeidentity/datastore"
	"github.com/zero-day-ai/edgeidentity/identity"
)

const (
	// DatastoreName is the name of the data store that holds identity state.
	DatastoreName = "com.adobe.edge.identity"

	// IdentityPropertiesKey is the key of the persisted identity properties within the
	// data store.
	IdentityPropertiesKey = "identity.properties"
)

// DefaultKey is the store key used when none is configured.
var DefaultKey = DatastoreName + "/" + IdentityPropertiesKey

// Encode returns the persisted form of props. The identityMap key is always present.
func Encode(props *identity.Properties) ([]byte, error) {
	data, err := props.IdentityMap().EncodeXDM(true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity properties: %w", err)
	}
	return data, nil
}

// Decode parses a persisted blob. Items with missing, null or empty ids are dropped.
func Decode(data []byte) (*identity.Properties, error) {
	m, err := identity.DecodeXDM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode identity properties: %w", err)
	}
	return identity.PropertiesFromMap(m), nil
}

// Option configures a Repository.
type Option func(*Repository)

// WithKey overrides the store key.
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithLogger sets the logger used for load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Repository loads and saves identity properties.
type Repository struct {
	store  datastore.Store
	key    string
	logger *slog.Logger
}

// NewRepository returns a repository over store.
func NewRepository(store datastore.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		key:    DefaultKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the store key the repository reads and writes.
func (r *Repository) Key() string {
	return r.key
}

// Load returns the persisted properties, or empty properties when there are none or
// they cannot be read.
func (r *Repository) Load(ctx context.Context) *identity.Properties {
	data, err := r.store.Load(ctx, r.key)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			r.logger.DebugContext(ctx, "no persisted identity properties", "key", r.key)
		} else {
			r.logger.WarnContext(ctx, "failed to load identity properties, starting empty",
				"key", r.key,
				"error", err,
			)
		}
		return identity.NewProperties()
	}

	props, err := Decode(data)
	if err != nil {
		r.logger.WarnContext(ctx, "discarding unreadable identity properties",
			"key", r.key,
			"error", err,
		)
		return identity.NewProperties()
	}
	return props
}

// Save writes the full current state of props.
func (r *Repository) Save(ctx context.Context, props *identity.Properties) error {
	data, err := Encode(props)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save identity properties: %w", err)
	}
	return nil
}
