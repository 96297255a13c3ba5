package persistence

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/edgeidentity/datastore"
	"github.com/zero-day-ai/edgeidentity/identity"
)

// failingStore fails every operation with err.
type failingStore struct {
	err error
}

func (s failingStore) Load(context.Context, string) ([]byte, error) { return nil, s.err }
func (s failingStore) Save(context.Context, string, []byte) error   { return s.err }
func (s failingStore) Delete(context.Context, string) error         { return s.err }
func (s failingStore) Close() error                                 { return nil }

func TestEncode(t *testing.T) {
	t.Run("empty properties keep identityMap", func(t *testing.T) {
		data, err := Encode(identity.NewProperties())
		require.NoError(t, err)
		assert.Equal(t, `{"identityMap":{}}`, string(data))
	})

	t.Run("ECIDs first", func(t *testing.T) {
		props := identity.NewProperties()
		props.UpdateCustomerIdentifiers(identity.MapFromXDM(map[string]any{
			"identityMap": map[string]any{
				"Email": []any{map[string]any{"id": "a@b.com", "authenticatedState": "authenticated", "primary": true}},
			},
		}))
		props.SetECID("primary")
		props.SetECIDSecondary("secondary")

		data, err := Encode(props)
		require.NoError(t, err)
		assert.Equal(t,
			`{"identityMap":{"ECID":[{"id":"primary","authenticatedState":"ambiguous","primary":false},`+
				`{"id":"secondary","authenticatedState":"ambiguous","primary":false}],`+
				`"Email":[{"id":"a@b.com","authenticatedState":"authenticated","primary":true}]}}`,
			string(data))
	})
}

func TestDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		props := identity.NewProperties()
		props.SetECID("primary")
		props.SetAdID("ad")

		data, err := Encode(props)
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, props.ToXDM(true), decoded.ToXDM(true))
	})

	t.Run("drops invalid items", func(t *testing.T) {
		decoded, err := Decode([]byte(`{"identityMap":{"UserId":[{"id":""},{"id":null},{"id":"ok"}]}}`))
		require.NoError(t, err)
		assert.Len(t, decoded.CustomerIdentifiers().Items("UserId"), 1)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"identityMap":`))
		assert.Error(t, err)
	})
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("load with nothing persisted", func(t *testing.T) {
		repo := NewRepository(datastore.NewMemoryStore())
		props := repo.Load(ctx)
		assert.True(t, props.ECID().IsZero())
		assert.Equal(t, map[string]any{}, props.ToXDM(false))
	})

	t.Run("save then load", func(t *testing.T) {
		store := datastore.NewMemoryStore()
		repo := NewRepository(store)

		props := identity.NewProperties()
		props.SetECID("primary")
		require.NoError(t, repo.Save(ctx, props))

		raw, err := store.Load(ctx, DefaultKey)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"primary"`)

		assert.Equal(t, identity.ECID("primary"), repo.Load(ctx).ECID())
	})

	t.Run("custom key", func(t *testing.T) {
		store := datastore.NewMemoryStore()
		repo := NewRepository(store, WithKey("custom"))
		assert.Equal(t, "custom", repo.Key())

		require.NoError(t, repo.Save(ctx, identity.NewProperties()))
		raw, err := store.Load(ctx, "custom")
		require.NoError(t, err)
		assert.Equal(t, `{"identityMap":{}}`, string(raw))
	})

	t.Run("corrupt blob starts empty", func(t *testing.T) {
		var logs bytes.Buffer
		store := datastore.NewMemoryStore()
		require.NoError(t, store.Save(ctx, DefaultKey, []byte("not json")))

		repo := NewRepository(store, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		props := repo.Load(ctx)

		assert.True(t, props.ECID().IsZero())
		assert.Contains(t, logs.String(), "discarding unreadable identity properties")
	})

	t.Run("store failure starts empty", func(t *testing.T) {
		var logs bytes.Buffer
		repo := NewRepository(failingStore{err: errors.New("disk on fire")},
			WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		props := repo.Load(ctx)
		assert.True(t, props.ECID().IsZero())
		assert.Contains(t, logs.String(), "disk on fire")
	})

	t.Run("save failure is returned", func(t *testing.T) {
		repo := NewRepository(failingStore{err: datastore.ErrStorageFailed})
		err := repo.Save(ctx, identity.NewProperties())
		assert.ErrorIs(t, err, datastore.ErrStorageFailed)
	})
}
