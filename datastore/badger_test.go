package datastore

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestBadgerDB creates an on-disk BadgerDB in a temporary directory.
func createTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerStore(t *testing.T) {
	store := NewBadgerStoreFromDB(createTestBadgerDB(t))
	testStoreContract(t, store)
}

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := NewBadgerStore(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	testStoreContract(t, store)
}

func TestBadgerStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewBadgerStore(BadgerOptions{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "identity.properties", []byte(`{"identityMap":{}}`)))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(BadgerOptions{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Load(ctx, "identity.properties")
	require.NoError(t, err)
	assert.Equal(t, `{"identityMap":{}}`, string(value))
}

func TestBadgerStore_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadgerStore(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Load(ctx, "key")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.Save(ctx, "key", nil), ErrClosed)
	assert.ErrorIs(t, store.Ping(ctx), ErrClosed)
	assert.NoError(t, store.Close())
}

func TestNewBadgerStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerStore(BadgerOptions{})
	assert.Error(t, err)
}
