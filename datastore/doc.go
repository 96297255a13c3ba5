// Package datastore provides the durable key/value backends that hold persisted
// identity state.
//
// Every backend implements Store, a minimal byte-oriented contract:
//
//	Load(ctx, key)         returns the stored value or ErrNotFound
//	Save(ctx, key, value)  creates or replaces the value
//	Delete(ctx, key)       removes the value or returns ErrNotFound
//	Close()                releases the backend
//
// Available backends:
//
//   - MemoryStore: process-local map, used in tests and for ephemeral deployments
//   - BadgerStore: embedded LSM store on local disk (or in memory)
//   - SQLiteStore: single-table SQLite database
//   - RedisStore: shared Redis instance, keys prefixed with "<prefix>:"
//   - EtcdStore: etcd cluster, keys stored under "/<namespace>/"
//
// Open builds a backend from a Config:
//
//	store, err := datastore.Open(datastore.Config{
//	    Backend: datastore.BackendBadger,
//	    Path:    "/var/lib/edgeidentity",
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// Backends that can report reachability also implement Pinger; the health package
// uses it for store checks.
//
// All backends are safe for concurrent use.
package datastore
