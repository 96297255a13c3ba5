// Package persistence stores identity properties in a datastore.Store under a single
// fixed key.
//
// The persisted blob always carries the identityMap key, even when no identifiers are
// known:
//
//	{"identityMap":{}}
//
// This differs from the shared-state export, which omits the key when empty. Load
// never fails: a missing, unreadable or malformed blob is treated as "no prior state"
// and yields empty properties.
package persistence
