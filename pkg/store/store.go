// Package store persists dashboard snapshots by name.
//
// Two layers are provided. A [Backend] is a byte-oriented key/value store
// (memory, file, redis, sqlite, null). A [Store] maps dashboard names to
// snapshots; [KVStore] implements it over any Backend, and [MongoStore]
// stores snapshots as native BSON documents.
//
// # Keys
//
// Names are checked with errors.ValidateName and turned into keys by a
// [Keyer]. Wrap the default keyer with [NewScopedKeyer] to give each tenant
// its own namespace:
//
//	keyer := store.NewScopedKeyer(store.NewDefaultKeyer(), "team:analytics:")
//	s := store.NewKVStore(backend, keyer)
//
// # Errors
//
// Missing dashboards yield NOT_FOUND. Backend failures yield STORAGE, or
// NETWORK for remote backends; network errors are wrapped with [Retryable]
// so [RetryWithBackoff] retries them.
package store

import (
	"context"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
)

// Store persists snapshots by dashboard name.
type Store interface {
	// Load returns the snapshot saved under name, or a NOT_FOUND error.
	Load(ctx context.Context, name string) (dashboard.Snapshot, error)

	// Save writes s under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, s dashboard.Snapshot) error

	// Delete removes name. Deleting a missing dashboard is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the saved dashboard names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Kind names the backend, for logs and hooks.
	Kind() string

	Close() error
}

// Backend is a byte-oriented key/value store.
type Backend interface {
	// Get returns the value stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Kind names the backend.
	Kind() string

	Close() error
}
