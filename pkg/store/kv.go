package store

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/observability"
)

// KVStore stores JSON-encoded snapshots in a Backend.
type KVStore struct {
	backend Backend
	keyer   Keyer
}

// NewKVStore returns a store over backend. A nil keyer selects the default.
func NewKVStore(backend Backend, keyer Keyer) *KVStore {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &KVStore{backend: backend, keyer: keyer}
}

// Load implements Store.
func (s *KVStore) Load(ctx context.Context, name string) (snap dashboard.Snapshot, err error) {
	start := time.Now()
	defer func() { observability.Store().OnLoad(ctx, s.Kind(), name, time.Since(start), err) }()

	if err := errors.ValidateName(name); err != nil {
		return dashboard.Snapshot{}, err
	}
	data, ok, err := s.backend.Get(ctx, s.keyer.Key(name))
	if err != nil {
		return dashboard.Snapshot{}, wrapBackend(err, "load %s", name)
	}
	if !ok {
		return dashboard.Snapshot{}, errors.New(errors.ErrCodeNotFound, "dashboard %q not found", name)
	}
	return dashboard.Unmarshal(data)
}

// Save implements Store.
func (s *KVStore) Save(ctx context.Context, name string, snap dashboard.Snapshot) (err error) {
	start := time.Now()
	size := 0
	defer func() { observability.Store().OnSave(ctx, s.Kind(), name, size, time.Since(start), err) }()

	if err := errors.ValidateName(name); err != nil {
		return err
	}
	data, err := dashboard.Marshal(snap)
	if err != nil {
		return err
	}
	size = len(data)
	if err := s.backend.Set(ctx, s.keyer.Key(name), data); err != nil {
		return wrapBackend(err, "save %s", name)
	}
	return nil
}

// Delete implements Store.
func (s *KVStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, s.keyer.Key(name)); err != nil {
		return wrapBackend(err, "delete %s", name)
	}
	return nil
}

// List implements Store.
func (s *KVStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx, s.keyer.Prefix())
	if err != nil {
		return nil, wrapBackend(err, "list dashboards")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, ok := nameOf(s.keyer, k); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Kind implements Store.
func (s *KVStore) Kind() string { return s.backend.Kind() }

// Close closes the backend.
func (s *KVStore) Close() error { return s.backend.Close() }

// wrapBackend tags err with STORAGE unless it already carries a code.
// Retryable wrappers are kept on the outside so callers can still retry.
func wrapBackend(err error, format string, args ...any) error {
	if errors.GetCode(err) != "" {
		return err
	}
	wrapped := errors.Wrap(errors.ErrCodeStorage, err, format, args...)
	if IsRetryable(err) {
		return Retryable(wrapped)
	}
	return wrapped
}

// Ensure KVStore implements Store.
var _ Store = (*KVStore)(nil)
