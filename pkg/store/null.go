package store

import "context"

// NullBackend is a no-op backend that never stores anything.
// Useful when persistence should be disabled.
type NullBackend struct{}

// NewNullBackend creates a null backend.
func NewNullBackend() Backend {
	return &NullBackend{}
}

// Get always returns a miss.
func (b *NullBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (b *NullBackend) Set(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (b *NullBackend) Delete(ctx context.Context, key string) error {
	return nil
}

// Keys always returns nothing.
func (b *NullBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}

// Kind implements Backend.
func (b *NullBackend) Kind() string { return "null" }

// Close does nothing.
func (b *NullBackend) Close() error {
	return nil
}

// Ensure NullBackend implements Backend.
var _ Backend = (*NullBackend)(nil)
