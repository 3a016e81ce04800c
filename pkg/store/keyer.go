package store

import "strings"

// DefaultPrefix is the key prefix used by the default keyer.
const DefaultPrefix = "dashboard:"

// Keyer maps dashboard names to backend keys.
type Keyer interface {
	Key(name string) string
	Prefix() string
}

// DefaultKeyer produces keys of the form "dashboard:<name>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// Key implements Keyer.
func (DefaultKeyer) Key(name string) string { return DefaultPrefix + name }

// Prefix implements Keyer.
func (DefaultKeyer) Prefix() string { return DefaultPrefix }

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
//
// Example usage:
//
//	// Per-team dashboards
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:analytics:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// Key implements Keyer.
func (k *ScopedKeyer) Key(name string) string { return k.prefix + k.inner.Key(name) }

// Prefix implements Keyer.
func (k *ScopedKeyer) Prefix() string { return k.prefix + k.inner.Prefix() }

// nameOf strips the keyer's prefix from key.
func nameOf(k Keyer, key string) (string, bool) {
	return strings.CutPrefix(key, k.Prefix())
}
