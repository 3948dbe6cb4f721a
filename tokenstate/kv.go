package tokenstate

import (
	"context"
	"time"
)

// KV is the key-value storage contract the store delegates to. The
// canonical implementation is rediskv.Client; tests use kvfake.FakeKV.
type KV interface {
	// WriteFields creates or overwrites the field mapping stored at key.
	WriteFields(ctx context.Context, key string, fields map[string]string) error

	// SetExpiration attaches or replaces the TTL on key.
	SetExpiration(ctx context.Context, key string, ttl time.Duration) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// ScanKeys returns every key matching pattern. Implementations must
	// use cursor-based iteration rather than a blocking full listing.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// ReadFields returns the field mapping stored at key. A missing key
	// yields an empty map, not an error.
	ReadFields(ctx context.Context, key string) (map[string]string, error)
}
