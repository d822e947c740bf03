package port

import (
	"context"
	"time"
)

// SetStore is the engine's only mutable external dependency: a key-value
// store of named sets of product ids. Individual operations are atomic
// per key; the engine never assumes atomicity across calls, so derived
// keys are named by a content hash of their inputs and reclaimed by TTL.
type SetStore interface {
	// AddMembers adds ids to the set at key. Adding an existing member
	// has no effect.
	AddMembers(ctx context.Context, key string, ids ...int64) error

	// UnionStore stores the union of the source sets at dest with the
	// given TTL and returns the resulting cardinality. A union of zero
	// keys is the empty set.
	UnionStore(ctx context.Context, dest string, ttl time.Duration, keys ...string) (int64, error)

	// InterStore stores the intersection of the source sets at dest with
	// the given TTL and returns the resulting cardinality. An
	// intersection of zero keys is the empty set.
	InterStore(ctx context.Context, dest string, ttl time.Duration, keys ...string) (int64, error)

	// Cardinality returns the number of members of the set at key.
	// A missing key has cardinality zero.
	Cardinality(ctx context.Context, key string) (int64, error)

	// Members returns the members of the set at key.
	Members(ctx context.Context, key string) ([]int64, error)

	// AddValues adds string members to the set at key. Used for the
	// known-values registries, which hold value slugs rather than
	// product ids.
	AddValues(ctx context.Context, key string, values ...string) error

	// Values returns the string members of the set at key.
	Values(ctx context.Context, key string) ([]string, error)

	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets a TTL on an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// GetValue returns the plain value stored at key, or ok=false when
	// the key is absent. Used for TTL'd derived-result caches.
	GetValue(ctx context.Context, key string) (string, bool, error)

	// SetValue stores a plain value at key with the given TTL.
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error

	// DeleteByPattern removes every key matching the glob pattern.
	// Rebuilds use it to clear the whole facet index wholesale.
	DeleteByPattern(ctx context.Context, pattern string) error
}
